// Package application contém os casos de uso para consumo de sequências com
// taxa limitada e para limite de tickers concorrentes.
//
// Ele depende apenas do pacote domain e não conhece net/http nem o pacote ticker.
// Ex.: Runner.Run(ctx, src, fn) consome a fonte chamando fn a cada elemento.
package application
