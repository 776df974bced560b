// Package httpstream expõe sequências com taxa limitada via HTTP (net/http).
//
// Visão geral (camadas):
//
//   - ticker: o adaptador de iteração (daemon de ticks + TickIter)
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (consumo de uma fonte, acquire/timeout) sem net/http
//   - infra: implementações concretas (token bucket, semáforo, estatísticas)
//   - httpstream (este pacote): handler de streaming + middleware de concorrência
//     + extração de chave do cliente + tradução para status/headers
//
// Fluxo de um GET /stream?count=N&interval=D&start=S:
//
//  1. Valida os parâmetros (400 se inválidos)
//  2. Extrai a chave do cliente (header/XFF/IP) e obtém o Pacer dela
//  3. Cria um Ticker sobre start..start+N-1 e consome com application.Runner
//  4. Escreve um número por linha, com flush a cada tick
//  5. Desconexão do cliente cancela o ctx; o Ticker é fechado em qualquer saída
//
// O ConcurrencyMiddleware limita quantos streams (e portanto quantos daemons)
// ficam ativos ao mesmo tempo, respondendo 503 quando não há vaga.
package httpstream
