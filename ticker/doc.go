// Package ticker limita a taxa de iteração de uma sequência (iter.Seq).
//
// Um Ticker entrega no máximo um elemento por intervalo, bloqueando o
// consumidor entre as entregas. Serve tanto para listas finitas quanto para
// geradores infinitos, sem espalhar time.Sleep pela lógica do consumidor.
//
// Visão geral:
//
//   - daemon: uma goroutine por Ticker que emite um tick a cada intervalo e
//     termina ao receber o sinal de parada
//   - canal de ticks: daemon -> consumidor, FIFO, sem limite de pendentes
//   - canal de parada: consumidor -> daemon, sinal único
//   - TickIter: espera um tick e só então avança a sequência
//
// Não há locks nem estado compartilhado entre o daemon e o consumidor: toda a
// coordenação é feita pelos dois canais.
//
// Exemplo (imprime 0..9, um número por segundo):
//
//	t := ticker.FromSlice([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, time.Second)
//	for v := range t.All() {
//		fmt.Println(v)
//	}
//
// Se o consumidor atrasa, os ticks se acumulam e as próximas chamadas a Next
// retornam sem espera até esgotar os pendentes (não há correção de drift).
package ticker
