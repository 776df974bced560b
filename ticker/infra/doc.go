// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - PacerStore: token bucket por chave usando golang.org/x/time/rate
//   - SlotPool: semáforo simples para limitar tickers simultâneos
//   - MemoryStatsStore / RedisStatsStore: contadores de consumo
package infra
