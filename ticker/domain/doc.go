// Package domain define contratos e tipos de domínio para consumo de
// sequências com taxa limitada.
//
// Este pacote não depende de net/http, de Redis nem do pacote ticker.
// A intenção é permitir testes de unidade puros e desacoplar as regras de
// aplicação dos detalhes de infraestrutura.
package domain
