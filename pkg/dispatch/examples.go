// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package dispatch reúne o vocabulário de dispatch do console: os nomes das
// estratégias conhecidas e o catálogo de regras de exemplo que o operador pode
// copiar para o campo dispatcherRules.
//
// O texto das regras é opaco para o console. A sintaxe pertence ao motor de
// dispatch do servidor de mocks; aqui ele só é exibido e copiado.
package dispatch

import "sort"

// ExamplePayload é o corpo de request usado como referência pelas regras de exemplo.
const ExamplePayload = `{
  "name": "Abbey Brune",
  "country": "Belgium",
  "type": "Brown ale",
  "rating": 4.2,
  "references": [
    { "referenceId": 1234 },
    { "referenceId": 5678 }
  ]
}`

// Nomes dos operadores do catálogo.
const (
	OperatorEquals   = "equals"
	OperatorRange    = "range"
	OperatorSize     = "size"
	OperatorRegexp   = "regexp"
	OperatorPresence = "presence"
)

var examples = map[string]string{
	OperatorEquals: `{
  "exp": "/country",
  "operator": "equals",
  "cases": {
    "Belgium": "Accepted",
    "default": "Not accepted"
  }
}`,
	OperatorRange: `{
  "exp": "/rating",
  "operator": "range",
  "cases": {
    "[4.2;5.0]": "Top notch",
    "[3;4.2[": "Medium",
    "default": "Not accepted"
  }
}`,
	OperatorSize: `{
  "exp": "/references",
  "operator": "size",
  "cases": {
    "[2;100]": "Good references",
    "default": "Not enough references"
  }
}`,
	OperatorRegexp: `{
  "exp": "/type",
  "operator": "regexp",
  "cases": {
    ".*[Aa][Ll][Ee].*": "Ale beers",
    "default": "Not accepted"
  }
}`,
	OperatorPresence: `{
  "exp": "/name",
  "operator": "presence",
  "cases": {
    "found": "Got a name",
    "default": "Missing a name"
  }
}`,
}

// Example devolve o texto da regra de exemplo do operador informado.
func Example(operator string) (string, bool) {
	text, ok := examples[operator]
	return text, ok
}

// Examples devolve uma cópia do catálogo completo.
func Examples() map[string]string {
	out := make(map[string]string, len(examples))
	for k, v := range examples {
		out[k] = v
	}
	return out
}

// Operators lista os operadores do catálogo em ordem alfabética.
func Operators() []string {
	names := make([]string, 0, len(examples))
	for k := range examples {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
