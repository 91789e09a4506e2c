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
//
// Package emulator sobe um servidor de mocks falso para desenvolvimento local do
// console: a mesma API REST que o gateway HTTP consome, servida a partir de uma
// fixture em memória.
//
// Rotas:
//   - GET /api/services: lista os serviços (ordenados por nome e versão).
//   - GET /api/services/{id}?messages=false: devolve a ServiceView.
//   - PUT /api/services/{id}/operation?operationName={name}: grava as
//     propriedades de dispatch da operação.
//
// Latência e falhas de escrita podem ser simuladas para exercitar as
// notificações de erro do console.
//
// Exemplo de Configuração (emulator.json):
//
//	[
//	  { "port": 8585, "fixture": "services.yaml" },
//	  { "port": 8586, "fixture": "services.yaml", "latency_ms": 800, "fail_updates": true }
//	]
//
// A fixture é YAML (ou JSON) no formato:
//
//	services:
//	  - service:
//	      id: beer-api
//	      name: Beer Catalog API
//	      version: "0.9"
//	      type: REST
//	      operations:
//	        - name: getBeer
//	          dispatcher: SCRIPT
//	          dispatcherRules: "{}"
//	    messagesMap:
//	      getBeer: 2
package emulator
