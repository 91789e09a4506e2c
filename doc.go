// Package dispatch_console é o console de sobrescrita de dispatch de um servidor
// de mocks: abre uma operação de um serviço mockado, mantém um rascunho editável
// de defaultDelay, dispatcher e dispatcherRules, e o grava no backend com uma
// notificação de sucesso ou erro para o operador.
//
// Visão Geral:
// O módulo é organizado como a página de um console servida por HTTP (ou Lambda):
//
//  1. override: o controller da página (Initialize, Reset, Save, ApplyExampleRule,
//     DismissNotification) e o registro de sessões abertas.
//  2. gateway: acesso aos serviços mockados. Backends HTTP (com OAuth2 opcional),
//     DynamoDB, Postgres, SQLite ou memória, com cache Redis opcional na frente.
//  3. rules: guardas CEL avaliadas antes de cada Save.
//  4. notify: a central de notificações exibidas ao operador.
//  5. transport: API REST, stream websocket de notificações, adaptador Lambda e
//     invalidação de cache via SQS.
//  6. graphql: a mesma edição exposta como schema GraphQL.
//
// Configuração:
// O console lê um YAML (arquivo, s3:// ou dynamodb://) apontado por CONFIG_FILE_PATH.
// Valores podem referenciar ${env.VAR}, ${ssm./path} e ${secret.id#campo}.
//
//	version: "1.0"
//	console:
//	  name: "dispatch-console"
//	  runtime: "local"
//	  port: 8080
//	  timeout: "2s"
//	  logging: {enabled: true, level: "info", format: "console"}
//	  metrics:
//	    prometheus: {enabled: true}
//	backend:
//	  type: "http"
//	  http:
//	    base_url: "${env.CONSOLE_BACKEND_URL}"
//	guards:
//	  - id: "max-delay"
//	    expr: "draft.defaultDelay <= 60000"
//	    msg: "Delay acima de 60s"
//	graphql:
//	  enabled: true
//
// Executáveis:
//   - cmd/console: o servidor do console.
//   - cmd/emulator: um backend de mocks falso para desenvolvimento local.
//   - cmd/toolkit: validate (checa a configuração) e seed (carrega uma fixture
//     num backend SQL ou DynamoDB).
package dispatch_console
