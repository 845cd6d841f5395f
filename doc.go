// Package insurancesim é um simulador da API administrativa de uma
// seguradora, acompanhado de um client HTTP resiliente.
//
// Visão Geral:
// O simulador responde às mesmas rotas do backend real (clientes, apólices,
// sinistros, corretores, pagamentos, dashboard, configurações, documentos e
// coberturas adicionais) a partir de um store em memória populado com dados
// de exemplo. Ele pode ser instalado como http.RoundTripper dentro de um
// *http.Client, servido como servidor HTTP local ou executado como AWS Lambda.
//
// Sub-Pacotes Principais:
//
// 1. pkg/envelope:
//   - Formato de resposta único {success, data, error, message, timestamp}.
//
// 2. pkg/store e pkg/router:
//   - Coleções em memória com ids sequenciais por prefixo, busca, filtro e
//     paginação.
//   - Tabela de rotas "METHOD /path/:param" com first-match-wins.
//
// 3. pkg/gateway e pkg/insurance:
//   - Gateway que intercepta chamadas sob o prefixo da API (padrão /api).
//   - Handlers do domínio de seguros, com validação de payload e regras CEL
//     configuráveis por coleção.
//
// 4. pkg/client e pkg/auth:
//   - Client com timeout por tentativa, retry com backoff linear e cadeias
//     de interceptors para request, response e erro.
//   - Tokens estáticos ou OAuth2 client credentials renovados em background.
//
// 5. pkg/config, pkg/engine e pkg/transport:
//   - Configuração YAML de arquivo, S3 ou DynamoDB com injeção de env, SSM
//     e Secrets Manager.
//   - Montagem do runtime (logger zerolog, métricas Datadog) e adaptadores
//     HTTP (gorilla/mux), Lambda e fila SQS de reset.
//
// Exemplo de uso:
//
//	cfg, _ := config.NewLoader().Load(ctx, "sim.yaml")
//	svc, _ := engine.NewServiceEngine(cfg, "sim.yaml")
//
//	httpClient := &http.Client{}
//	gateway.Install(httpClient, svc.Gateway)
//
//	c := client.NewDefault("http://localhost:8080", client.WithHTTPClient(httpClient))
//	env := c.Get(ctx, "/api/policies", client.WithQuery(map[string]interface{}{"status": "active"}))
package insurancesim
