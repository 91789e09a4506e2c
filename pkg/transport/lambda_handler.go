package transport

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// LambdaHandler adapta eventos do API Gateway para o mesmo roteador do runtime local.
type LambdaHandler struct {
	handler http.Handler
}

// NewLambdaHandler cria o adaptador sobre o handler HTTP do console.
func NewLambdaHandler(handler http.Handler) *LambdaHandler {
	return &LambdaHandler{handler: handler}
}

// Handle converte o evento em *http.Request, executa o roteador e devolve a resposta gravada.
func (h *LambdaHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return events.APIGatewayProxyResponse{
				StatusCode: http.StatusBadRequest,
				Body:       `{"error":"invalid base64 body"}`,
				Headers:    map[string]string{"Content-Type": "application/json"},
			}, nil
		}
		body = decoded
	}

	u := url.URL{Path: req.Path}
	q := url.Values{}
	for k, vs := range req.MultiValueQueryStringParameters {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	for k, v := range req.QueryStringParameters {
		if _, ok := q[k]; !ok {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, req.HTTPMethod, u.String(), bytes.NewReader(body))
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, vs := range req.MultiValueHeaders {
		httpReq.Header.Del(k)
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	rec := newLambdaResponse()
	h.handler.ServeHTTP(rec, httpReq)
	return rec.toProxyResponse(), nil
}

// lambdaResponse acumula a resposta do roteador em memória.
type lambdaResponse struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newLambdaResponse() *lambdaResponse {
	return &lambdaResponse{header: http.Header{}}
}

func (r *lambdaResponse) Header() http.Header { return r.header }

func (r *lambdaResponse) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.body.Write(b)
}

func (r *lambdaResponse) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
}

func (r *lambdaResponse) toProxyResponse() events.APIGatewayProxyResponse {
	status := r.status
	if status == 0 {
		status = http.StatusOK
	}
	headers := make(map[string]string, len(r.header))
	for k, vs := range r.header {
		headers[strings.ToLower(k)] = strings.Join(vs, ",")
	}
	return events.APIGatewayProxyResponse{
		StatusCode:        status,
		Headers:           headers,
		MultiValueHeaders: map[string][]string(r.header.Clone()),
		Body:              r.body.String(),
	}
}
