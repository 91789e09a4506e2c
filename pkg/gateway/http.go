package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/raywall/dispatch-console/pkg/model"
)

// HTTPDoer permite mockar o cliente HTTP nos testes.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPGateway fala com a API REST do servidor de mocks.
type HTTPGateway struct {
	baseURL string
	client  HTTPDoer
}

func NewHTTPGateway(baseURL string, client HTTPDoer) *HTTPGateway {
	return &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// GetServiceView chama GET {base}/api/services/{id}?messages=false.
func (g *HTTPGateway) GetServiceView(ctx context.Context, serviceID string) (*model.ServiceView, error) {
	endpoint := fmt.Sprintf("%s/api/services/%s?messages=false", g.baseURL, url.PathEscape(serviceID))

	body, err := g.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, serviceID)
		}
		return nil, err
	}

	var view model.ServiceView
	if err := json.Unmarshal(body, &view); err != nil {
		return nil, fmt.Errorf("resposta inválida do backend: %w", err)
	}
	return &view, nil
}

// UpdateOperationProperties chama PUT {base}/api/services/{id}/operation?operationName={name}.
func (g *HTTPGateway) UpdateOperationProperties(ctx context.Context, svc model.Service, operationName string, props model.OperationProperties) error {
	endpoint := fmt.Sprintf("%s/api/services/%s/operation?operationName=%s",
		g.baseURL, url.PathEscape(svc.ID), url.QueryEscape(operationName))

	payload, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("erro ao codificar payload: %w", err)
	}

	_, err = g.do(ctx, http.MethodPut, endpoint, payload)
	return err
}

func (g *HTTPGateway) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("erro na chamada ao backend: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("erro lendo resposta: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Message: errorMessage(respBytes)}
	}
	return respBytes, nil
}

// errorMessage extrai {"message": ...} ou {"error": ...}; senão usa o corpo bruto.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(body))
}
