package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/example/ec-client-core/internal/auth"
	"github.com/example/ec-client-core/internal/domain/checkout"
	"github.com/example/ec-client-core/internal/domain/notification"
)

// HTTPGateway is the default backend adapter. Network failures wrap
// ErrTransport; backend rejections (pricing/stock conflicts) pass
// through as plain errors for the UI to surface inline.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
	tokens  *auth.TokenKeeper
}

func NewHTTPGateway(baseURL string, tokens *auth.TokenKeeper) *HTTPGateway {
	return &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		tokens:  tokens,
	}
}

func (g *HTTPGateway) CreateOrder(ctx context.Context, draft *checkout.OrderDraft) (string, error) {
	var out struct {
		OrderID string `json:"order_id"`
	}
	if err := g.do(ctx, http.MethodPost, "/api/orders", draft, &out); err != nil {
		return "", err
	}
	return out.OrderID, nil
}

func (g *HTTPGateway) FetchOrder(ctx context.Context, orderID string) (*OrderSnapshot, error) {
	var out OrderSnapshot
	if err := g.do(ctx, http.MethodGet, "/api/orders/"+orderID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTPGateway) List(ctx context.Context) ([]notification.Notification, error) {
	var out []notification.Notification
	if err := g.do(ctx, http.MethodGet, "/api/notifications", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *HTTPGateway) MarkRead(ctx context.Context, id string) error {
	return g.do(ctx, http.MethodPost, "/api/notifications/"+id+"/read", nil, nil)
}

func (g *HTTPGateway) MarkAllRead(ctx context.Context) error {
	return g.do(ctx, http.MethodPost, "/api/notifications/read-all", nil, nil)
}

func (g *HTTPGateway) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if g.tokens != nil {
		bearer, err := g.tokens.Bearer()
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("backend rejected request: %s", apiErr.Error)
		}
		return fmt.Errorf("backend rejected request: %s", resp.Status)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decoding response: %v", ErrTransport, err)
		}
	}
	return nil
}
