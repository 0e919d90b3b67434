// Package payment talks to the external payment collaborator. The gateway
// only ever reports paid or not paid; capture itself lives elsewhere.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"foodorder/internal/domain"
)

// Gateway confirms whether a bank-transfer draft has been paid. A transport
// failure surfaces as ErrUpstreamUnavailable and must be treated as
// not-confirmed, never as silently paid.
type Gateway interface {
	Confirm(ctx context.Context, draftID string) (paid bool, err error)
}

type httpGateway struct {
	baseURL string
	client  *http.Client
}

// NewHTTP builds a gateway client against the collaborator's base URL.
func NewHTTP(baseURL string, client *http.Client) Gateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpGateway{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (g *httpGateway) Confirm(ctx context.Context, draftID string) (bool, error) {
	url := fmt.Sprintf("%s/confirm/%s", g.baseURL, draftID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return false, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return false, domain.ErrUpstreamUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return false, domain.ErrUpstreamUnavailable
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("payment gateway status %d", resp.StatusCode)
	}

	var body struct {
		Paid bool `json:"paid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, domain.ErrUpstreamUnavailable
	}
	return body.Paid, nil
}
