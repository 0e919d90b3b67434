package payment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"foodorder/internal/domain"
)

func TestHTTPGateway_Confirm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		switch r.URL.Path {
		case "/confirm/paid-draft":
			w.Write([]byte(`{"paid":true}`))
		case "/confirm/unpaid-draft":
			w.Write([]byte(`{"paid":false}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	g := NewHTTP(srv.URL, srv.Client())

	paid, err := g.Confirm(context.Background(), "paid-draft")
	if err != nil || !paid {
		t.Fatalf("expected paid, got %v %v", paid, err)
	}

	paid, err = g.Confirm(context.Background(), "unpaid-draft")
	if err != nil || paid {
		t.Fatalf("expected unpaid, got %v %v", paid, err)
	}

	_, err = g.Confirm(context.Background(), "boom")
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("5xx must map to upstream unavailable, got %v", err)
	}
}

func TestHTTPGateway_TransportFailure(t *testing.T) {
	g := NewHTTP("http://127.0.0.1:1", nil)
	_, err := g.Confirm(context.Background(), "any")
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("transport failure must map to upstream unavailable, got %v", err)
	}
}
