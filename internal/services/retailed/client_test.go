package retailed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/time/rate"
)

func testClient(apiKey, url string) *Client {
	c := NewClientWithLimiter(apiKey, "EUR", "FR", rate.NewLimiter(rate.Inf, 1))
	if url != "" {
		c.endpoint = url
	}
	return c
}

func TestParseLowestAsk(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    float64
		wantErr bool
	}{
		{
			name: "market bids structure",
			body: `{"market":{"bids":{"lowest_ask":129.5}}}`,
			want: 129.5,
		},
		{
			name: "top level fallback",
			body: `{"lowestAsk":80}`,
			want: 80,
		},
		{
			name: "nested value wins over fallback",
			body: `{"lowestAsk":80,"market":{"bids":{"lowest_ask":75}}}`,
			want: 75,
		},
		{
			name:    "missing price",
			body:    `{"market":{"bids":{}}}`,
			wantErr: true,
		},
		{
			name:    "invalid json",
			body:    `not json`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLowestAsk([]byte(tt.body))
			if tt.wantErr {
				if !errors.Is(err, ErrMalformed) {
					t.Fatalf("err = %v, want ErrMalformed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseLowestAsk() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("parseLowestAsk() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFetchPriceNotConfigured(t *testing.T) {
	c := testClient("", "")
	if _, err := c.FetchPrice(context.Background(), "some-slug"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestFetchPriceStatusTaxonomy(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"rate limited", http.StatusTooManyRequests, `{}`, ErrRateLimited},
		{"not found", http.StatusNotFound, `{}`, ErrNotFound},
		{"malformed payload", http.StatusOK, `{"market":{}}`, ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("x-api-key") != "test-key" {
					t.Errorf("missing x-api-key header")
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := testClient("test-key", server.URL)
			_, err := c.FetchPrice(context.Background(), "some-slug")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFetchPriceSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query"); got != "labubu-zimomo" {
			t.Errorf("query = %q, want slug", got)
		}
		if got := r.URL.Query().Get("currency"); got != "EUR" {
			t.Errorf("currency = %q, want EUR", got)
		}
		w.Write([]byte(`{"market":{"bids":{"lowest_ask":212.0}}}`))
	}))
	defer server.Close()

	c := testClient("test-key", server.URL)
	price, err := c.FetchPrice(context.Background(), "labubu-zimomo")
	if err != nil {
		t.Fatalf("FetchPrice() error = %v", err)
	}
	if price != 212.0 {
		t.Errorf("price = %v, want 212", price)
	}
}
