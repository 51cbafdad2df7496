package marketdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("test-key", 2*time.Second)
	c.apiURL = srv.URL
	return c
}

func TestQuoteLatest_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-CMC_PRO_API_KEY"))
		assert.Equal(t, "BTC", r.URL.Query().Get("symbol"))
		_, _ = w.Write([]byte(`{"data":{"BTC":{"quote":{"USD":{"price":64250.5}}}}}`))
	})

	price, err := c.QuoteLatest(context.Background(), "BTC")
	require.NoError(t, err)
	assert.Equal(t, 64250.5, price)
}

func TestQuoteLatest_UnknownSymbol(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "провайдер вернул ошибку статусом",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			},
		},
		{
			name: "символа нет в ответе",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"data":{}}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)

			_, err := c.QuoteLatest(context.Background(), "NOPE")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSymbolNotFound))
		})
	}
}

func TestListingsLatest_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"data":[
			{"symbol":"BTC","quote":{"USD":{"price":64250.5}}},
			{"symbol":"ETH","quote":{"USD":{"price":3200.1}}}
		]}`))
	})

	listings, err := c.ListingsLatest(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, "BTC", listings[0].Symbol)
	assert.Equal(t, 3200.1, listings[1].Price)
}

func TestListingsLatest_EmptyResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	_, err := c.ListingsLatest(context.Background(), 50)
	require.Error(t, err)
}
