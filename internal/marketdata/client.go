// Package marketdata реализует клиент CoinMarketCap для получения
// котировок и листинга инструментов.
package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrSymbolNotFound возвращается, когда провайдер не знает запрошенный символ.
var ErrSymbolNotFound = errors.New("symbol not found")

// Client — HTTP-клиент CoinMarketCap Pro API.
type Client struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент CoinMarketCap.
func NewClient(apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiKey:     apiKey,
		apiURL:     "https://pro-api.coinmarketcap.com",
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) newRequest(ctx context.Context, path string, query url.Values) (*http.Request, error) {
	reqURL := c.apiURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-CMC_PRO_API_KEY", c.apiKey)
	return req, nil
}

type usdQuote struct {
	Quote struct {
		USD struct {
			Price float64 `json:"price"`
		} `json:"USD"`
	} `json:"quote"`
}

// QuoteLatest возвращает текущую цену инструмента в USD.
// Неизвестный символ — ErrSymbolNotFound.
func (c *Client) QuoteLatest(ctx context.Context, symbol string) (float64, error) {
	const op = "marketdata.QuoteLatest"

	query := url.Values{"symbol": {symbol}}
	req, err := c.newRequest(ctx, "/v1/cryptocurrency/quotes/latest", query)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%s: %w", op, ErrSymbolNotFound)
	}

	var payload struct {
		Data map[string]usdQuote `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	data, ok := payload.Data[symbol]
	if !ok {
		return 0, fmt.Errorf("%s: %w", op, ErrSymbolNotFound)
	}
	return data.Quote.USD.Price, nil
}

// Listing — одна позиция листинга инструментов.
type Listing struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"-"`
}

// ListingsLatest возвращает первые limit инструментов листинга с ценами в USD.
func (c *Client) ListingsLatest(ctx context.Context, limit int) ([]Listing, error) {
	const op = "marketdata.ListingsLatest"

	query := url.Values{"limit": {strconv.Itoa(limit)}}
	req, err := c.newRequest(ctx, "/v1/cryptocurrency/listings/latest", query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %s", op, resp.Status)
	}

	var payload struct {
		Data []struct {
			Symbol string `json:"symbol"`
			Quote  struct {
				USD struct {
					Price float64 `json:"price"`
				} `json:"USD"`
			} `json:"quote"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(payload.Data) == 0 {
		return nil, fmt.Errorf("%s: empty listings response", op)
	}

	listings := make([]Listing, 0, len(payload.Data))
	for _, d := range payload.Data {
		listings = append(listings, Listing{Symbol: d.Symbol, Price: d.Quote.USD.Price})
	}
	return listings, nil
}
