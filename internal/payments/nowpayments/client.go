// Package nowpayments реализует клиент NOWPayments для выставления
// крипто-инвойсов на пожизненную подписку.
package nowpayments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Статусы IPN-уведомлений, означающие успешную оплату.
const (
	StatusFinished  = "finished"
	StatusConfirmed = "confirmed"
)

// IsPaidStatus сообщает, означает ли статус IPN состоявшуюся оплату.
func IsPaidStatus(status string) bool {
	return status == StatusFinished || status == StatusConfirmed
}

// Client — HTTP-клиент NOWPayments API.
type Client struct {
	apiKey     string
	apiURL     string
	ipnURL     string
	successURL string
	priceUSD   int
	httpClient *http.Client
}

// NewClient создаёт новый клиент NOWPayments. ipnURL — адрес IPN-вебхука,
// successURL — куда вернуть пользователя после оплаты.
func NewClient(apiKey, ipnURL, successURL string, priceUSD int) *Client {
	return &Client{
		apiKey:     apiKey,
		apiURL:     "https://api.nowpayments.io/v1",
		ipnURL:     ipnURL,
		successURL: successURL,
		priceUSD:   priceUSD,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type createInvoiceRequest struct {
	PriceAmount    int    `json:"price_amount"`
	PriceCurrency  string `json:"price_currency"`
	OrderID        string `json:"order_id"`
	IPNCallbackURL string `json:"ipn_callback_url"`
	SuccessURL     string `json:"success_url"`
}

type createInvoiceResponse struct {
	InvoiceURL string `json:"invoice_url"`
}

// CreateInvoice выставляет инвойс на пожизненную подписку и возвращает
// ссылку на оплату. order_id инвойса — идентификатор пользователя Telegram.
func (c *Client) CreateInvoice(ctx context.Context, userID int64) (string, error) {
	const op = "nowpayments.CreateInvoice"

	body := createInvoiceRequest{
		PriceAmount:    c.priceUSD,
		PriceCurrency:  "usd",
		OrderID:        strconv.FormatInt(userID, 10),
		IPNCallbackURL: c.ipnURL,
		SuccessURL:     c.successURL,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/invoice", &buf)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("%s: unexpected status %s", op, resp.Status)
	}

	var invoiceResp createInvoiceResponse
	if err := json.NewDecoder(resp.Body).Decode(&invoiceResp); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if invoiceResp.InvoiceURL == "" {
		return "", fmt.Errorf("%s: %w", op, errors.New("empty invoice url"))
	}
	return invoiceResp.InvoiceURL, nil
}
