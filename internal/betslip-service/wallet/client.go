package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	walletdto "github.com/radieske/sports-betslip/internal/betslip-service/wallet/dto"
)

// Client fala com o wallet-service (reserva, commit e estorno de saldo)
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 2 * time.Second},
	}
}

func (c *Client) Reserve(ctx context.Context, userID string, cents int64, externalRef string) (string, error) {
	var out walletdto.ReserveResponse
	err := c.post(ctx, "/wallet/reserve", walletdto.ReserveRequest{UserID: userID, AmountCents: cents, ExternalRef: externalRef}, &out)
	if err != nil {
		return "", err
	}
	return out.ReservationID, nil
}

func (c *Client) Commit(ctx context.Context, userID, externalRef string) error {
	return c.post(ctx, "/wallet/commit", walletdto.SettleRequest{UserID: userID, ExternalRef: externalRef}, nil)
}

func (c *Client) Refund(ctx context.Context, userID, externalRef string) error {
	return c.post(ctx, "/wallet/refund", walletdto.SettleRequest{UserID: userID, ExternalRef: externalRef}, nil)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return fmt.Errorf("wallet %s http %d", path, res.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
