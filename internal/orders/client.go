package orders

import (
	"context"
	"fmt"

	"github.com/DougJudyPontiacBandit/ramyeonsite/domain"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/httpx"
)

// Client talks to the backend order API. Creation is never auto-retried
// here: a duplicate order is worse than a locally persisted one.
type Client struct {
	api *httpx.Client
}

func NewClient(api *httpx.Client) *Client {
	return &Client{api: api}
}

type CreateRequest struct {
	CustomerID       string            `json:"customer_id"`
	Items            []domain.CartItem `json:"items"`
	DeliveryAddress  string            `json:"delivery_address,omitempty"`
	PaymentMethod    string            `json:"payment_method"`
	PointsToRedeem   int               `json:"points_to_redeem"`
	PaymentReference string            `json:"payment_reference,omitempty"`
	Notes            string            `json:"notes,omitempty"`
}

type CreateResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status,omitempty"`
}

func (c *Client) Create(ctx context.Context, req *CreateRequest) (*CreateResponse, error) {
	var resp CreateResponse
	if err := c.api.PostJSON(ctx, "/orders", req, &resp); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &resp, nil
}

type statusResponse struct {
	Status string `json:"status"`
}

// Status is an idempotent read, retried on transient failure.
func (c *Client) Status(ctx context.Context, orderID string) (string, error) {
	var resp statusResponse
	err := httpx.Retry(ctx, nil, func() error {
		return c.api.GetJSON(ctx, fmt.Sprintf("/orders/%s/status", orderID), &resp)
	})
	if err != nil {
		return "", fmt.Errorf("fetch order status: %w", err)
	}
	return resp.Status, nil
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

func (c *Client) UpdateStatus(ctx context.Context, orderID, status, notes string) error {
	req := updateStatusRequest{Status: status, Notes: notes}
	if err := c.api.PostJSON(ctx, fmt.Sprintf("/orders/%s/update-status", orderID), req, nil); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return nil
}
