package paymongo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/DougJudyPontiacBandit/ramyeonsite/domain"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/httpx"
)

const currencyPHP = "PHP"

var ErrMethodNotSupported = errors.New("payment method has no gateway source type")

// Centavos converts a peso amount to minor currency units. Rounding,
// never truncation: 10.005 pesos is 1001 centavos, not 1000.
func Centavos(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// Billing is the customer identity attached to wallet sources.
type Billing struct {
	Name  string
	Email string
}

// Client drives the PayMongo REST API. Wallet methods create redirect
// sources; card payments create hosted checkout links adapted to the
// same PaymentSource shape so callers stay method-agnostic.
type Client struct {
	baseURL   string
	returnURL string
	secretKey func() string
	hc        *http.Client
}

// NewClient builds a gateway client. secretKey is consulted per request
// (rotation without rebuild); returnURL is where the gateway sends the
// customer back, with order id and outcome in the query string.
func NewClient(baseURL, returnURL string, secretKey func() string) *Client {
	return &Client{
		baseURL:   baseURL,
		returnURL: returnURL,
		secretKey: secretKey,
		hc: &http.Client{
			Timeout:   20 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

var sourceTypes = map[domain.PaymentMethod]string{
	domain.PaymentMethodGCash:   "gcash",
	domain.PaymentMethodPayMaya: "paymaya",
	domain.PaymentMethodGrabPay: "grab_pay",
}

// CreateSource initiates a payment for the given method and peso
// amount. The returned source's Amount is in centavos and must match
// what the caller advertised; a mismatch is the caller's cue to abort.
func (c *Client) CreateSource(ctx context.Context, method domain.PaymentMethod, amount float64, orderID string, b Billing) (*domain.PaymentSource, error) {
	if method == domain.PaymentMethodCard {
		return c.createLink(ctx, amount, orderID)
	}

	sourceType, ok := sourceTypes[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMethodNotSupported, method)
	}

	successURL, failedURL := c.redirectURLs(orderID)
	var req sourceRequest
	req.Data.Attributes = sourceAttributes{
		Type:     sourceType,
		Amount:   Centavos(amount),
		Currency: currencyPHP,
		Redirect: redirect{Success: successURL, Failed: failedURL},
		Billing:  &billingInfo{Name: b.Name, Email: b.Email},
		Metadata: map[string]string{"order_id": orderID},
	}

	var resp apiResponse
	if err := c.post(ctx, "/sources", req, &resp); err != nil {
		return nil, err
	}

	return &domain.PaymentSource{
		ID:          resp.Data.ID,
		Method:      method,
		Amount:      resp.Data.Attributes.Amount,
		CheckoutURL: resp.Data.Attributes.Redirect.CheckoutURL,
		SuccessURL:  successURL,
		FailedURL:   failedURL,
		Status:      domain.SourceStatus(resp.Data.Attributes.Status),
	}, nil
}

// createLink handles card payments. PayMongo has no "card" source type,
// so a hosted checkout link is created and reshaped into the source
// contract.
func (c *Client) createLink(ctx context.Context, amount float64, orderID string) (*domain.PaymentSource, error) {
	successURL, failedURL := c.redirectURLs(orderID)
	var req linkRequest
	req.Data.Attributes = linkAttributes{
		Amount:      Centavos(amount),
		Currency:    currencyPHP,
		Description: fmt.Sprintf("Order #%s - Ramyeon Order", orderID),
		Remarks:     fmt.Sprintf("Order %s", orderID),
		Redirect:    redirect{Success: successURL, Failed: failedURL},
	}

	var resp apiResponse
	if err := c.post(ctx, "/links", req, &resp); err != nil {
		return nil, err
	}

	return &domain.PaymentSource{
		ID:          resp.Data.ID,
		Method:      domain.PaymentMethodCard,
		Amount:      resp.Data.Attributes.Amount,
		CheckoutURL: resp.Data.Attributes.CheckoutURL,
		SuccessURL:  successURL,
		FailedURL:   failedURL,
		Status:      domain.SourceStatus(resp.Data.Attributes.Status),
	}, nil
}

// GetSource polls a wallet source's status. Read-only, safe to repeat.
func (c *Client) GetSource(ctx context.Context, sourceID string) (domain.SourceStatus, error) {
	return c.getStatus(ctx, "/sources/"+sourceID)
}

// GetPaymentIntent polls a payment intent's status. Read-only.
func (c *Client) GetPaymentIntent(ctx context.Context, intentID string) (domain.SourceStatus, error) {
	return c.getStatus(ctx, "/payment_intents/"+intentID)
}

func (c *Client) getStatus(ctx context.Context, path string) (domain.SourceStatus, error) {
	var resp apiResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", err
	}
	return domain.SourceStatus(resp.Data.Attributes.Status), nil
}

func (c *Client) redirectURLs(orderID string) (success, failed string) {
	success = fmt.Sprintf("%s?payment=success&order=%s", c.returnURL, url.QueryEscape(orderID))
	failed = fmt.Sprintf("%s?payment=failed&order=%s", c.returnURL, url.QueryEscape(orderID))
	return success, failed
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &httpx.Error{Kind: httpx.KindValidation, Message: fmt.Sprintf("encode request: %v", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &httpx.Error{Kind: httpx.KindValidation, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authHeader(c.secretKey()))

	resp, err := c.hc.Do(req)
	if err != nil {
		return &httpx.Error{Kind: httpx.KindTransient, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeGatewayError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &httpx.Error{Kind: httpx.KindTransient, Message: fmt.Sprintf("decode response: %v", err)}
	}
	return nil
}

// authHeader builds the Basic credential the gateway expects: the
// secret key as username, empty password.
func authHeader(secretKey string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(secretKey+":"))
}

// decodeGatewayError surfaces the provider's human-readable detail.
func decodeGatewayError(resp *http.Response) error {
	msg := http.StatusText(resp.StatusCode)
	var body apiErrorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && len(body.Errors) > 0 && body.Errors[0].Detail != "" {
		msg = body.Errors[0].Detail
	}
	return &httpx.Error{Kind: httpx.KindGateway, Message: msg, Status: resp.StatusCode}
}
