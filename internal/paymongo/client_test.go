package paymongo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DougJudyPontiacBandit/ramyeonsite/domain"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/httpx"
)

const testReturnURL = "http://localhost:8080/payment/return"

func testSecret() string { return "sk_test_abc" }

func TestCentavos(t *testing.T) {
	tests := []struct {
		amount float64
		want   int64
	}{
		{0, 0},
		{1, 100},
		{90, 9000},
		{99.99, 9999},
		{10.005, 1001}, // rounds, never truncates
		{0.004, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.3f", tt.amount), func(t *testing.T) {
			assert.Equal(t, tt.want, Centavos(tt.amount))
		})
	}
}

func TestCreateSource_Wallet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sources", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, authHeader("sk_test_abc"), r.Header.Get("Authorization"))

		var req sourceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		attrs := req.Data.Attributes
		assert.Equal(t, "gcash", attrs.Type)
		assert.Equal(t, int64(9000), attrs.Amount)
		assert.Equal(t, "PHP", attrs.Currency)
		assert.Equal(t, "order-42", attrs.Metadata["order_id"])
		// Both redirect URLs must carry the order id for the return leg.
		assert.Contains(t, attrs.Redirect.Success, "order=order-42")
		assert.Contains(t, attrs.Redirect.Failed, "order=order-42")

		var resp apiResponse
		resp.Data.ID = "src_123"
		resp.Data.Attributes = responseAttributes{
			Status:   "pending",
			Amount:   attrs.Amount,
			Redirect: redirect{CheckoutURL: "https://gateway.test/checkout/src_123"},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testReturnURL, testSecret)
	source, err := c.CreateSource(context.Background(), domain.PaymentMethodGCash, 90, "order-42", Billing{Name: "Jess", Email: "jess@example.com"})

	require.NoError(t, err)
	assert.Equal(t, "src_123", source.ID)
	assert.Equal(t, int64(9000), source.Amount)
	assert.Equal(t, domain.SourceStatusPending, source.Status)
	assert.Equal(t, "https://gateway.test/checkout/src_123", source.CheckoutURL)
}

func TestCreateSource_CardUsesLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/links", r.URL.Path)

		var req linkRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(12550), req.Data.Attributes.Amount)
		assert.Contains(t, req.Data.Attributes.Description, "order-9")

		var resp apiResponse
		resp.Data.ID = "link_777"
		resp.Data.Attributes = responseAttributes{
			Status:      "unpaid",
			Amount:      req.Data.Attributes.Amount,
			CheckoutURL: "https://gateway.test/links/link_777",
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testReturnURL, testSecret)
	source, err := c.CreateSource(context.Background(), domain.PaymentMethodCard, 125.50, "order-9", Billing{})

	require.NoError(t, err)
	// Link response adapted to the same PaymentSource contract.
	assert.Equal(t, "link_777", source.ID)
	assert.Equal(t, domain.PaymentMethodCard, source.Method)
	assert.Equal(t, "https://gateway.test/links/link_777", source.CheckoutURL)
	assert.Contains(t, source.SuccessURL, "order=order-9")
}

func TestCreateSource_CashHasNoSource(t *testing.T) {
	c := NewClient("http://unused", testReturnURL, testSecret)
	_, err := c.CreateSource(context.Background(), domain.PaymentMethodCash, 100, "order-1", Billing{})
	assert.ErrorIs(t, err, ErrMethodNotSupported)
}

func TestCreateSource_GatewayErrorDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors":[{"code":"parameter_below_minimum","detail":"amount must be at least 2000"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testReturnURL, testSecret)
	_, err := c.CreateSource(context.Background(), domain.PaymentMethodGCash, 1, "order-1", Billing{})

	require.Error(t, err)
	assert.True(t, httpx.IsKind(err, httpx.KindGateway))
	assert.ErrorContains(t, err, "amount must be at least 2000")
}

func statusServer(t *testing.T, statuses ...string) *httptest.Server {
	var calls atomic.Int64
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		idx := int(n) - 1
		if idx >= len(statuses) {
			idx = len(statuses) - 1
		}
		var resp apiResponse
		resp.Data.ID = "src_123"
		resp.Data.Attributes = responseAttributes{Status: statuses[idx]}
		json.NewEncoder(w).Encode(resp)
	}))
}

func fastPollConfig(attempts int) *PollConfig {
	return &PollConfig{
		MaxAttempts:   attempts,
		InitialDelay:  time.Millisecond,
		MaxDelay:      2 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

func TestWaitForPaid_EventuallyPaid(t *testing.T) {
	srv := statusServer(t, "pending", "chargeable", "paid")
	defer srv.Close()

	c := NewClient(srv.URL, testReturnURL, testSecret)
	status, err := c.WaitForPaid(context.Background(), "src_123", fastPollConfig(5))

	require.NoError(t, err)
	assert.Equal(t, domain.SourceStatusPaid, status)
}

func TestWaitForPaid_FailedIsTerminal(t *testing.T) {
	srv := statusServer(t, "pending", "failed")
	defer srv.Close()

	c := NewClient(srv.URL, testReturnURL, testSecret)
	status, err := c.WaitForPaid(context.Background(), "src_123", fastPollConfig(5))

	require.NoError(t, err)
	assert.Equal(t, domain.SourceStatusFailed, status)
}

func TestWaitForPaid_AbandonedAfterExhaustion(t *testing.T) {
	srv := statusServer(t, "pending")
	defer srv.Close()

	c := NewClient(srv.URL, testReturnURL, testSecret)
	status, err := c.WaitForPaid(context.Background(), "src_123", fastPollConfig(3))

	require.NoError(t, err)
	assert.Equal(t, domain.SourceStatusAbandoned, status)
}

func TestGetSource_Status(t *testing.T) {
	srv := statusServer(t, "chargeable")
	defer srv.Close()

	c := NewClient(srv.URL, testReturnURL, testSecret)
	status, err := c.GetSource(context.Background(), "src_123")

	require.NoError(t, err)
	assert.Equal(t, domain.SourceStatusChargeable, status)
}
