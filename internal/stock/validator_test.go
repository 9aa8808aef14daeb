package stock

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DougJudyPontiacBandit/ramyeonsite/domain"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/httpx"
)

func testItems() []domain.CartItem {
	return []domain.CartItem{
		{ProductID: "ramyeon-classic", UnitPrice: 120, Quantity: 2},
		{ProductID: "kimchi-side", UnitPrice: 45, Quantity: 1},
	}
}

func TestValidate_AllAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/stock/validate", r.URL.Path)

		var req validateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		// The full line-item list goes out in one request.
		require.Len(t, req.Items, 2)
		assert.Equal(t, "ramyeon-classic", req.Items[0].ProductID)
		assert.Equal(t, 2, req.Items[0].Quantity)
		assert.Equal(t, 120.0, req.Items[0].Price)

		json.NewEncoder(w).Encode(validateResponse{
			Success: true,
			Results: []ItemResult{
				{ProductID: "ramyeon-classic", Available: true},
				{ProductID: "kimchi-side", Available: true},
			},
		})
	}))
	defer srv.Close()

	v := NewValidator(httpx.NewClient("stock", srv.URL, nil))
	result, err := v.Validate(context.Background(), testItems())

	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Empty(t, result.Unavailable())
}

func TestValidate_UnavailableItemIsHardStop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(validateResponse{
			Success: true, // backend marked overall success but one item failed
			Results: []ItemResult{
				{ProductID: "ramyeon-classic", Available: true},
				{ProductID: "kimchi-side", Available: false, MaxQuantity: 0},
			},
		})
	}))
	defer srv.Close()

	v := NewValidator(httpx.NewClient("stock", srv.URL, nil))
	result, err := v.Validate(context.Background(), testItems())

	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Equal(t, []string{"kimchi-side"}, result.Unavailable())
}

func TestValidate_BackendDownIsNotInStock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	v := NewValidator(httpx.NewClient("stock", srv.URL, nil))
	result, err := v.Validate(context.Background(), testItems())

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrUnavailable)
}
