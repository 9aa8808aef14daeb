package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/DougJudyPontiacBandit/ramyeonsite/domain"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/httpx"
)

// ErrUnavailable means the verdict could not be obtained at all. It is
// never collapsed into "in stock": checkout must halt.
var ErrUnavailable = errors.New("stock validation unavailable")

type ItemResult struct {
	ProductID   string `json:"product_id"`
	Available   bool   `json:"available"`
	MaxQuantity int    `json:"max_quantity,omitempty"`
}

type Result struct {
	OK    bool
	Items []ItemResult
}

// Unavailable lists the product ids that failed validation.
func (r *Result) Unavailable() []string {
	var ids []string
	for _, item := range r.Items {
		if !item.Available {
			ids = append(ids, item.ProductID)
		}
	}
	return ids
}

type Validator struct {
	api *httpx.Client
}

func NewValidator(api *httpx.Client) *Validator {
	return &Validator{api: api}
}

type validateRequest struct {
	Items []validateItem `json:"items"`
}

type validateItem struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type validateResponse struct {
	Success bool         `json:"success"`
	Results []ItemResult `json:"results"`
}

// Validate submits the whole candidate line-item list in one request so
// there is no partial-validation race across items.
func (v *Validator) Validate(ctx context.Context, items []domain.CartItem) (*Result, error) {
	req := validateRequest{Items: make([]validateItem, len(items))}
	for i, item := range items {
		req.Items[i] = validateItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.UnitPrice,
		}
	}

	var resp validateResponse
	if err := v.api.PostJSON(ctx, "/stock/validate", req, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	result := &Result{OK: resp.Success, Items: resp.Results}
	if len(result.Unavailable()) > 0 {
		result.OK = false
	}
	return result, nil
}
