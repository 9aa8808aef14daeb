package domain

// PaymentMethod is the customer-chosen way to settle an order.
type PaymentMethod string

const (
	PaymentMethodCash    PaymentMethod = "cash_on_delivery"
	PaymentMethodGCash   PaymentMethod = "gcash"
	PaymentMethodPayMaya PaymentMethod = "paymaya"
	PaymentMethodCard    PaymentMethod = "card"
	PaymentMethodGrabPay PaymentMethod = "grab_pay"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodGCash, PaymentMethodPayMaya, PaymentMethodCard, PaymentMethodGrabPay:
		return true
	}
	return false
}

// RequiresGateway reports whether the method needs a payment source
// from the gateway before the order can be placed.
func (m PaymentMethod) RequiresGateway() bool {
	return m != PaymentMethodCash
}

type CartItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name,omitempty"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

func (i CartItem) Subtotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

// OrderDraft is the cart state captured when checkout begins. Once a
// payment source has been attached it must not change except for
// status annotations.
type OrderDraft struct {
	CustomerID      string        `json:"customer_id"`
	Items           []CartItem    `json:"items"`
	DeliveryAddress string        `json:"delivery_address,omitempty"`
	Pickup          bool          `json:"pickup,omitempty"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	PointsToRedeem  int           `json:"points_to_redeem"`
	Instructions    string        `json:"special_instructions,omitempty"`
}

func (d *OrderDraft) Subtotal() float64 {
	var total float64
	for _, item := range d.Items {
		total += item.Subtotal()
	}
	return total
}
