package domain

// SourceStatus is the gateway-reported state of a payment source. It is
// only ever updated from a gateway poll, never inferred locally.
type SourceStatus string

const (
	SourceStatusPending    SourceStatus = "pending"
	SourceStatusChargeable SourceStatus = "chargeable"
	SourceStatusPaid       SourceStatus = "paid"
	SourceStatusFailed     SourceStatus = "failed"
	SourceStatusExpired    SourceStatus = "expired"
	// SourceStatusAbandoned is assigned client-side when polling gives up
	// without reaching a gateway terminal state.
	SourceStatusAbandoned SourceStatus = "abandoned"
)

var sourceTransitions = map[SourceStatus][]SourceStatus{
	SourceStatusPending:    {SourceStatusChargeable, SourceStatusFailed, SourceStatusExpired, SourceStatusAbandoned},
	SourceStatusChargeable: {SourceStatusPaid, SourceStatusFailed, SourceStatusExpired, SourceStatusAbandoned},
}

func (s SourceStatus) CanTransitionTo(next SourceStatus) bool {
	for _, allowed := range sourceTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s SourceStatus) IsTerminal() bool {
	switch s {
	case SourceStatusPaid, SourceStatusFailed, SourceStatusExpired, SourceStatusAbandoned:
		return true
	}
	return false
}

func (s SourceStatus) String() string {
	return string(s)
}

// PaymentSource is the client-side view of a gateway payment object,
// either a wallet source or a hosted checkout link adapted to the same
// shape. Amount is in minor currency units (centavos).
type PaymentSource struct {
	ID          string        `json:"id"`
	Method      PaymentMethod `json:"method"`
	Amount      int64         `json:"amount"`
	CheckoutURL string        `json:"checkout_url"`
	SuccessURL  string        `json:"success_url"`
	FailedURL   string        `json:"failed_url"`
	Status      SourceStatus  `json:"status"`
}
