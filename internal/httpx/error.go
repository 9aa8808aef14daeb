package httpx

import (
	"errors"
	"fmt"
)

// Kind classifies a failed boundary call. Every backend and gateway
// error is collapsed into one of these so callers decide retry/halt
// behavior without inspecting transport details.
type Kind string

const (
	// KindValidation: bad input shape. No retry.
	KindValidation Kind = "validation"
	// KindAvailability: stock insufficient, insufficient points. Checkout halts.
	KindAvailability Kind = "availability"
	// KindTransient: network-level failure. Retryable for idempotent reads only.
	KindTransient Kind = "transient"
	// KindGateway: non-2xx from the payment provider, with its detail text.
	KindGateway Kind = "gateway"
	// KindUnavailable: the backend itself is down or erroring.
	KindUnavailable Kind = "unavailable"
)

type Error struct {
	Kind    Kind
	Message string
	Status  int // HTTP status when one was received, 0 otherwise
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// IsKind reports whether err carries the given Kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	var he *Error
	return errors.As(err, &he) && he.Kind == kind
}

// KindOf extracts the Kind from err, defaulting to transient for
// unclassified errors.
func KindOf(err error) Kind {
	var he *Error
	if errors.As(err, &he) {
		return he.Kind
	}
	return KindTransient
}

func kindForStatus(status int) Kind {
	switch {
	case status == 400:
		return KindValidation
	case status == 409 || status == 422:
		return KindAvailability
	case status >= 500:
		return KindUnavailable
	default:
		return KindValidation
	}
}
