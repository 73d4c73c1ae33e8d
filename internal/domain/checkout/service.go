// Package checkout turns a cart into a hosted payment session: it prices the
// cart in integer minor units, builds the human-readable order summary, and
// asks the payment provider for a redirect URL.
package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/lescrepesdenanou/shop/internal/domain/cart"
)

// NoComponents is the description used for items without a component list.
const NoComponents = "Sans composants"

// ErrEmptyCart is returned when a session is requested for an empty cart.
// No provider call is made in that case.
var ErrEmptyCart = errors.New("le panier est vide")

// ProviderError wraps a failure reported by the payment provider. The wrapped
// error is for logs only and must never reach the customer.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("payment provider: %v", e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// LineItem is one priced entry of a payment session. UnitAmount is in minor
// currency units (cents for EUR).
type LineItem struct {
	Name        string
	Description string
	UnitAmount  int64
	Quantity    int64
}

// SessionRequest is the full input handed to the payment provider.
type SessionRequest struct {
	LineItems     []LineItem
	CustomerEmail string
	// OrderSummary travels as opaque session metadata and comes back with the
	// completion webhook. The provider is the only storage for it in between.
	OrderSummary string
}

// Session identifies a created payment session and where to send the customer.
type Session struct {
	ID  string
	URL string
}

// Provider creates hosted payment sessions with an external processor.
type Provider interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
}

// Service prices carts and requests payment sessions.
type Service struct {
	provider Provider
}

// NewService creates a checkout Service backed by the given payment provider.
func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

// CreateSession validates the cart, builds the priced line items and order
// summary, and requests a payment session. Provider failures come back as
// *ProviderError.
func (s *Service) CreateSession(ctx context.Context, items []cart.Item, customerEmail string) (*Session, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	lines := make([]LineItem, len(items))
	summary := make([]string, len(items))
	for i, it := range items {
		desc := NoComponents
		if len(it.Components) > 0 {
			desc = strings.Join(it.Components, ", ")
		}
		lines[i] = LineItem{
			Name:        it.Name,
			Description: desc,
			UnitAmount:  MinorUnits(it.UnitPrice),
			Quantity:    int64(it.Quantity),
		}
		summary[i] = fmt.Sprintf("%dx %s (%s)", it.Quantity, it.Name, desc)
	}

	session, err := s.provider.CreateSession(ctx, SessionRequest{
		LineItems:     lines,
		CustomerEmail: customerEmail,
		OrderSummary:  strings.Join(summary, ", "),
	})
	if err != nil {
		return nil, &ProviderError{Err: err}
	}
	return session, nil
}

// MinorUnits converts a decimal price to integer minor currency units,
// rounding halves away from zero: 4.50 -> 450, 0.015 -> 2.
func MinorUnits(price decimal.Decimal) int64 {
	return price.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
