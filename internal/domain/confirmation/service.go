// Package confirmation handles payment-completion events: it filters the
// event type, extracts the order details the provider carried for us, and
// triggers the customer and admin notification emails.
//
// The two email sends are best-effort by design: a failed send is logged and
// dropped, never surfaced to the payment provider. Signature verification
// happens before an event reaches this package.
package confirmation

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// EventCheckoutCompleted is the only event type this system consumes.
const EventCheckoutCompleted = "checkout.session.completed"

// UnknownOrder is the summary fallback when the session carries no metadata.
const UnknownOrder = "Commande inconnue"

// metadataOrderDetails is the session metadata key the checkout service
// writes the order summary under.
const metadataOrderDetails = "orderDetails"

// Sentinel errors for event processing. Both mean the event produced no side
// effects: no email is ever sent for a rejected event.
var (
	ErrUnsupportedEvent = errors.New("événement non pris en charge")
	ErrMissingEmail     = errors.New("aucun e-mail associé à la commande")
)

// Event is a provider-agnostic payment notification.
type Event struct {
	Type    string
	Session SessionData
}

// SessionData is the completed-session payload the provider reports.
// CustomerEmail is the address given at session creation; DetailsEmail is the
// one the customer typed on the payment page, used as a fallback.
type SessionData struct {
	CustomerEmail string
	DetailsEmail  string
	// AmountTotal is the paid total in minor currency units.
	AmountTotal int64
	Metadata    map[string]string
}

// Order is the extracted result of a completed session, ready for the
// notification templates. Amount is pre-formatted with two decimals.
type Order struct {
	CustomerEmail string
	Amount        string
	Summary       string
}

// Notifier sends the two order notifications. Implementations must treat the
// calls as independent: a failure of one has no bearing on the other.
type Notifier interface {
	OrderConfirmation(ctx context.Context, o Order) error
	AdminAlert(ctx context.Context, o Order) error
}

// Service processes completion events end to end.
type Service struct {
	notifier Notifier
}

// NewService creates a confirmation Service sending through notifier.
func NewService(notifier Notifier) *Service {
	return &Service{notifier: notifier}
}

// Process runs the filter/extract/validate/notify sequence for one event.
// It returns the extracted order on acceptance. Send failures are logged and
// swallowed: once an event validates, it is accepted, and the provider must
// not redeliver it.
//
// Redeliveries of the same session are processed again and send duplicate
// emails. Deduplication needs a durable store of seen session IDs, which this
// system deliberately does not have.
func (s *Service) Process(ctx context.Context, ev Event) (*Order, error) {
	if ev.Type != EventCheckoutCompleted {
		return nil, errors.Wrapf(ErrUnsupportedEvent, "type %q", ev.Type)
	}

	email := ev.Session.CustomerEmail
	if email == "" {
		email = ev.Session.DetailsEmail
	}
	if email == "" {
		return nil, ErrMissingEmail
	}

	summary := ev.Session.Metadata[metadataOrderDetails]
	if summary == "" {
		summary = UnknownOrder
	}

	order := Order{
		CustomerEmail: email,
		Amount:        FormatAmount(ev.Session.AmountTotal),
		Summary:       summary,
	}

	lg := zctx.From(ctx)

	// Two independent sends. Neither blocks nor fails the other; both are
	// attempted even when the first one errors.
	var g errgroup.Group
	g.Go(func() error {
		if err := s.notifier.OrderConfirmation(ctx, order); err != nil {
			lg.Error("customer confirmation email failed",
				zap.String("to", order.CustomerEmail),
				zap.Error(err),
			)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.notifier.AdminAlert(ctx, order); err != nil {
			lg.Error("admin alert email failed", zap.Error(err))
		}
		return nil
	})
	_ = g.Wait()

	return &order, nil
}

// FormatAmount renders a minor-unit total as a two-decimal major-unit string:
// 1050 -> "10.50".
func FormatAmount(minorUnits int64) string {
	return decimal.NewFromInt(minorUnits).Div(decimal.NewFromInt(100)).StringFixed(2)
}
