package stripe

import (
	"encoding/json"

	"github.com/go-faster/errors"
	stripesdk "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/lescrepesdenanou/shop/internal/domain/confirmation"
)

// ErrInvalidSignature is returned when a webhook payload fails signature
// verification. Such payloads are untrusted and must be discarded whole.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// WebhookVerifier authenticates inbound Stripe webhook deliveries using the
// endpoint's shared signing secret. Verification is the system's only
// authenticity guarantee for payment notifications.
type WebhookVerifier struct {
	secret string
}

// NewWebhookVerifier creates a WebhookVerifier for the given signing secret.
func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: secret}
}

// DecodeEvent verifies the signature over the raw payload and converts the
// event into the domain representation. The payload must be the unmodified
// request body bytes; any re-serialization breaks the signature.
func (v *WebhookVerifier) DecodeEvent(payload []byte, sigHeader string) (*confirmation.Event, error) {
	// The SDK pins an API version; events from an account on another version
	// are still authentic, so only the signature decides.
	ev, err := webhook.ConstructEventWithOptions(payload, sigHeader, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, errors.Wrap(ErrInvalidSignature, err.Error())
	}

	out := &confirmation.Event{Type: string(ev.Type)}
	if out.Type != confirmation.EventCheckoutCompleted {
		// Unsupported types keep their name for logging but carry no session
		// data; the confirmation service rejects them before extraction.
		return out, nil
	}

	var session stripesdk.CheckoutSession
	if err := json.Unmarshal(ev.Data.Raw, &session); err != nil {
		return nil, errors.Wrap(err, "decode checkout session")
	}

	out.Session = confirmation.SessionData{
		CustomerEmail: session.CustomerEmail,
		AmountTotal:   session.AmountTotal,
		Metadata:      session.Metadata,
	}
	if session.CustomerDetails != nil {
		out.Session.DetailsEmail = session.CustomerDetails.Email
	}
	return out, nil
}
