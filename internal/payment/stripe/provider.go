// Package stripe adapts the Stripe API to the checkout and confirmation
// domains: hosted Checkout Sessions on the way out, signed webhook events on
// the way back in.
package stripe

import (
	"context"

	"github.com/go-faster/errors"
	stripesdk "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"

	"github.com/lescrepesdenanou/shop/internal/domain/checkout"
)

var _ checkout.Provider = (*Provider)(nil)

// Provider creates Stripe Checkout Sessions. All sessions are one-time card
// payments in EUR with fixed success/cancel redirect URLs.
type Provider struct {
	api        *client.API
	successURL string
	cancelURL  string
}

// NewProvider builds a Provider with its own API client. The secret key is
// not validated here; a bad or missing key surfaces on the first session
// request, matching how the site has always behaved.
func NewProvider(secretKey, successURL, cancelURL string) *Provider {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Provider{
		api:        api,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

// CreateSession requests a hosted Checkout Session and returns its ID and
// redirect URL.
func (p *Provider) CreateSession(ctx context.Context, req checkout.SessionRequest) (*checkout.Session, error) {
	lineItems := make([]*stripesdk.CheckoutSessionLineItemParams, len(req.LineItems))
	for i, li := range req.LineItems {
		lineItems[i] = &stripesdk.CheckoutSessionLineItemParams{
			PriceData: &stripesdk.CheckoutSessionLineItemPriceDataParams{
				Currency: stripesdk.String(string(stripesdk.CurrencyEUR)),
				ProductData: &stripesdk.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripesdk.String(li.Name),
					Description: stripesdk.String(li.Description),
				},
				UnitAmount: stripesdk.Int64(li.UnitAmount),
			},
			Quantity: stripesdk.Int64(li.Quantity),
		}
	}

	params := &stripesdk.CheckoutSessionParams{
		PaymentMethodTypes: stripesdk.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		Mode:               stripesdk.String(string(stripesdk.CheckoutSessionModePayment)),
		SuccessURL:         stripesdk.String(p.successURL),
		CancelURL:          stripesdk.String(p.cancelURL),
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripesdk.String(req.CustomerEmail)
	}
	params.Context = ctx
	// The order summary rides along as session metadata; the completion
	// webhook is the only place it is read back.
	params.AddMetadata("orderDetails", req.OrderSummary)

	session, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, errors.Wrap(err, "create checkout session")
	}

	return &checkout.Session{ID: session.ID, URL: session.URL}, nil
}
