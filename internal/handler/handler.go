// Package handler exposes the HTTP surface of the shop: the static page
// routes, the checkout-session endpoint, and the Stripe webhook.
package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/lescrepesdenanou/shop/internal/domain/checkout"
	"github.com/lescrepesdenanou/shop/internal/domain/confirmation"
)

// Verifier authenticates and decodes a raw webhook delivery. The payload must
// be the exact request body bytes; parsing before verification would defeat
// the signature.
type Verifier interface {
	DecodeEvent(payload []byte, sigHeader string) (*confirmation.Event, error)
}

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// FrontendDir is the directory holding one sub-directory per page, each
	// with an index.html.
	FrontendDir string
	// Meter records the order counters. A no-op meter is used when nil.
	Meter metric.Meter
}

// Handler wires the HTTP routes to the domain services.
type Handler struct {
	checkout      *checkout.Service
	confirmations *confirmation.Service
	verifier      Verifier
	frontendDir   string

	ordersConfirmed  metric.Int64Counter
	webhooksRejected metric.Int64Counter
}

// New constructs a Handler with the required dependencies.
func New(cfg Config, checkoutSvc *checkout.Service, confirmations *confirmation.Service, verifier Verifier) *Handler {
	meter := cfg.Meter
	if meter == nil {
		meter = noop.Meter{}
	}
	ordersConfirmed, _ := meter.Int64Counter("shop.orders.confirmed",
		metric.WithDescription("Completed checkout sessions accepted via webhook"))
	webhooksRejected, _ := meter.Int64Counter("shop.webhooks.rejected",
		metric.WithDescription("Webhook deliveries rejected before notification"))

	return &Handler{
		checkout:         checkoutSvc,
		confirmations:    confirmations,
		verifier:         verifier,
		frontendDir:      cfg.FrontendDir,
		ordersConfirmed:  ordersConfirmed,
		webhooksRejected: webhooksRejected,
	}
}

// Register mounts all routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.root)
	mux.HandleFunc("GET /{page}", h.page)
	mux.HandleFunc("POST /create-checkout-session", h.createCheckoutSession)
	mux.HandleFunc("POST /webhook", h.webhook)
}

// writeJSON writes a JSON response built by f with the given status.
func writeJSON(w http.ResponseWriter, status int, f func(e *jx.Encoder)) {
	var e jx.Encoder
	f(&e)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError writes the {"error": msg} body every failing endpoint uses.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("error", func(e *jx.Encoder) { e.Str(msg) })
		})
	})
}
