package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/lescrepesdenanou/shop/internal/domain/confirmation"
	"github.com/lescrepesdenanou/shop/internal/payment/stripe"
)

// webhook handles POST /webhook. Unlike every other route, the body is
// consumed as raw bytes: the Stripe signature covers the exact payload.
func (h *Handler) webhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lg := zctx.From(ctx)
	if span := trace.SpanContextFromContext(ctx); span.HasTraceID() {
		lg = lg.With(zap.String("trace_id", span.TraceID().String()))
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Requête invalide.")
		return
	}

	event, err := h.verifier.DecodeEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, stripe.ErrInvalidSignature) {
			h.webhooksRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "signature")))
			lg.Error("webhook rejected", zap.Error(err))
			writeError(w, http.StatusBadRequest, "Signature invalide.")
			return
		}
		// Signature checked out but the payload would not decode.
		h.webhooksRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "decode")))
		lg.Error("webhook decode", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Événement invalide.")
		return
	}
	lg.Info("webhook received", zap.String("type", event.Type))

	order, err := h.confirmations.Process(ctx, *event)
	if err != nil {
		switch {
		case errors.Is(err, confirmation.ErrUnsupportedEvent):
			h.webhooksRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "event_type")))
			writeError(w, http.StatusBadRequest, "Événement non pris en charge.")
		case errors.Is(err, confirmation.ErrMissingEmail):
			h.webhooksRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "missing_email")))
			writeError(w, http.StatusBadRequest, "Aucun e-mail associé à la commande.")
		default:
			h.webhooksRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "other")))
			lg.Error("webhook processing", zap.Error(err))
			writeError(w, http.StatusBadRequest, "Événement invalide.")
		}
		return
	}

	h.ordersConfirmed.Add(ctx, 1)
	lg.Info("order confirmed",
		zap.String("customer", order.CustomerEmail),
		zap.String("amount", order.Amount),
	)
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("received", func(e *jx.Encoder) { e.Bool(true) })
		})
	})
}
