package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lescrepesdenanou/shop/internal/domain/cart"
	"github.com/lescrepesdenanou/shop/internal/domain/checkout"
)

// createCheckoutSession handles POST /create-checkout-session: it decodes the
// cart payload, asks the checkout service for a payment session, and returns
// the session id and redirect URL.
func (h *Handler) createCheckoutSession(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Requête invalide.")
		return
	}

	items, email, err := decodeCheckoutRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Requête invalide.")
		return
	}

	session, err := h.checkout.CreateSession(r.Context(), items, email)
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			writeError(w, http.StatusBadRequest, "Le panier est vide.")
			return
		}
		// Provider internals stay in the log; the customer gets one generic
		// message no matter what went wrong upstream.
		zctx.From(r.Context()).Error("create checkout session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Erreur lors de la création de la session")
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("id", func(e *jx.Encoder) { e.Str(session.ID) })
			e.Field("url", func(e *jx.Encoder) { e.Str(session.URL) })
		})
	})
}

// decodeCheckoutRequest parses {"cart":[...],"customerEmail":"..."}. Prices
// arrive as JSON numbers and are parsed digit-exact into decimals; no float
// round-trip.
func decodeCheckoutRequest(data []byte) (items []cart.Item, email string, err error) {
	d := jx.DecodeBytes(data)
	err = d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "cart":
			return d.Arr(func(d *jx.Decoder) error {
				it, err := decodeCartItem(d)
				if err != nil {
					return err
				}
				items = append(items, it)
				return nil
			})
		case "customerEmail":
			s, err := d.Str()
			email = s
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, "", errors.Wrap(err, "decode checkout request")
	}
	return items, email, nil
}

func decodeCartItem(d *jx.Decoder) (cart.Item, error) {
	var it cart.Item
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "name":
			s, err := d.Str()
			it.Name = s
			return err
		case "unitPrice":
			n, err := d.Num()
			if err != nil {
				return err
			}
			p, err := decimal.NewFromString(string(n))
			if err != nil {
				return errors.Wrap(err, "unit price")
			}
			it.UnitPrice = p
			return nil
		case "quantity":
			q, err := d.Int()
			it.Quantity = q
			return err
		case "components":
			return d.Arr(func(d *jx.Decoder) error {
				s, err := d.Str()
				if err != nil {
					return err
				}
				it.Components = append(it.Components, s)
				return nil
			})
		default:
			return d.Skip()
		}
	})
	return it, err
}
