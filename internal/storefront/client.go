package storefront

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/lescrepesdenanou/shop/internal/domain/cart"
)

// Sentinel errors for checkout initiation. All of them except NetworkError
// are raised before any network call.
var (
	// ErrEmptyCart means there is nothing to pay for.
	ErrEmptyCart = errors.New("votre panier est vide")
	// ErrInvalidEmail means the contact address is absent or has no "@".
	// This is a deliberately weak check; the payment page revalidates.
	ErrInvalidEmail = errors.New("e-mail invalide")
	// ErrCheckoutFailed covers every backend-side failure: non-success
	// response or a success response without a redirect URL. The customer
	// only ever sees one generic message.
	ErrCheckoutFailed = errors.New("erreur lors de la création du paiement")
)

// NetworkError wraps a transport-level failure of the checkout call. There is
// no retry; the failure surfaces directly.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("checkout request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Client initiates checkouts against the shop backend. The backend URL is a
// parameter, not a constant baked into the page script.
type Client struct {
	baseURL string
	hc      *http.Client
}

// NewClient creates a checkout Client for the backend at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: 30 * time.Second},
	}
}

// InitiateCheckout submits the cart and contact email and returns the payment
// page URL the customer must be redirected to. Navigation is the caller's
// job; nothing runs after a successful return until the customer comes back
// via the success or cancel page.
func (c *Client) InitiateCheckout(ctx context.Context, items []cart.Item, customerEmail string) (string, error) {
	if len(items) == 0 {
		return "", ErrEmptyCart
	}
	if !strings.Contains(customerEmail, "@") {
		return "", ErrInvalidEmail
	}

	body := encodeCheckoutRequest(items, customerEmail)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/create-checkout-session", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Wrapf(ErrCheckoutFailed, "status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &NetworkError{Err: err}
	}

	url, err := decodeSessionURL(data)
	if err != nil {
		return "", errors.Wrap(err, "decode response")
	}
	if url == "" {
		return "", errors.Wrap(ErrCheckoutFailed, "missing payment URL")
	}
	return url, nil
}

// encodeCheckoutRequest serializes the wire form of a checkout request:
// {"cart":[...],"customerEmail":"..."}.
func encodeCheckoutRequest(items []cart.Item, customerEmail string) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("cart", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, it := range items {
					e.Obj(func(e *jx.Encoder) {
						e.Field("name", func(e *jx.Encoder) { e.Str(it.Name) })
						e.Field("unitPrice", func(e *jx.Encoder) { e.Raw([]byte(it.UnitPrice.String())) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int(it.Quantity) })
						if len(it.Components) > 0 {
							e.Field("components", func(e *jx.Encoder) {
								e.Arr(func(e *jx.Encoder) {
									for _, comp := range it.Components {
										e.Str(comp)
									}
								})
							})
						}
					})
				}
			})
		})
		e.Field("customerEmail", func(e *jx.Encoder) { e.Str(customerEmail) })
	})
	return e.Bytes()
}

// decodeSessionURL pulls the "url" field out of the backend response.
func decodeSessionURL(data []byte) (string, error) {
	var url string
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "url" {
			return d.Skip()
		}
		s, err := d.Str()
		url = s
		return err
	}); err != nil {
		return "", err
	}
	return url, nil
}
