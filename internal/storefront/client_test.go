package storefront

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lescrepesdenanou/shop/internal/domain/cart"
)

func testItems(t *testing.T) []cart.Item {
	t.Helper()
	return []cart.Item{
		{Name: "Crêpe Nutella", UnitPrice: price(t, "4.50"), Quantity: 2},
		{Name: "Crêpe du chef", UnitPrice: price(t, "7.00"), Quantity: 1, Components: []string{"Jambon", "Fromage"}},
	}
}

func TestInitiateCheckout(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/create-checkout-session", r.URL.Path)
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "cs_1", "url": "https://checkout.stripe.com/c/pay/cs_1"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/") // trailing slash must not double up
	url, err := c.InitiateCheckout(t.Context(), testItems(t), "client@example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_1", url)
	assert.Equal(t, "application/json", gotContentType)

	var req struct {
		Cart []struct {
			Name       string   `json:"name"`
			UnitPrice  float64  `json:"unitPrice"`
			Quantity   int      `json:"quantity"`
			Components []string `json:"components"`
		} `json:"cart"`
		CustomerEmail string `json:"customerEmail"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &req))
	assert.Equal(t, "client@example.com", req.CustomerEmail)
	require.Len(t, req.Cart, 2)
	assert.Equal(t, "Crêpe Nutella", req.Cart[0].Name)
	assert.Equal(t, 4.5, req.Cart[0].UnitPrice)
	assert.Equal(t, 2, req.Cart[0].Quantity)
	assert.Equal(t, []string{"Jambon", "Fromage"}, req.Cart[1].Components)
}

func TestInitiateCheckoutFailFast(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer srv.Close()
	c := NewClient(srv.URL)

	t.Run("empty cart", func(t *testing.T) {
		_, err := c.InitiateCheckout(t.Context(), nil, "client@example.com")
		assert.ErrorIs(t, err, ErrEmptyCart)
	})
	t.Run("email without at sign", func(t *testing.T) {
		_, err := c.InitiateCheckout(t.Context(), testItems(t), "client.example.com")
		assert.ErrorIs(t, err, ErrInvalidEmail)
	})
	t.Run("empty email", func(t *testing.T) {
		_, err := c.InitiateCheckout(t.Context(), testItems(t), "")
		assert.ErrorIs(t, err, ErrInvalidEmail)
	})

	// Validation failures never reach the backend.
	assert.Zero(t, requests.Load())
}

func TestInitiateCheckoutBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "Erreur lors de la création de la session"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).InitiateCheckout(t.Context(), testItems(t), "client@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCheckoutFailed)
	assert.Contains(t, err.Error(), "500")
}

func TestInitiateCheckoutMissingURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "cs_1"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).InitiateCheckout(t.Context(), testItems(t), "client@example.com")
	assert.ErrorIs(t, err, ErrCheckoutFailed)
}

func TestInitiateCheckoutNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := NewClient(srv.URL).InitiateCheckout(t.Context(), testItems(t), "client@example.com")
	require.Error(t, err)

	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr))
}
