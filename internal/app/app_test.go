package app

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lescrepesdenanou/shop/internal/domain/checkout"
	"github.com/lescrepesdenanou/shop/internal/domain/confirmation"
	"github.com/lescrepesdenanou/shop/internal/handler"
	"github.com/lescrepesdenanou/shop/internal/payment/stripe"
	"github.com/lescrepesdenanou/shop/pkg/health"
)

// TestBuildMux registers the production route set, probes included, exactly
// as Run does. Registration itself is part of the test: conflicting
// ServeMux patterns panic at HandleFunc time, not at request time.
func TestBuildMux(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Accueil"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Accueil", "index.html"), []byte("<html>Accueil</html>"), 0o644))

	healthSvc := health.New()
	h := handler.New(
		handler.Config{FrontendDir: dir},
		checkout.NewService(nil),
		confirmation.NewService(nil),
		stripe.NewWebhookVerifier("whsec_test"),
	)
	mux := buildMux(healthSvc, h)

	get := func(target string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		return w
	}

	t.Run("probes", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, get("/livez").Code)

		// Readiness opens with the manual gate, like during startup.
		assert.Equal(t, http.StatusServiceUnavailable, get("/readyz").Code)
		healthSvc.SetReady(true)
		assert.Equal(t, http.StatusOK, get("/readyz").Code)
	})

	t.Run("page routes coexist", func(t *testing.T) {
		w := get("/Accueil")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Accueil")

		assert.Equal(t, http.StatusFound, get("/").Code)
		assert.Equal(t, http.StatusNotFound, get("/autre").Code)
	})
}
