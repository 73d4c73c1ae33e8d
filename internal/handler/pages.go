package handler

import (
	"net/http"
	"os"
	"path/filepath"
)

// allowedPages is the closed set of page routes. Everything else is a 404,
// which keeps path segments from reaching the filesystem. "concel" is the
// site's historical spelling of its cancel page and part of the Stripe
// redirect URLs, so it stays.
var allowedPages = map[string]struct{}{
	"Accueil":  {},
	"Commande": {},
	"Panier":   {},
	"concel":   {},
	"success":  {},
}

const pageNotFound = "Page non trouvée."

// root redirects the bare domain to the home page.
func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/Accueil", http.StatusFound)
}

// page serves <frontendDir>/<page>/index.html for allow-listed pages.
func (h *Handler) page(w http.ResponseWriter, r *http.Request) {
	page := r.PathValue("page")
	if _, ok := allowedPages[page]; !ok {
		http.Error(w, pageNotFound, http.StatusNotFound)
		return
	}

	path := filepath.Join(h.frontendDir, page, "index.html")
	if _, err := os.Stat(path); err != nil {
		http.Error(w, pageNotFound, http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, path)
}
