package http

import (
	"net/http"

	"github.com/fjod/go_cellar/internal/catalog"
	"github.com/fjod/go_cellar/internal/session"
	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	catalog catalog.Catalog
}

func NewCatalogHandler(cat catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: cat}
}

// GET /api/v1/catalog
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, CatalogResponse{Items: catalogItemsDTO(h.catalog.List())})
}

// GET /api/v1/catalog/{id}
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.catalog.Get(chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, catalogItemDTO(item))
}

// Home serves the catalog page: every wine plus the visitor's cart.
// GET /
func (h *CatalogHandler) Home(w http.ResponseWriter, r *http.Request, s *session.Session) {
	respondJSON(w, http.StatusOK, HomeResponse{
		Items: catalogItemsDTO(h.catalog.List()),
		Cart:  cartDTO(s.Cart.Snapshot()),
	})
}
