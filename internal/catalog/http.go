// Copyright (c) 2026 StreamAdvisor. All rights reserved.

package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/streamadvisor/streamadvisor/internal/platform/apperr"
	requestutil "github.com/streamadvisor/streamadvisor/internal/platform/request"
	"github.com/streamadvisor/streamadvisor/internal/platform/respond"
)

// Handler exposes the catalog over HTTP. All routes are public.
type Handler struct {
	catalog *Catalog
}

// NewHandler constructs the catalog HTTP handler.
func NewHandler(catalog *Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// Routes returns the router mounted at /content.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Get("/genres", handler.genres)
	router.Get("/{itemID}", handler.get)

	return router
}

// list handles GET /content.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.catalog.Items())
}

// genres handles GET /content/genres.
func (handler *Handler) genres(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.catalog.Genres())
}

// get handles GET /content/{itemID}.
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	itemID := requestutil.Param(request, "itemID")

	item, found := handler.catalog.Get(itemID)
	if !found {
		respond.Error(writer, request, apperr.NotFound("Content item"))
		return
	}

	respond.OK(writer, item)
}
