package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gacz1998/Proxy-API/pkg/catalog"
	"github.com/gacz1998/Proxy-API/pkg/imageproxy"
	"github.com/gacz1998/Proxy-API/pkg/query"
)

// productsResponse is the JSON envelope for product list responses.
type productsResponse struct {
	Products   []catalog.Product `json:"products"`
	Total      int               `json:"total"`
	PageNumber int               `json:"page_number"`
	PageSize   int               `json:"page_size"`
}

// errorResponse is the JSON envelope for error responses.
type errorResponse struct {
	Error string `json:"error"`
}

// handleProducts serves a filtered, paginated page of the catalog.
func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	snap, err := s.catalog.Snapshot(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Catalog unavailable")
		s.writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	q := r.URL.Query()
	result := query.Run(snap,
		query.Filters{
			Family:   q.Get("family"),
			Category: q.Get("category"),
		},
		q.Get("page_size"),
		q.Get("page_number"),
	)

	items := result.Items
	if items == nil {
		items = []catalog.Product{}
	}

	s.writeJSON(w, http.StatusOK, productsResponse{
		Products:   items,
		Total:      result.Total,
		PageNumber: result.PageNumber,
		PageSize:   result.PageSize,
	})
}

// handleProductBySKU serves a single product by its identifier.
func (s *Server) handleProductBySKU(w http.ResponseWriter, r *http.Request) {
	snap, err := s.catalog.Snapshot(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Catalog unavailable")
		s.writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	sku := r.PathValue("sku")
	product := snap.FindByCode(sku)
	if product == nil {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
		return
	}

	s.writeJSON(w, http.StatusOK, product)
}

// handleImage serves a cached image, fetching it from the origin when
// needed. Image failures never produce an error status: anything but a
// malformed URL resolves to a placeholder redirect.
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entry, err := s.images.Get(r.Context(), q.Get("url"), q.Get("size"))
	if err != nil {
		if errors.Is(err, imageproxy.ErrInvalidURL) {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		http.Redirect(w, r, s.config.PlaceholderURL, http.StatusFound)
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", entry.ContentType)
	if _, err := w.Write(entry.Data); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to write image response")
	}
}

// handleKeepAlive answers liveness probes without touching any cache.
func (s *Server) handleKeepAlive(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to write keep-alive response")
	}
}

// writeJSON writes v as a JSON response with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to encode JSON response")
	}
}
