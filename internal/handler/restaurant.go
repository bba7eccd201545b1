package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"biteclub/internal/httputil"
	"biteclub/internal/yelp"
)

// RestaurantHandler relays restaurant lookups to the external search API.
type RestaurantHandler struct {
	yelpClient *yelp.Client
}

func NewRestaurantHandler(yelpClient *yelp.Client) *RestaurantHandler {
	return &RestaurantHandler{yelpClient: yelpClient}
}

// Search handles GET /restaurants/search?location=
func (h *RestaurantHandler) Search(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	if location == "" {
		httputil.WriteBadRequest(w, "Query parameter 'location' is required")
		return
	}

	raw, err := h.yelpClient.SearchRestaurants(r.Context(), location)
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, raw)
}

// GetByID handles GET /restaurants/{id}
func (h *RestaurantHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "id")

	raw, err := h.yelpClient.GetBusiness(r.Context(), businessID)
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, raw)
}

func (h *RestaurantHandler) writeUpstreamError(w http.ResponseWriter, err error) {
	var upstream *yelp.ErrUpstream
	if errors.As(err, &upstream) && upstream.StatusCode == http.StatusNotFound {
		httputil.WriteNotFound(w, "Restaurant not found")
		return
	}
	slog.Error("search api request failed", "error", err)
	httputil.WriteBadGateway(w, "Restaurant search is unavailable")
}
