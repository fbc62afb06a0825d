package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/maartenverheul/Trek/internal/auth"
	"github.com/maartenverheul/Trek/internal/geojson"
	"github.com/maartenverheul/Trek/internal/layers"
	"github.com/maartenverheul/Trek/internal/models"
	"github.com/maartenverheul/Trek/internal/store"
)

// Handlers is the server action layer: thin JSON endpoints over the store.
type Handlers struct {
	store    store.Store
	auth     *auth.Manager
	log      zerolog.Logger
	insights *Insights
}

func NewHandlers(s store.Store, a *auth.Manager, log zerolog.Logger, geminiAPIKey string) *Handlers {
	return &Handlers{
		store:    s,
		auth:     a,
		log:      log,
		insights: NewInsights(geminiAPIKey),
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// storeError maps store failures onto HTTP statuses.
func (h *Handlers) storeError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, store.ErrInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.log.Error().Err(err).Msg(msg)
		http.Error(w, "Database error", http.StatusInternalServerError)
	}
}

func (h *Handlers) SignInHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.store.SignInUser(r.Context(), body.Username)
	if err != nil {
		h.storeError(w, err, "sign in failed")
		return
	}

	h.auth.SetCookie(w, user.ID)
	writeJSON(w, user)
}

func (h *Handlers) SignOutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.auth.ClearCookie(w)
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) MeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.store.GetUserByID(r.Context(), userID)
	if err != nil {
		h.storeError(w, err, "get current user failed")
		return
	}
	writeJSON(w, user)
}

func (h *Handlers) MapsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		maps, err := h.store.ListMaps(r.Context(), userID)
		if err != nil {
			h.storeError(w, err, "list maps failed")
			return
		}
		writeJSON(w, maps)

	case http.MethodPost:
		var m models.NewMap
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		// Maps are always created for the signed-in user.
		m.UserID = userID
		created, err := h.store.CreateMap(r.Context(), m)
		if err != nil {
			h.storeError(w, err, "create map failed")
			return
		}
		writeJSON(w, created)

	case http.MethodPut:
		id, err := strconv.Atoi(r.URL.Query().Get("id"))
		if err != nil {
			http.Error(w, "Invalid map ID", http.StatusBadRequest)
			return
		}
		var patch models.MapPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if patch.Empty() {
			http.Error(w, "No fields to update", http.StatusBadRequest)
			return
		}
		updated, err := h.store.UpdateMap(r.Context(), id, patch)
		if err != nil {
			h.storeError(w, err, "update map failed")
			return
		}
		writeJSON(w, updated)

	case http.MethodDelete:
		id, err := strconv.Atoi(r.URL.Query().Get("id"))
		if err != nil {
			http.Error(w, "Invalid map ID", http.StatusBadRequest)
			return
		}
		if err := h.store.DeleteMap(r.Context(), id); err != nil {
			h.storeError(w, err, "delete map failed")
			return
		}
		w.WriteHeader(http.StatusOK)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handlers) CategoriesHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		mapID, err := strconv.Atoi(r.URL.Query().Get("map_id"))
		if err != nil {
			http.Error(w, "Invalid map ID", http.StatusBadRequest)
			return
		}
		categories, err := h.store.ListCategories(r.Context(), mapID)
		if err != nil {
			h.storeError(w, err, "list categories failed")
			return
		}
		writeJSON(w, categories)

	case http.MethodPost:
		var c models.NewCategory
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		created, err := h.store.CreateCategory(r.Context(), c)
		if err != nil {
			h.storeError(w, err, "create category failed")
			return
		}
		writeJSON(w, created)

	case http.MethodPut:
		id, err := strconv.Atoi(r.URL.Query().Get("id"))
		if err != nil {
			http.Error(w, "Invalid category ID", http.StatusBadRequest)
			return
		}
		var patch models.CategoryPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if patch.Empty() {
			http.Error(w, "No fields to update", http.StatusBadRequest)
			return
		}
		updated, err := h.store.UpdateCategory(r.Context(), id, patch)
		if err != nil {
			h.storeError(w, err, "update category failed")
			return
		}
		writeJSON(w, updated)

	case http.MethodDelete:
		id, err := strconv.Atoi(r.URL.Query().Get("id"))
		if err != nil {
			http.Error(w, "Invalid category ID", http.StatusBadRequest)
			return
		}
		if err := h.store.DeleteCategory(r.Context(), id); err != nil {
			h.storeError(w, err, "delete category failed")
			return
		}
		w.WriteHeader(http.StatusOK)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handlers) MarkersHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		mapID, err := strconv.Atoi(r.URL.Query().Get("map_id"))
		if err != nil {
			http.Error(w, "Invalid map ID", http.StatusBadRequest)
			return
		}
		markers, err := h.store.ListMarkers(r.Context(), mapID)
		if err != nil {
			h.storeError(w, err, "list markers failed")
			return
		}
		writeJSON(w, markers)

	case http.MethodPost:
		var m models.NewMarker
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		created, err := h.store.CreateMarker(r.Context(), m)
		if err != nil {
			h.storeError(w, err, "create marker failed")
			return
		}
		writeJSON(w, created)

	case http.MethodPut:
		id, err := strconv.Atoi(r.URL.Query().Get("id"))
		if err != nil {
			http.Error(w, "Invalid marker ID", http.StatusBadRequest)
			return
		}
		var m models.NewMarker
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		updated, err := h.store.UpdateMarker(r.Context(), id, m)
		if err != nil {
			h.storeError(w, err, "update marker failed")
			return
		}
		writeJSON(w, updated)

	case http.MethodDelete:
		id, err := strconv.Atoi(r.URL.Query().Get("id"))
		if err != nil {
			http.Error(w, "Invalid marker ID", http.StatusBadRequest)
			return
		}
		if err := h.store.DeleteMarker(r.Context(), id); err != nil {
			h.storeError(w, err, "delete marker failed")
			return
		}
		w.WriteHeader(http.StatusOK)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// GroupedMarkersHandler returns the map's markers bucketed by category for
// the features panel, with the uncategorized bucket last.
func (h *Handlers) GroupedMarkersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	mapID, err := strconv.Atoi(r.URL.Query().Get("map_id"))
	if err != nil {
		http.Error(w, "Invalid map ID", http.StatusBadRequest)
		return
	}

	markers, err := h.store.ListMarkers(r.Context(), mapID)
	if err != nil {
		h.storeError(w, err, "list markers failed")
		return
	}
	categories, err := h.store.ListCategories(r.Context(), mapID)
	if err != nil {
		h.storeError(w, err, "list categories failed")
		return
	}
	writeJSON(w, models.GroupByCategory(markers, categories))
}

// GeoJSONHandler exports a map's markers as a GeoJSON FeatureCollection.
func (h *Handlers) GeoJSONHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	mapID, err := strconv.Atoi(r.URL.Query().Get("map_id"))
	if err != nil {
		http.Error(w, "Invalid map ID", http.StatusBadRequest)
		return
	}

	markers, err := h.store.ListMarkers(r.Context(), mapID)
	if err != nil {
		h.storeError(w, err, "list markers failed")
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	json.NewEncoder(w).Encode(geojson.FromMarkers(markers))
}

// LayersHandler serves the fixed base layer catalog.
func (h *Handlers) LayersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, layers.All())
}

func (h *Handlers) SettingsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		settings, err := h.store.GetSettings(r.Context(), userID)
		if err != nil {
			h.storeError(w, err, "get settings failed")
			return
		}
		writeJSON(w, settings)

	case http.MethodPut:
		var s models.Settings
		if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if s.MapType == "" {
			s.MapType = layers.DefaultID
		}
		if !layers.Valid(s.MapType) {
			http.Error(w, "Unknown map type", http.StatusBadRequest)
			return
		}
		stored, err := h.store.PutSettings(r.Context(), userID, s)
		if err != nil {
			h.storeError(w, err, "put settings failed")
			return
		}
		writeJSON(w, stored)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
