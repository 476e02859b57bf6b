package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"mspro-labs/tea-buddy/internal/collection"
	"mspro-labs/tea-buddy/internal/lexicon"
	"mspro-labs/tea-buddy/internal/models"
	"mspro-labs/tea-buddy/internal/store"
)

// handleListTeas returns the teas matching the query string filters
func (s *Server) handleListTeas(w http.ResponseWriter, r *http.Request) {
	teas, err := s.store.ListTeas(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list teas")
		respondError(w, http.StatusInternalServerError, "Failed to fetch teas")
		return
	}

	q := r.URL.Query()
	respondJSON(w, http.StatusOK, collection.Filter(teas, collection.Query{
		Type:           q.Get("type"),
		Search:         q.Get("search"),
		ShowOutOfStock: q.Get("showOutOfStock") == "true",
		Wishlist:       q.Get("wishlist") == "true",
	}))
}

func (s *Server) handleGetTea(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid tea id")
		return
	}
	tea, err := s.store.GetTea(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Tea not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch tea")
		return
	}
	respondJSON(w, http.StatusOK, tea)
}

// handleCreateTea stores a new tea. Missing type and method default to
// Green and Western; inStock defaults to true when decoding. Origin and
// temperature are canonicalized like the form does.
func (s *Server) handleCreateTea(w http.ResponseWriter, r *http.Request) {
	var tea models.Tea
	if err := decodeJSON(r, &tea); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	tea.ID = 0
	tea.Name = strings.TrimSpace(tea.Name)
	if tea.Name == "" {
		respondError(w, http.StatusBadRequest, "Tea name is required")
		return
	}
	if tea.Type == "" {
		tea.Type = "Green"
	}
	if tea.Method == "" {
		tea.Method = "Western"
	}
	tea = collection.Canonicalize(tea)

	created, err := s.store.AddTea(r.Context(), tea)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to add tea")
		respondError(w, http.StatusInternalServerError, "Failed to create tea")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// handleUpdateTea applies the fields present in the body over the stored
// tea; absent fields keep their values.
func (s *Server) handleUpdateTea(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid tea id")
		return
	}
	current, err := s.store.GetTea(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Tea not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch tea")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read body")
		return
	}
	merged, err := patchTea(current, body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	merged.ID = id
	merged = collection.Canonicalize(merged)

	updated, err := s.store.UpdateTea(r.Context(), merged)
	if err != nil {
		s.log.Error().Err(err).Int64("id", int64(id)).Msg("Failed to update tea")
		respondError(w, http.StatusInternalServerError, "Failed to update tea")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTea(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid tea id")
		return
	}
	err := s.store.DeleteTea(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Tea not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete tea")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Tea deleted"})
}

func (s *Server) handleTeaTypes(w http.ResponseWriter, r *http.Request) {
	types := append([]string{collection.AllTypes}, lexicon.Default().TeaTypes...)
	respondJSON(w, http.StatusOK, types)
}

func (s *Server) handleOrigins(w http.ResponseWriter, r *http.Request) {
	teas, err := s.store.ListTeas(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch teas")
		return
	}
	respondJSON(w, http.StatusOK, collection.OriginCounts(teas))
}

var snakeKeys = map[string]string{
	"image_url":   "imageUrl",
	"in_stock":    "inStock",
	"is_wishlist": "isWishlist",
	"stock_grams": "stockGrams",
	"created_at":  "createdAt",
}

// patchTea overlays the top-level keys of body onto current.
func patchTea(current models.Tea, body []byte) (models.Tea, error) {
	var patch map[string]json.RawMessage
	if err := json.Unmarshal(body, &patch); err != nil {
		return models.Tea{}, err
	}

	base, err := json.Marshal(current)
	if err != nil {
		return models.Tea{}, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(base, &fields); err != nil {
		return models.Tea{}, err
	}
	for k, v := range patch {
		if camel, ok := snakeKeys[k]; ok {
			k = camel
		}
		fields[k] = v
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return models.Tea{}, err
	}
	var out models.Tea
	err = json.Unmarshal(merged, &out)
	return out, err
}
