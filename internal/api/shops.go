package api

import (
	"errors"
	"net/http"
	"strings"

	"mspro-labs/tea-buddy/internal/models"
	"mspro-labs/tea-buddy/internal/shops"
)

func (s *Server) handleListShops(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.directory.List())
}

// handleFindShop resolves ?q= (a name or URL fragment) to a directory shop
func (s *Server) handleFindShop(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respondError(w, http.StatusBadRequest, "Missing q parameter")
		return
	}
	shop, ok := s.directory.Find(q)
	if !ok {
		respondError(w, http.StatusNotFound, "Shop not found")
		return
	}
	respondJSON(w, http.StatusOK, shop)
}

func (s *Server) handleCreateShop(w http.ResponseWriter, r *http.Request) {
	var shop models.Shop
	if err := decodeJSON(r, &shop); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	s.shopMu.Lock()
	defer s.shopMu.Unlock()

	created, err := s.directory.Add(shop)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.saveDirectory(w, r) {
		s.directory.Delete(created.ID)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateShop(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid shop id")
		return
	}
	var shop models.Shop
	if err := decodeJSON(r, &shop); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	s.shopMu.Lock()
	defer s.shopMu.Unlock()

	before := s.directory.List()
	updated, err := s.directory.Update(id, shop)
	if errors.Is(err, shops.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Shop not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.saveDirectory(w, r) {
		s.directory.Replace(before)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteShop(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid shop id")
		return
	}

	s.shopMu.Lock()
	defer s.shopMu.Unlock()

	before := s.directory.List()
	if err := s.directory.Delete(id); err != nil {
		respondError(w, http.StatusNotFound, "Shop not found")
		return
	}
	if !s.saveDirectory(w, r) {
		s.directory.Replace(before)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Shop deleted"})
}

// saveDirectory persists the directory and reports failure to the client.
// The caller holds shopMu and rolls the directory back on false.
func (s *Server) saveDirectory(w http.ResponseWriter, r *http.Request) bool {
	if err := s.store.SaveShops(r.Context(), s.directory.List()); err != nil {
		s.log.Error().Err(err).Msg("Failed to save shop directory")
		respondError(w, http.StatusInternalServerError, "Failed to save shops")
		return false
	}
	return true
}
