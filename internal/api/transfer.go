package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mspro-labs/tea-buddy/internal/fetcher"
	"mspro-labs/tea-buddy/internal/models"
	"mspro-labs/tea-buddy/internal/reconcile"
)

type extractRequest struct {
	URL string `json:"url"`
}

type extractResponse struct {
	URL        string            `json:"url"`
	Found      []string          `json:"found"`
	Extraction models.Extraction `json:"extraction"`
}

// handleExtract fetches a product page and returns what could be read
// from it. A page that cannot be fetched at all is a 502; missing fields
// are not an error.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	u, err := url.Parse(strings.TrimSpace(req.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		respondError(w, http.StatusBadRequest, "A product page URL is required")
		return
	}
	pageURL := u.String()

	html, err := s.fetcher.Fetch(r.Context(), pageURL)
	var fe *fetcher.FetchError
	if errors.As(err, &fe) {
		s.log.Warn().Err(err).Str("url", pageURL).Msg("Product page fetch failed")
		respondError(w, http.StatusBadGateway, fe.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	ex, err := s.extractor.ExtractHTML(html, pageURL)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	found := ex.Found()
	if found == nil {
		found = []string{}
	}
	respondJSON(w, http.StatusOK, extractResponse{URL: pageURL, Found: found, Extraction: ex})
}

// handleExport returns the whole collection as a downloadable backup
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	teas, err := s.store.ListTeas(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch teas")
		return
	}
	now := time.Now()
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="tea-backup-%s.json"`, now.Format("2006-01-02")))
	respondJSON(w, http.StatusOK, reconcile.NewPayload(teas, s.directory.List(), now))
}

// handleImport replaces the collection with an uploaded backup. The HTTP
// caller has already confirmed, so no prompt is run.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read body")
		return
	}
	p, err := reconcile.Decode(data)
	var formatErr *reconcile.FormatError
	if errors.As(err, &formatErr) {
		respondError(w, http.StatusBadRequest, formatErr.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.shopMu.Lock()
	defer s.shopMu.Unlock()

	res, err := reconcile.Apply(r.Context(), s.store, p, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("Import failed")
		respondError(w, http.StatusInternalServerError, "Failed to import")
		return
	}
	if res.ShopsReplaced {
		shops, err := s.store.ListShops(r.Context())
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to reload shops")
			return
		}
		s.directory.Replace(shops)
	}
	s.log.Info().Int("teas", res.Teas).Int("shops", res.Shops).Msg("Import applied")
	respondJSON(w, http.StatusOK, res)
}
