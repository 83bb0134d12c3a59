package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hoomlabs/hoom/internal/listing"
	"github.com/hoomlabs/hoom/internal/promoter"
)

// maxBodyBytes bounds JSON request bodies; imports are the largest.
const maxBodyBytes = 8 << 20

// apiError writes a JSON error response.
func apiError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	resp := map[string]string{"error": msg}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// apiFail writes err with the status and message of its kind.
func apiFail(w http.ResponseWriter, err error) {
	apiError(w, userMessage(err), statusFor(err))
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		apiError(w, fmt.Sprintf("invalid JSON body: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}

func apiPathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := pathID(r)
	if !ok {
		apiError(w, "invalid ID", http.StatusBadRequest)
	}
	return id, ok
}

// ListingsResponse is the body of GET /api/listings.
type ListingsResponse struct {
	Criteria listing.Criteria `json:"criteria"`
	Options  listing.Options  `json:"options"`
	Summary  listing.Summary  `json:"summary"`
	Listings []listing.View   `json:"listings"`
}

// filtered loads the snapshot and applies the query's criteria.
func (s *Server) filtered(r *http.Request) (*ListingsResponse, error) {
	snap, err := s.listings.Snapshot(r.Context())
	if err != nil {
		return nil, err
	}
	opts := listing.OptionsFor(snap.Listings, snap.Promoters)
	c, err := parseCriteria(r.URL.Query(), opts, s.excludeTitle)
	if err != nil {
		return nil, err
	}
	shown := listing.Apply(snap.Listings, c)
	return &ListingsResponse{
		Criteria: c,
		Options:  opts,
		Summary:  listing.Summarize(snap, shown),
		Listings: shown,
	}, nil
}

func (s *Server) apiListListings(w http.ResponseWriter, r *http.Request) {
	resp, err := s.filtered(r)
	if err != nil {
		apiFail(w, err)
		return
	}
	apiJSON(w, resp, http.StatusOK)
}

func (s *Server) apiSummary(w http.ResponseWriter, r *http.Request) {
	resp, err := s.filtered(r)
	if err != nil {
		apiFail(w, err)
		return
	}
	apiJSON(w, resp.Summary, http.StatusOK)
}

func (s *Server) apiGetListing(w http.ResponseWriter, r *http.Request) {
	id, ok := apiPathID(w, r)
	if !ok {
		return
	}
	v, err := s.listings.Get(r.Context(), id)
	if err != nil {
		apiFail(w, err)
		return
	}
	apiJSON(w, v, http.StatusOK)
}

func (s *Server) apiUpdateListing(w http.ResponseWriter, r *http.Request) {
	id, ok := apiPathID(w, r)
	if !ok {
		return
	}
	var u listing.Update
	if !decodeBody(w, r, &u) {
		return
	}
	if err := s.listings.Edit(r.Context(), id, u); err != nil {
		apiFail(w, err)
		return
	}
	v, err := s.listings.Get(r.Context(), id)
	if err != nil {
		apiFail(w, err)
		return
	}
	apiJSON(w, v, http.StatusOK)
}

func (s *Server) apiDeleteListing(w http.ResponseWriter, r *http.Request) {
	id, ok := apiPathID(w, r)
	if !ok {
		return
	}
	if err := s.listings.Delete(r.Context(), id); err != nil {
		apiFail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type photoRequest struct {
	Photo string `json:"photo"`
}

func (s *Server) apiPhotoPrimary(w http.ResponseWriter, r *http.Request) {
	s.apiPhoto(w, r, true)
}

func (s *Server) apiPhotoRemove(w http.ResponseWriter, r *http.Request) {
	s.apiPhoto(w, r, false)
}

func (s *Server) apiPhoto(w http.ResponseWriter, r *http.Request, primary bool) {
	id, ok := apiPathID(w, r)
	if !ok {
		return
	}
	var req photoRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var err error
	if primary {
		err = s.listings.SetPrimaryPhoto(r.Context(), id, req.Photo)
	} else {
		err = s.listings.RemovePhoto(r.Context(), id, req.Photo)
	}
	if err != nil {
		apiFail(w, err)
		return
	}

	v, err := s.listings.Get(r.Context(), id)
	if err != nil {
		apiFail(w, err)
		return
	}
	apiJSON(w, v, http.StatusOK)
}

// apiImportListings inserts a JSON array of listings.
func (s *Server) apiImportListings(w http.ResponseWriter, r *http.Request) {
	var listings []listing.Listing
	if !decodeBody(w, r, &listings) {
		return
	}
	n, err := s.listings.Import(r.Context(), listings)
	if err != nil {
		apiError(w, fmt.Sprintf("imported %d of %d: %s", n, len(listings), userMessage(err)), statusFor(err))
		return
	}
	apiJSON(w, map[string]int{"imported": n}, http.StatusCreated)
}

func (s *Server) apiListPromoters(w http.ResponseWriter, r *http.Request) {
	promoters, err := s.promoters.Load(r.Context())
	if err != nil {
		apiFail(w, err)
		return
	}
	apiJSON(w, promoters, http.StatusOK)
}

func (s *Server) apiCreatePromoter(w http.ResponseWriter, r *http.Request) {
	s.apiSavePromoter(w, r, 0, http.StatusCreated)
}

func (s *Server) apiUpdatePromoter(w http.ResponseWriter, r *http.Request) {
	id, ok := apiPathID(w, r)
	if !ok {
		return
	}
	s.apiSavePromoter(w, r, id, http.StatusOK)
}

func (s *Server) apiSavePromoter(w http.ResponseWriter, r *http.Request, id int64, status int) {
	var in promoter.Input
	if !decodeBody(w, r, &in) {
		return
	}
	if err := s.promoters.Save(r.Context(), id, in); err != nil {
		apiFail(w, err)
		return
	}
	apiJSON(w, map[string]string{"status": "saved"}, status)
}

func (s *Server) apiDeletePromoter(w http.ResponseWriter, r *http.Request) {
	id, ok := apiPathID(w, r)
	if !ok {
		return
	}
	if err := s.promoters.Delete(r.Context(), id); err != nil {
		apiFail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) apiReload(w http.ResponseWriter, r *http.Request) {
	s.listings.Reload()
	apiJSON(w, map[string]string{"status": "reloaded"}, http.StatusOK)
}
