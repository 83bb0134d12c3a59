package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/hoomlabs/hoom/internal/listing"
	"github.com/hoomlabs/hoom/internal/promoter"
)

// notices are the confirmation messages a redirect can ask for.
var notices = map[string]string{
	"updated":         "Listing updated.",
	"deleted":         "Listing deleted.",
	"photo":           "Primary photo updated.",
	"photo-removed":   "Photo removed.",
	"reloaded":        "Data reloaded.",
	"promoter-saved":  "Promoter saved.",
	"promoter-delete": "Promoter deleted.",
}

type listingsData struct {
	Listings []listing.View
	Options  listing.Options
	Criteria listing.Criteria
	Summary  listing.Summary
	Return   string
	Notice   string
	Error    string
	Empty    bool
	LoadedAt string
}

type listingEditData struct {
	Listing   listing.View
	Update    listing.Update
	Promoters []promoter.Promoter
	Return    string
	Error     string
}

type confirmData struct {
	ID      int64
	Title   string
	Action  string
	Cancel  string
	Return  string
	Error   string
	Message string
}

type errorData struct {
	Title   string
	Message string
	Back    string
}

// handleListings renders the dashboard: filters, metric cards and cards.
func (s *Server) handleListings(w http.ResponseWriter, r *http.Request) {
	data := listingsData{Notice: notices[r.URL.Query().Get("notice")]}

	snap, err := s.listings.Snapshot(r.Context())
	if err != nil {
		slog.Error("loading dashboard", "error", err)
		data.Error = userMessage(err)
		data.Empty = true
		s.render(w, statusFor(err), "listings.html", data)
		return
	}

	data.LoadedAt = snap.LoadedAt.Format("2006-01-02 15:04:05 MST")
	if len(snap.Listings) == 0 {
		data.Empty = true
		s.render(w, http.StatusOK, "listings.html", data)
		return
	}

	data.Options = listing.OptionsFor(snap.Listings, snap.Promoters)
	c, err := parseCriteria(r.URL.Query(), data.Options, s.excludeTitle)
	if err != nil {
		data.Error = userMessage(err)
	}
	data.Criteria = c
	data.Listings = listing.Apply(snap.Listings, c)
	data.Summary = listing.Summarize(snap, data.Listings)
	data.Return = tmplFilterQuery(c)

	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
	}
	s.render(w, status, "listings.html", data)
}

// handleReload clears the cache so the next page load reads the store.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.listings.Reload()
	http.Redirect(w, r, withNotice(safeReturn(r.FormValue("return"), "/"), "reloaded"), http.StatusSeeOther)
}

// handleListingEditForm renders the edit form pre-filled from the listing.
func (s *Server) handleListingEditForm(w http.ResponseWriter, r *http.Request) {
	v, snap, ok := s.loadListing(w, r)
	if !ok {
		return
	}
	s.render(w, http.StatusOK, "listing_edit.html", listingEditData{
		Listing:   v,
		Update:    editDefaults(v, snap.Promoters),
		Promoters: snap.Promoters,
		Return:    safeReturn(r.URL.Query().Get("return"), "/"),
	})
}

// handleListingUpdate writes the submitted edit form.
func (s *Server) handleListingUpdate(w http.ResponseWriter, r *http.Request) {
	v, snap, ok := s.loadListing(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	ret := safeReturn(r.FormValue("return"), "/")

	u, err := parseListingUpdate(r.PostForm)
	if err == nil {
		err = s.listings.Edit(r.Context(), v.ID, u)
	}
	if err != nil {
		s.render(w, statusFor(err), "listing_edit.html", listingEditData{
			Listing:   v,
			Update:    u,
			Promoters: snap.Promoters,
			Return:    ret,
			Error:     userMessage(err),
		})
		return
	}

	http.Redirect(w, r, withNotice(ret, "updated"), http.StatusSeeOther)
}

// handleListingDeleteConfirm asks for confirmation before deleting.
func (s *Server) handleListingDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	v, _, ok := s.loadListing(w, r)
	if !ok {
		return
	}
	ret := safeReturn(r.URL.Query().Get("return"), "/")
	s.render(w, http.StatusOK, "confirm_delete.html", listingConfirm(v, ret, ""))
}

// handleListingDelete deletes after confirmation.
func (s *Server) handleListingDelete(w http.ResponseWriter, r *http.Request) {
	v, _, ok := s.loadListing(w, r)
	if !ok {
		return
	}
	ret := safeReturn(r.FormValue("return"), "/")

	if err := s.listings.Delete(r.Context(), v.ID); err != nil {
		s.render(w, statusFor(err), "confirm_delete.html", listingConfirm(v, ret, userMessage(err)))
		return
	}
	http.Redirect(w, r, withNotice(ret, "deleted"), http.StatusSeeOther)
}

func (s *Server) handlePhotoPrimary(w http.ResponseWriter, r *http.Request) {
	s.photoAction(w, r, s.listings.SetPrimaryPhoto, "photo")
}

func (s *Server) handlePhotoRemove(w http.ResponseWriter, r *http.Request) {
	s.photoAction(w, r, s.listings.RemovePhoto, "photo-removed")
}

func (s *Server) photoAction(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id int64, photo string) error, notice string) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	ret := safeReturn(r.FormValue("return"), "/")

	if err := fn(r.Context(), id, r.FormValue("photo")); err != nil {
		s.render(w, statusFor(err), "error.html", errorData{
			Title:   "Photo not updated",
			Message: userMessage(err),
			Back:    ret,
		})
		return
	}
	http.Redirect(w, r, withNotice(ret, notice), http.StatusSeeOther)
}

// loadListing resolves the {id} listing, writing the error page itself
// when it cannot.
func (s *Server) loadListing(w http.ResponseWriter, r *http.Request) (listing.View, *listing.Snapshot, bool) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return listing.View{}, nil, false
	}

	snap, err := s.listings.Snapshot(r.Context())
	if err == nil {
		if v, found := snap.Find(id); found {
			return v, snap, true
		}
		err = fmt.Errorf("property %d: %w", id, listing.ErrNotFound)
	}

	s.render(w, statusFor(err), "error.html", errorData{
		Title:   "Listing unavailable",
		Message: userMessage(err),
		Back:    "/",
	})
	return listing.View{}, nil, false
}

// editDefaults pre-fills the form; a promoter id that matches no known
// promoter is shown as no promoter.
func editDefaults(v listing.View, promoters []promoter.Promoter) listing.Update {
	u := listing.UpdateFrom(v.Listing)
	if u.PromoterID == nil {
		return u
	}
	for _, p := range promoters {
		if p.ID == *u.PromoterID {
			return u
		}
	}
	u.PromoterID = nil
	return u
}

func listingConfirm(v listing.View, ret, errMsg string) confirmData {
	return confirmData{
		ID:      v.ID,
		Title:   tmplOrDefault(v.Title, "Untitled"),
		Action:  fmt.Sprintf("/listings/%d/delete", v.ID),
		Cancel:  ret,
		Return:  ret,
		Error:   errMsg,
		Message: "This listing will be permanently deleted.",
	}
}

// withNotice adds the notice code to a local path.
func withNotice(path, notice string) string {
	u, err := url.Parse(path)
	if err != nil {
		return "/?notice=" + url.QueryEscape(notice)
	}
	q := u.Query()
	q.Set("notice", notice)
	u.RawQuery = q.Encode()
	return u.String()
}
