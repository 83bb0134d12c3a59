package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/hoomlabs/hoom/internal/promoter"
)

type promotersData struct {
	Promoters []promoter.Promoter
	EditID    int64
	Form      promoter.Input
	Notice    string
	Warning   string
	Error     string
}

// handlePromoters renders the promoters page. ?edit={id} selects a
// promoter and pre-fills the form with it.
func (s *Server) handlePromoters(w http.ResponseWriter, r *http.Request) {
	data := promotersData{Notice: notices[r.URL.Query().Get("notice")]}

	promoters, err := s.promoters.Load(r.Context())
	if err != nil {
		data.Error = userMessage(err)
		s.render(w, statusFor(err), "promoters.html", data)
		return
	}
	data.Promoters = promoters

	if v := r.URL.Query().Get("edit"); v != "" {
		id, _ := strconv.ParseInt(v, 10, 64)
		for _, p := range promoters {
			if p.ID == id {
				data.EditID = p.ID
				data.Form = promoter.InputFrom(p)
				break
			}
		}
		if data.EditID == 0 {
			data.Warning = "That promoter no longer exists."
		}
	}

	s.render(w, http.StatusOK, "promoters.html", data)
}

// handlePromoterSave creates a promoter, or updates the one in the id
// field.
func (s *Server) handlePromoterSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	var id int64
	if v := r.PostForm.Get("id"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil || parsed <= 0 {
			http.Error(w, "Bad promoter id", http.StatusBadRequest)
			return
		}
		id = parsed
	}
	in := parsePromoterInput(r.PostForm)

	if err := s.promoters.Save(r.Context(), id, in); err != nil {
		data := promotersData{EditID: id, Form: in}
		if status := statusFor(err); status == http.StatusUnprocessableEntity {
			data.Warning = userMessage(err)
		} else {
			data.Error = userMessage(err)
		}
		// The list is shown again when it can be loaded.
		if promoters, loadErr := s.promoters.Load(r.Context()); loadErr == nil {
			data.Promoters = promoters
		}
		s.render(w, statusFor(err), "promoters.html", data)
		return
	}

	http.Redirect(w, r, "/promoters?notice=promoter-saved", http.StatusSeeOther)
}

// handlePromoterDeleteConfirm asks for confirmation before deleting.
func (s *Server) handlePromoterDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPromoter(w, r)
	if !ok {
		return
	}
	s.render(w, http.StatusOK, "confirm_delete.html", promoterConfirm(p, ""))
}

// handlePromoterDelete deletes after confirmation. A promoter that
// listings still reference is kept and the reason is shown.
func (s *Server) handlePromoterDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPromoter(w, r)
	if !ok {
		return
	}

	if err := s.promoters.Delete(r.Context(), p.ID); err != nil {
		s.render(w, statusFor(err), "confirm_delete.html", promoterConfirm(p, userMessage(err)))
		return
	}
	http.Redirect(w, r, "/promoters?notice=promoter-delete", http.StatusSeeOther)
}

func (s *Server) loadPromoter(w http.ResponseWriter, r *http.Request) (promoter.Promoter, bool) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return promoter.Promoter{}, false
	}

	p, err := s.promoters.Get(r.Context(), id)
	if err != nil {
		s.render(w, statusFor(err), "error.html", errorData{
			Title:   "Promoter unavailable",
			Message: userMessage(err),
			Back:    "/promoters",
		})
		return promoter.Promoter{}, false
	}
	return p, true
}

func promoterConfirm(p promoter.Promoter, errMsg string) confirmData {
	msg := "This promoter will be permanently deleted."
	if n := len(p.Listings); n > 0 {
		msg = fmt.Sprintf("This promoter is assigned to %d listing(s); the store will refuse the delete.", n)
	}
	return confirmData{
		ID:      p.ID,
		Title:   p.Name,
		Action:  fmt.Sprintf("/promoters/%d/delete", p.ID),
		Cancel:  "/promoters",
		Error:   errMsg,
		Message: msg,
	}
}
