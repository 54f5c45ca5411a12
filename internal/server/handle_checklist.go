package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type ChecklistItemRequest struct {
	Checked bool `json:"checked"`
}

// handleViewMaterials starts the materials timer. The item is checked once
// it fires; clients see that as a state event.
func handleViewMaterials() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		if err := sess.ViewMaterials(); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, sess.Snapshot())
	}
}

func handleSetChecklistItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ChecklistItemRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		sess := sessionFrom(r)
		if err := sess.SetItem(chi.URLParam(r, "item"), req.Checked); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess.Snapshot())
	}
}
