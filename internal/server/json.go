package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/businesslike/lessonplay/internal/lesson"
	"github.com/businesslike/lessonplay/internal/progress"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeDomainError maps errors from the lesson, catalog and progress
// packages to a status code. Anything unrecognised is a 500 with the
// detail kept out of the response.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		verr *lesson.ValidationError
		perr *lesson.PreconditionError
	)
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.As(err, &perr):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: perr.Error(), Missing: perr.Missing, Notice: perr.Notice})
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, progress.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, lesson.ErrSessionClosed):
		writeError(w, http.StatusGone, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
