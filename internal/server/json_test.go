package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/businesslike/lessonplay/internal/lesson"
	"github.com/businesslike/lessonplay/internal/progress"
)

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"validation", &lesson.ValidationError{Field: "quiz", Msg: "this lesson has no quiz"}, http.StatusBadRequest, "quiz: this lesson has no quiz"},
		{"precondition", &lesson.PreconditionError{Action: "next lesson", Missing: []string{"quiz"}}, http.StatusConflict, "next lesson not allowed: incomplete [quiz]"},
		{"wrapped not found", fmt.Errorf("loading: %w", progress.ErrNotFound), http.StatusNotFound, "loading: not found"},
		{"session not found", ErrSessionNotFound, http.StatusNotFound, "session not found"},
		{"closed", lesson.ErrSessionClosed, http.StatusGone, "lesson session closed"},
		{"other", errors.New("disk full"), http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeDomainError(w, tt.err)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var resp ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if resp.Error != tt.wantMsg {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantMsg)
			}
		})
	}
}
