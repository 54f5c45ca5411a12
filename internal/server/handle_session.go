package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/businesslike/lessonplay/internal/catalog"
	"github.com/businesslike/lessonplay/internal/lesson"
	"github.com/businesslike/lessonplay/internal/progress"
)

const noticeLessonLocked = "Complete the previous lessons first!"

func handleStartSession(cat *catalog.Catalog, store *progress.Store, sessions *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number, err := strconv.Atoi(chi.URLParam(r, "lessonNumber"))
		if err != nil || number < 1 {
			writeError(w, http.StatusBadRequest, "lesson number must be a positive integer")
			return
		}

		course, err := cat.Course(r.Context(), chi.URLParam(r, "courseID"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		def, ok := course.Definition(number)
		if !ok {
			writeError(w, http.StatusNotFound, "lesson not found")
			return
		}

		completed, err := store.CompletedInCourse(r.Context(), course.ID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if missing := lockedBy(course, completed, number); len(missing) > 0 {
			writeDomainError(w, &lesson.PreconditionError{
				Action:  "open lesson",
				Missing: missing,
				Notice:  noticeLessonLocked,
			})
			return
		}

		sess, err := sessions.Create(def)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, sess.Snapshot())
	}
}

func handleSessionState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, sessionFrom(r).Snapshot())
	}
}

func handleCloseSession(sessions *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sessions.Remove(sessionFrom(r).ID()); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
