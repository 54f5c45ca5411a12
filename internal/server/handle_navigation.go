package server

import (
	"fmt"
	"net/http"

	"github.com/businesslike/lessonplay/internal/lesson"
)

type NavigationResponse struct {
	Intent lesson.Intent `json:"intent"`
	// Location is the page the intent resolves to.
	Location string `json:"location"`
}

func navigation(intent lesson.Intent) NavigationResponse {
	loc := fmt.Sprintf("/courses/%s", intent.CourseID)
	if intent.Kind == lesson.IntentLesson {
		loc = fmt.Sprintf("/courses/%s/lessons/%d", intent.CourseID, intent.Lesson)
	}
	return NavigationResponse{Intent: intent, Location: loc}
}

func handleComplete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intent, err := sessionFrom(r).Complete(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, navigation(intent))
	}
}

func handleNext() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intent, err := sessionFrom(r).Next()
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, navigation(intent))
	}
}

func handlePrevious() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intent, err := sessionFrom(r).Previous()
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, navigation(intent))
	}
}
