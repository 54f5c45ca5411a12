package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/businesslike/lessonplay/internal/progress"
)

type ProgressResponse struct {
	CompletedLessons map[string][]string `json:"completedLessons"`
}

type FavoriteURLRequest struct {
	URL string `json:"url"`
}

type FavoriteResponse struct {
	Favorite bool `json:"favorite"`
	Changed  bool `json:"changed"`
}

func handleProgress(store *progress.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		completed, err := store.CompletedLessons(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ProgressResponse{CompletedLessons: completed})
	}
}

func handleListFavoriteCourses(store *progress.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := store.FavoriteCourses(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ids)
	}
}

func handleSetFavoriteCourse(store *progress.Store, favorite bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		changed, err := store.SetFavoriteCourse(r.Context(), chi.URLParam(r, "courseID"), favorite)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, FavoriteResponse{Favorite: favorite, Changed: changed})
	}
}

func handleListFavoriteURLs(store *progress.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		urls, err := store.FavoriteURLs(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, urls)
	}
}

func handleSetFavoriteURL(store *progress.Store, favorite bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req FavoriteURLRequest
		if err := readJSON(r, &req); err != nil || strings.TrimSpace(req.URL) == "" {
			writeError(w, http.StatusBadRequest, "url is required")
			return
		}

		changed, err := store.SetFavoriteURL(r.Context(), strings.TrimSpace(req.URL), favorite)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, FavoriteResponse{Favorite: favorite, Changed: changed})
	}
}

func handleToggleFavoriteCourse(store *progress.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		favorite, err := store.ToggleFavoriteCourse(r.Context(), chi.URLParam(r, "courseID"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, FavoriteResponse{Favorite: favorite, Changed: true})
	}
}
