package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/businesslike/lessonplay/internal/handler/health"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Lessonplay API", "/openapi.json", "/docs"))
	r.Mount("/healthz", health.NewHandler(logger, deps.Checks).Routes())

	// Catalog and teacher course builder.
	r.Get("/api/courses", handleListCourses(deps.Catalog, deps.Progress))
	r.Get("/api/courses/{courseID}", handleGetCourse(deps.Catalog, deps.Progress))
	r.Post("/api/teacher/courses", handlePublishCourse(deps.Catalog))

	// Lesson sessions.
	r.Post("/api/courses/{courseID}/lessons/{lessonNumber}/session", handleStartSession(deps.Catalog, deps.Progress, deps.Sessions))
	r.Route("/api/sessions/{sessionID}", func(r chi.Router) {
		r.Use(sessionMiddleware(deps.Sessions))
		r.Get("/", handleSessionState())
		r.Delete("/", handleCloseSession(deps.Sessions))
		r.Post("/quiz/answer", handleQuizAnswer())
		r.Post("/quiz/retry", handleQuizRetry())
		r.Post("/game/select", handleGameSelect())
		r.Post("/game/restart", handleGameRestart())
		r.Post("/materials/view", handleViewMaterials())
		r.Put("/checklist/{item}", handleSetChecklistItem())
		r.Post("/complete", handleComplete())
		r.Post("/next", handleNext())
		r.Post("/previous", handlePrevious())
		r.Get("/events", handleEvents(deps.Broker))
	})
	r.With(sessionMiddleware(deps.Sessions)).Get("/ws/sessions/{sessionID}", handleWSEvents(logger, deps.Broker))

	// Progress and favorites.
	r.Get("/api/progress", handleProgress(deps.Progress))
	r.Get("/api/favorites/courses", handleListFavoriteCourses(deps.Progress))
	r.Put("/api/favorites/courses/{courseID}", handleSetFavoriteCourse(deps.Progress, true))
	r.Delete("/api/favorites/courses/{courseID}", handleSetFavoriteCourse(deps.Progress, false))
	r.Post("/api/favorites/courses/{courseID}/toggle", handleToggleFavoriteCourse(deps.Progress))
	r.Get("/api/favorites/urls", handleListFavoriteURLs(deps.Progress))
	r.Put("/api/favorites/urls", handleSetFavoriteURL(deps.Progress, true))
	r.Delete("/api/favorites/urls", handleSetFavoriteURL(deps.Progress, false))

	if deps.SPADir != "" {
		if info, err := os.Stat(deps.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", deps.SPADir)
			r.NotFound(handleSPA(deps.SPADir))
		}
	}
}
