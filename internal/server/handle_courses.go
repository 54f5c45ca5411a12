package server

import (
	"context"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/businesslike/lessonplay/internal/catalog"
	"github.com/businesslike/lessonplay/internal/progress"
)

type CourseSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Level       string `json:"level"`
	Author      string `json:"author,omitempty"`
	Published   bool   `json:"published"`
	Lessons     int    `json:"lessons"`
	Completed   int    `json:"completed"`
	Favorite    bool   `json:"favorite"`
}

type CourseLesson struct {
	catalog.LessonSummary
	Completed bool `json:"completed"`
	// Locked is set while an earlier lesson of the course is incomplete.
	Locked bool `json:"locked"`
}

type CourseDetail struct {
	CourseSummary
	LessonList []CourseLesson `json:"lessonList"`
}

type learnerState struct {
	completed map[string][]string
	favorites []string
}

func loadLearnerState(ctx context.Context, store *progress.Store) (learnerState, error) {
	completed, err := store.CompletedLessons(ctx)
	if err != nil {
		return learnerState{}, err
	}
	favorites, err := store.FavoriteCourses(ctx)
	if err != nil {
		return learnerState{}, err
	}
	return learnerState{completed: completed, favorites: favorites}, nil
}

// lockedBy returns the ids of lessons numbered before number that are not
// completed. A lesson opens only once the list is empty.
func lockedBy(c catalog.Course, completed []string, number int) []string {
	var missing []string
	for _, l := range c.Lessons {
		if l.Number < number && !slices.Contains(completed, l.ID) {
			missing = append(missing, l.ID)
		}
	}
	return missing
}

func (ls learnerState) summary(c catalog.Course) CourseSummary {
	done := 0
	for _, l := range c.Lessons {
		if slices.Contains(ls.completed[c.ID], l.ID) {
			done++
		}
	}
	return CourseSummary{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Category:    c.Category,
		Level:       c.Level,
		Author:      c.Author,
		Published:   c.Published,
		Lessons:     len(c.Lessons),
		Completed:   done,
		Favorite:    slices.Contains(ls.favorites, c.ID),
	}
}

func handleListCourses(cat *catalog.Catalog, store *progress.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courses, err := cat.Courses(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		ls, err := loadLearnerState(r.Context(), store)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := make([]CourseSummary, 0, len(courses))
		for _, c := range courses {
			out = append(out, ls.summary(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleGetCourse(cat *catalog.Catalog, store *progress.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := cat.Course(r.Context(), chi.URLParam(r, "courseID"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		ls, err := loadLearnerState(r.Context(), store)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		detail := CourseDetail{CourseSummary: ls.summary(c)}
		for _, l := range c.Lessons {
			detail.LessonList = append(detail.LessonList, CourseLesson{
				LessonSummary: l.Summary(),
				Completed:     slices.Contains(ls.completed[c.ID], l.ID),
				Locked:        len(lockedBy(c, ls.completed[c.ID], l.Number)) > 0,
			})
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

func handlePublishCourse(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft catalog.CourseDraft
		if err := readJSON(r, &draft); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		course, err := cat.Publish(r.Context(), draft)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, course)
	}
}
