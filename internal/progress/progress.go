// Package progress persists learner bookkeeping: completed lessons, favorite
// courses and published teacher courses. Values are stored whole under a
// handful of namespaced keys on a pluggable key-value backend.
package progress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

var ErrNotFound = errors.New("not found")

// Backend is a key-value store with get-or-empty and whole-value set.
type Backend interface {
	// Get returns the stored value, or ok=false if the key was never set.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
	Close() error
}

const DefaultPrefix = "businesslike_"

const (
	keyCompletedLessons = "completed_lessons"
	keyFavoriteCourses  = "favorite_courses"
	keyFavorites        = "favorites"
	keyTeacherCourses   = "teacher_courses"
)

// PublishedLesson is a lesson written in the teacher course builder.
type PublishedLesson struct {
	Number     int    `json:"number"`
	Title      string `json:"title"`
	YouTubeURL string `json:"youtubeUrl"`
	RutubeURL  string `json:"rutubeUrl"`
	Content    string `json:"content"`
}

// PublishedCourse is a course created through the teacher course builder.
type PublishedCourse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Level       string            `json:"level"`
	Lessons     []PublishedLesson `json:"lessons"`
	CreatedAt   time.Time         `json:"createdAt"`
	Status      string            `json:"status"`
}

// Store is the progress façade. Read-modify-write cycles are serialized
// within the process; separate processes sharing a backend race with
// last-write-wins.
type Store struct {
	backend Backend
	prefix  string
	mu      sync.Mutex
}

func NewStore(backend Backend, prefix string) *Store {
	return &Store{backend: backend, prefix: prefix}
}

func (s *Store) Ping(ctx context.Context) error { return s.backend.Ping(ctx) }

func (s *Store) Close() error { return s.backend.Close() }

func (s *Store) load(ctx context.Context, key string, dest any) error {
	data, ok, err := s.backend.Get(ctx, s.prefix+key)
	if err != nil {
		return fmt.Errorf("reading %s: %w", key, err)
	}
	// A stored null leaves dest at its caller-initialized empty value.
	if !ok || len(data) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

func (s *Store) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := s.backend.Set(ctx, s.prefix+key, data); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// CompletedLessons returns every course's completed lesson ids.
func (s *Store) CompletedLessons(ctx context.Context) (map[string][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	completed := map[string][]string{}
	if err := s.load(ctx, keyCompletedLessons, &completed); err != nil {
		return nil, err
	}
	return completed, nil
}

func (s *Store) CompletedInCourse(ctx context.Context, courseID string) ([]string, error) {
	completed, err := s.CompletedLessons(ctx)
	if err != nil {
		return nil, err
	}
	if ids := completed[courseID]; ids != nil {
		return ids, nil
	}
	return []string{}, nil
}

// MarkLessonComplete appends lessonID to the course's completed set. It
// reports false without writing when the lesson was already recorded.
func (s *Store) MarkLessonComplete(ctx context.Context, courseID, lessonID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	completed := map[string][]string{}
	if err := s.load(ctx, keyCompletedLessons, &completed); err != nil {
		return false, err
	}
	if slices.Contains(completed[courseID], lessonID) {
		return false, nil
	}
	completed[courseID] = append(completed[courseID], lessonID)
	if err := s.save(ctx, keyCompletedLessons, completed); err != nil {
		return false, err
	}
	return true, nil
}

// list loads a set of strings persisted as a JSON array.
func (s *Store) list(ctx context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := []string{}
	if err := s.load(ctx, key, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) setMember(ctx context.Context, key, member string, present bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := []string{}
	if err := s.load(ctx, key, &items); err != nil {
		return false, err
	}
	idx := slices.Index(items, member)
	switch {
	case present && idx >= 0, !present && idx < 0:
		return false, nil
	case present:
		items = append(items, member)
	default:
		items = slices.Delete(items, idx, idx+1)
	}
	if err := s.save(ctx, key, items); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) FavoriteCourses(ctx context.Context) ([]string, error) {
	return s.list(ctx, keyFavoriteCourses)
}

func (s *Store) IsFavoriteCourse(ctx context.Context, courseID string) (bool, error) {
	ids, err := s.FavoriteCourses(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, courseID), nil
}

// SetFavoriteCourse adds or removes courseID and reports whether anything
// changed.
func (s *Store) SetFavoriteCourse(ctx context.Context, courseID string, favorite bool) (bool, error) {
	return s.setMember(ctx, keyFavoriteCourses, courseID, favorite)
}

// ToggleFavoriteCourse flips courseID and returns the new state.
func (s *Store) ToggleFavoriteCourse(ctx context.Context, courseID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := []string{}
	if err := s.load(ctx, keyFavoriteCourses, &ids); err != nil {
		return false, err
	}
	idx := slices.Index(ids, courseID)
	if idx >= 0 {
		ids = slices.Delete(ids, idx, idx+1)
	} else {
		ids = append(ids, courseID)
	}
	if err := s.save(ctx, keyFavoriteCourses, ids); err != nil {
		return false, err
	}
	return idx < 0, nil
}

// FavoriteURLs returns the course-card favorites, keyed by course URL.
func (s *Store) FavoriteURLs(ctx context.Context) ([]string, error) {
	return s.list(ctx, keyFavorites)
}

func (s *Store) SetFavoriteURL(ctx context.Context, url string, favorite bool) (bool, error) {
	return s.setMember(ctx, keyFavorites, url, favorite)
}

func (s *Store) TeacherCourses(ctx context.Context) ([]PublishedCourse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	courses := []PublishedCourse{}
	if err := s.load(ctx, keyTeacherCourses, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (s *Store) TeacherCourse(ctx context.Context, id string) (PublishedCourse, error) {
	courses, err := s.TeacherCourses(ctx)
	if err != nil {
		return PublishedCourse{}, err
	}
	for _, c := range courses {
		if c.ID == id {
			return c, nil
		}
	}
	return PublishedCourse{}, ErrNotFound
}

// PublishCourse appends course to the teacher's published list.
func (s *Store) PublishCourse(ctx context.Context, course PublishedCourse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	courses := []PublishedCourse{}
	if err := s.load(ctx, keyTeacherCourses, &courses); err != nil {
		return err
	}
	courses = append(courses, course)
	return s.save(ctx, keyTeacherCourses, courses)
}
