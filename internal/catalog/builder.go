package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/businesslike/lessonplay/internal/lesson"
	"github.com/businesslike/lessonplay/internal/progress"
)

// CourseDraft is the teacher course-builder form.
type CourseDraft struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Level       string        `json:"level"`
	Lessons     []LessonDraft `json:"lessons"`
}

type LessonDraft struct {
	Title      string `json:"title"`
	YouTubeURL string `json:"youtubeUrl"`
	RutubeURL  string `json:"rutubeUrl"`
	Content    string `json:"content"`
}

// ValidateDraft trims the form and drops lessons without a title. It fails
// when a required field is blank or no titled lesson remains.
func ValidateDraft(d CourseDraft) (CourseDraft, error) {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Category = strings.TrimSpace(d.Category)
	d.Level = strings.TrimSpace(d.Level)
	if d.Title == "" || d.Description == "" || d.Category == "" || d.Level == "" {
		return CourseDraft{}, &lesson.ValidationError{Msg: "fill in all required fields"}
	}

	var kept []LessonDraft
	for _, l := range d.Lessons {
		if strings.TrimSpace(l.Title) == "" {
			continue
		}
		kept = append(kept, l)
	}
	if len(kept) == 0 {
		return CourseDraft{}, &lesson.ValidationError{Field: "lessons", Msg: "add at least one lesson with a title"}
	}
	d.Lessons = kept
	return d, nil
}

// Catalog merges the content files with courses published by teachers.
type Catalog struct {
	loader *Loader
	store  *progress.Store
	now    func() time.Time
}

func New(loader *Loader, store *progress.Store) *Catalog {
	return &Catalog{loader: loader, store: store, now: time.Now}
}

func (c *Catalog) Courses(ctx context.Context) ([]Course, error) {
	courses := c.loader.Courses()
	published, err := c.store.TeacherCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing published courses: %w", err)
	}
	for _, pc := range published {
		courses = append(courses, fromPublished(pc))
	}
	return courses, nil
}

// Course looks up a course in the content files first, then among
// published ones. It returns progress.ErrNotFound when neither has it.
func (c *Catalog) Course(ctx context.Context, id string) (Course, error) {
	if course, ok := c.loader.Course(id); ok {
		return course, nil
	}
	pc, err := c.store.TeacherCourse(ctx, id)
	if err != nil {
		return Course{}, err
	}
	return fromPublished(pc), nil
}

// Publish validates d and stores it as a new published course.
func (c *Catalog) Publish(ctx context.Context, d CourseDraft) (Course, error) {
	d, err := ValidateDraft(d)
	if err != nil {
		return Course{}, err
	}

	pc := progress.PublishedCourse{
		ID:          uuid.NewString(),
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Level:       d.Level,
		CreatedAt:   c.now().UTC(),
		Status:      "published",
	}
	for i, l := range d.Lessons {
		pc.Lessons = append(pc.Lessons, progress.PublishedLesson{
			Number:     i + 1,
			Title:      strings.TrimSpace(l.Title),
			YouTubeURL: strings.TrimSpace(l.YouTubeURL),
			RutubeURL:  strings.TrimSpace(l.RutubeURL),
			Content:    l.Content,
		})
	}

	if err := c.store.PublishCourse(ctx, pc); err != nil {
		return Course{}, fmt.Errorf("publishing course: %w", err)
	}
	return fromPublished(pc), nil
}

func fromPublished(pc progress.PublishedCourse) Course {
	c := Course{
		ID:          pc.ID,
		Title:       pc.Title,
		Description: pc.Description,
		Category:    pc.Category,
		Level:       pc.Level,
		Published:   true,
	}
	for _, l := range pc.Lessons {
		c.Lessons = append(c.Lessons, Lesson{
			ID:         fmt.Sprintf("%d", l.Number),
			Number:     l.Number,
			Title:      l.Title,
			YouTubeURL: l.YouTubeURL,
			RutubeURL:  l.RutubeURL,
			Content:    l.Content,
		})
	}
	return c
}
