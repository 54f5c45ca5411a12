// Package catalog loads course content from YAML files and validates
// courses drafted in the teacher course builder.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/businesslike/lessonplay/internal/lesson"
)

//go:embed content/*.yaml
var embedded embed.FS

// Loader loads and caches course content.
type Loader struct {
	fsys    fs.FS
	courses map[string]Course
	mu      sync.RWMutex
}

// NewLoader loads every course under dir. An empty dir selects the
// built-in demo content.
func NewLoader(dir string, logger *slog.Logger) (*Loader, error) {
	var fsys fs.FS
	if dir == "" {
		sub, err := fs.Sub(embedded, "content")
		if err != nil {
			return nil, fmt.Errorf("opening embedded content: %w", err)
		}
		fsys = sub
	} else {
		fsys = os.DirFS(dir)
	}
	return NewLoaderFS(fsys, logger)
}

func NewLoaderFS(fsys fs.FS, logger *slog.Logger) (*Loader, error) {
	l := &Loader{
		fsys:    fsys,
		courses: make(map[string]Course),
	}
	if err := l.loadAll(); err != nil {
		return nil, fmt.Errorf("loading courses: %w", err)
	}
	logger.Info("courses loaded", "courses", len(l.courses))
	return l, nil
}

// Course returns a course by ID.
func (l *Loader) Course(id string) (Course, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	c, ok := l.courses[id]
	return c, ok
}

// Courses returns all loaded courses ordered by ID.
func (l *Loader) Courses() []Course {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Course, 0, len(l.courses))
	for _, c := range l.courses {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (l *Loader) loadAll() error {
	return fs.WalkDir(l.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ext := path.Ext(p); ext != ".yaml" && ext != ".yml" {
			return nil
		}
		return l.loadCourse(p)
	})
}

func (l *Loader) loadCourse(p string) error {
	data, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return fmt.Errorf("reading %s: %w", p, err)
	}

	var c Course
	if err := yaml.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("parsing %s: %w", p, err)
	}
	if err := Validate(c); err != nil {
		return fmt.Errorf("%s: %w", p, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, dup := l.courses[c.ID]; dup {
		return fmt.Errorf("%s: duplicate course id %q", p, c.ID)
	}
	l.courses[c.ID] = c
	return nil
}

// Validate checks a course loaded from content files.
func Validate(c Course) error {
	if strings.TrimSpace(c.ID) == "" {
		return &lesson.ValidationError{Field: "id", Msg: "course id is required"}
	}
	if strings.TrimSpace(c.Title) == "" {
		return &lesson.ValidationError{Field: "title", Msg: "course title is required"}
	}
	if len(c.Lessons) == 0 {
		return &lesson.ValidationError{Field: "lessons", Msg: "course has no lessons"}
	}

	ids := make(map[string]bool, len(c.Lessons))
	numbers := make(map[int]bool, len(c.Lessons))
	for _, ls := range c.Lessons {
		if ls.ID == "" || ids[ls.ID] {
			return &lesson.ValidationError{Field: "lessons", Msg: fmt.Sprintf("lesson id %q missing or repeated", ls.ID)}
		}
		ids[ls.ID] = true
		if ls.Number < 1 || ls.Number > len(c.Lessons) || numbers[ls.Number] {
			return &lesson.ValidationError{Field: "lessons", Msg: fmt.Sprintf("lesson %q has bad number %d", ls.ID, ls.Number)}
		}
		numbers[ls.Number] = true
		if err := lesson.ValidateQuestions(ls.Quiz); err != nil {
			return fmt.Errorf("lesson %q: %w", ls.ID, err)
		}
		if err := lesson.ValidatePairs(ls.Pairs); err != nil {
			return fmt.Errorf("lesson %q: %w", ls.ID, err)
		}
	}
	return nil
}
