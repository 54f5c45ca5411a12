package catalog

import "github.com/businesslike/lessonplay/internal/lesson"

// Course is a course as shown in the catalog.
type Course struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Category    string   `yaml:"category" json:"category"`
	Level       string   `yaml:"level" json:"level"`
	Author      string   `yaml:"author,omitempty" json:"author,omitempty"`
	Published   bool     `yaml:"-" json:"published"`
	Lessons     []Lesson `yaml:"lessons" json:"lessons"`
}

// Lesson holds the material and exercises of one lesson.
type Lesson struct {
	ID         string            `yaml:"id" json:"id"`
	Number     int               `yaml:"number" json:"number"`
	Title      string            `yaml:"title" json:"title"`
	YouTubeURL string            `yaml:"youtube_url,omitempty" json:"youtubeUrl,omitempty"`
	RutubeURL  string            `yaml:"rutube_url,omitempty" json:"rutubeUrl,omitempty"`
	Content    string            `yaml:"content,omitempty" json:"content,omitempty"`
	Quiz       []lesson.Question `yaml:"quiz,omitempty" json:"-"`
	Pairs      []lesson.Pair     `yaml:"pairs,omitempty" json:"-"`
}

// LessonSummary is a lesson without its exercise answers, safe to list.
type LessonSummary struct {
	ID         string `json:"id"`
	Number     int    `json:"number"`
	Title      string `json:"title"`
	YouTubeURL string `json:"youtubeUrl,omitempty"`
	RutubeURL  string `json:"rutubeUrl,omitempty"`
	Content    string `json:"content,omitempty"`
	Questions  int    `json:"questions"`
	Pairs      int    `json:"pairs"`
}

func (l Lesson) Summary() LessonSummary {
	return LessonSummary{
		ID:         l.ID,
		Number:     l.Number,
		Title:      l.Title,
		YouTubeURL: l.YouTubeURL,
		RutubeURL:  l.RutubeURL,
		Content:    l.Content,
		Questions:  len(l.Quiz),
		Pairs:      len(l.Pairs),
	}
}

// LessonAt returns the lesson with the given 1-based number.
func (c Course) LessonAt(number int) (Lesson, bool) {
	for _, l := range c.Lessons {
		if l.Number == number {
			return l, true
		}
	}
	return Lesson{}, false
}

// Definition builds the session content for lesson number of c.
func (c Course) Definition(number int) (lesson.Definition, bool) {
	l, ok := c.LessonAt(number)
	if !ok {
		return lesson.Definition{}, false
	}
	return lesson.Definition{
		CourseID:  c.ID,
		LessonID:  l.ID,
		Index:     l.Number,
		Count:     len(c.Lessons),
		Title:     l.Title,
		Questions: l.Quiz,
		Pairs:     l.Pairs,
	}, true
}
