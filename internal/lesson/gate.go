package lesson

import (
	"context"
	"fmt"
)

// ProgressRecorder persists completed lessons. Recording an id that is
// already present must be a no-op.
type ProgressRecorder interface {
	MarkLessonComplete(ctx context.Context, courseID, lessonID string) (added bool, err error)
}

type IntentKind string

const (
	IntentLesson IntentKind = "lesson"
	IntentCourse IntentKind = "course"
)

// Intent is an abstract navigation request; resolving it to a URL is the
// caller's business.
type Intent struct {
	Kind     IntentKind `json:"kind"`
	CourseID string     `json:"courseId"`
	Lesson   int        `json:"lesson,omitempty"`
}

// Gate ties a checklist to the lesson's position in its course and decides
// whether completion and navigation are allowed.
type Gate struct {
	checklist   *Checklist
	progress    ProgressRecorder
	courseID    string
	lessonID    string
	lessonIndex int // 1-based
	lessonCount int
}

func NewGate(checklist *Checklist, progress ProgressRecorder, courseID, lessonID string, lessonIndex, lessonCount int) *Gate {
	return &Gate{
		checklist:   checklist,
		progress:    progress,
		courseID:    courseID,
		lessonID:    lessonID,
		lessonIndex: lessonIndex,
		lessonCount: lessonCount,
	}
}

func (g *Gate) IsComplete() bool { return g.checklist.IsComplete() }

// Complete records the lesson as done and points back to the course page.
func (g *Gate) Complete(ctx context.Context) (Intent, bool, error) {
	if !g.checklist.IsComplete() {
		return Intent{}, false, &PreconditionError{Action: "complete lesson", Missing: g.checklist.Missing()}
	}
	added, err := g.progress.MarkLessonComplete(ctx, g.courseID, g.lessonID)
	if err != nil {
		return Intent{}, false, fmt.Errorf("recording completed lesson: %w", err)
	}
	return Intent{Kind: IntentCourse, CourseID: g.courseID}, added, nil
}

// Next moves to the following lesson once the checklist is complete. From
// the last lesson it returns to the course page.
func (g *Gate) Next() (Intent, error) {
	if !g.checklist.IsComplete() {
		return Intent{}, &PreconditionError{Action: "next lesson", Missing: g.checklist.Missing()}
	}
	if g.lessonCount > 0 && g.lessonIndex >= g.lessonCount {
		return Intent{Kind: IntentCourse, CourseID: g.courseID}, nil
	}
	return Intent{Kind: IntentLesson, CourseID: g.courseID, Lesson: g.lessonIndex + 1}, nil
}

// Previous is allowed from any lesson but the first.
func (g *Gate) Previous() (Intent, error) {
	if g.lessonIndex <= 1 {
		return Intent{}, &PreconditionError{Action: "previous lesson"}
	}
	return Intent{Kind: IntentLesson, CourseID: g.courseID, Lesson: g.lessonIndex - 1}, nil
}

func (g *Gate) CanPrevious() bool { return g.lessonIndex > 1 }
