package lesson

import (
	"fmt"
	"math"
	"time"
)

// DefaultRevealDelay is how long the answer stays revealed before the quiz
// moves on.
const DefaultRevealDelay = 1500 * time.Millisecond

type Option struct {
	ID      string `json:"id" yaml:"id"`
	Text    string `json:"text" yaml:"text"`
	Correct bool   `json:"correct" yaml:"correct"`
}

type Question struct {
	ID      string   `json:"id" yaml:"id"`
	Prompt  string   `json:"prompt" yaml:"prompt"`
	Options []Option `json:"options" yaml:"options"`
}

// CorrectOption returns the id of the single correct option.
func (q Question) CorrectOption() string {
	for _, o := range q.Options {
		if o.Correct {
			return o.ID
		}
	}
	return ""
}

// ValidateQuestions checks that every question has options with unique ids
// and exactly one correct option.
func ValidateQuestions(questions []Question) error {
	for i, q := range questions {
		if len(q.Options) == 0 {
			return &ValidationError{Field: "quiz", Msg: fmt.Sprintf("question %d has no options", i+1)}
		}
		seen := make(map[string]bool, len(q.Options))
		correct := 0
		for _, o := range q.Options {
			if o.ID == "" {
				return &ValidationError{Field: "quiz", Msg: fmt.Sprintf("question %d has an option without id", i+1)}
			}
			if seen[o.ID] {
				return &ValidationError{Field: "quiz", Msg: fmt.Sprintf("question %d repeats option %q", i+1, o.ID)}
			}
			seen[o.ID] = true
			if o.Correct {
				correct++
			}
		}
		if correct != 1 {
			return &ValidationError{Field: "quiz", Msg: fmt.Sprintf("question %d has %d correct options, want 1", i+1, correct)}
		}
	}
	return nil
}

type QuizPhase string

const (
	QuizInProgress QuizPhase = "in_progress"
	QuizResults    QuizPhase = "results"
)

type Tier string

const (
	TierExcellent   Tier = "excellent"
	TierGood        Tier = "good"
	TierNeedsReview Tier = "needs review"
)

// TierFor buckets a percentage score.
func TierFor(score int) Tier {
	switch {
	case score >= 80:
		return TierExcellent
	case score >= 60:
		return TierGood
	default:
		return TierNeedsReview
	}
}

type AnswerResult struct {
	IsCorrect       bool   `json:"isCorrect"`
	CorrectOptionID string `json:"correctOptionId"`
}

// Quiz runs single-choice questions in order and keeps the score.
// It is not safe for concurrent use; Session serializes access.
type Quiz struct {
	questions   []Question
	sched       Scheduler
	revealDelay time.Duration
	onResults   func(score int)

	epoch    uint64
	phase    QuizPhase
	current  int
	correct  int
	answered bool
	selected []string // chosen option per question, "" if unanswered
}

func NewQuiz(questions []Question, sched Scheduler, revealDelay time.Duration) (*Quiz, error) {
	if len(questions) == 0 {
		return nil, &ValidationError{Field: "quiz", Msg: "at least one question is required"}
	}
	if err := ValidateQuestions(questions); err != nil {
		return nil, err
	}
	if revealDelay <= 0 {
		revealDelay = DefaultRevealDelay
	}
	q := &Quiz{
		questions:   questions,
		sched:       sched,
		revealDelay: revealDelay,
	}
	q.reset()
	return q, nil
}

// OnResults registers the hook fired when the quiz reaches Results.
func (q *Quiz) OnResults(f func(score int)) { q.onResults = f }

func (q *Quiz) reset() {
	q.phase = QuizInProgress
	q.current = 1
	q.correct = 0
	q.answered = false
	q.selected = make([]string, len(q.questions))
}

// Submit scores optionID for the question at questionIndex (1-based). It
// returns ok=false and changes nothing when the question is not the current
// one, was already answered, or the quiz is showing results.
func (q *Quiz) Submit(questionIndex int, optionID string) (AnswerResult, bool) {
	if q.phase != QuizInProgress || q.answered || questionIndex != q.current {
		return AnswerResult{}, false
	}
	question := q.questions[q.current-1]

	var chosen *Option
	for i := range question.Options {
		if question.Options[i].ID == optionID {
			chosen = &question.Options[i]
			break
		}
	}
	if chosen == nil {
		return AnswerResult{}, false
	}

	q.answered = true
	q.selected[q.current-1] = optionID
	if chosen.Correct {
		q.correct++
	}

	epoch := q.epoch
	q.sched.AfterFunc(q.revealDelay, func() { q.advance(epoch) })

	return AnswerResult{IsCorrect: chosen.Correct, CorrectOptionID: question.CorrectOption()}, true
}

func (q *Quiz) advance(epoch uint64) {
	if epoch != q.epoch || q.phase != QuizInProgress || !q.answered {
		return
	}
	if q.current < len(q.questions) {
		q.current++
		q.answered = false
		return
	}
	q.phase = QuizResults
	if q.onResults != nil {
		q.onResults(q.Score())
	}
}

// Retry returns the quiz to its initial state. Pending reveal timers become
// no-ops.
func (q *Quiz) Retry() {
	q.epoch++
	q.reset()
}

// Score is the rounded percentage of correct answers.
func (q *Quiz) Score() int {
	return int(math.Round(float64(q.correct) / float64(len(q.questions)) * 100))
}

func (q *Quiz) Phase() QuizPhase { return q.phase }
func (q *Quiz) Current() int     { return q.current }
func (q *Quiz) Total() int       { return len(q.questions) }
func (q *Quiz) Correct() int     { return q.correct }
func (q *Quiz) Answered() bool   { return q.answered }

type OptionView struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Selected bool   `json:"selected"`
	// Correct is only reported once the question has been answered.
	Correct *bool `json:"correct,omitempty"`
}

type QuestionView struct {
	Index   int          `json:"index"`
	ID      string       `json:"id"`
	Prompt  string       `json:"prompt"`
	Options []OptionView `json:"options"`
}

type QuizView struct {
	Phase    QuizPhase     `json:"phase"`
	Current  int           `json:"current"`
	Total    int           `json:"total"`
	Correct  int           `json:"correct"`
	Answered bool          `json:"answered"`
	Question *QuestionView `json:"question,omitempty"`
	Score    *int          `json:"score,omitempty"`
	Tier     Tier          `json:"tier,omitempty"`
}

func (q *Quiz) View() QuizView {
	v := QuizView{
		Phase:    q.phase,
		Current:  q.current,
		Total:    len(q.questions),
		Correct:  q.correct,
		Answered: q.answered,
	}
	if q.phase == QuizResults {
		score := q.Score()
		v.Score = &score
		v.Tier = TierFor(score)
		return v
	}

	question := q.questions[q.current-1]
	qv := &QuestionView{Index: q.current, ID: question.ID, Prompt: question.Prompt}
	for _, o := range question.Options {
		ov := OptionView{ID: o.ID, Text: o.Text, Selected: q.selected[q.current-1] == o.ID}
		if q.answered {
			correct := o.Correct
			ov.Correct = &correct
		}
		qv.Options = append(qv.Options, ov)
	}
	v.Question = qv
	return v
}
