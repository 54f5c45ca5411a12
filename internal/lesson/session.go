// Package lesson implements the interactive part of a lesson view: the quiz,
// the matching game and the checklist that gates completion and navigation.
// It has no dependencies outside the standard library; storage, transport
// and timers are supplied by the caller.
package lesson

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	DefaultMaterialsDelay = 2 * time.Second
	DefaultNotifyDismiss  = 3 * time.Second
)

// Timing holds the fixed delays of a lesson view. Zero values fall back to
// the package defaults.
type Timing struct {
	RevealDelay    time.Duration
	WrongCooldown  time.Duration
	CompleteDelay  time.Duration
	MaterialsDelay time.Duration
	NotifyDismiss  time.Duration
}

func (t Timing) withDefaults() Timing {
	if t.RevealDelay <= 0 {
		t.RevealDelay = DefaultRevealDelay
	}
	if t.WrongCooldown <= 0 {
		t.WrongCooldown = DefaultWrongCooldown
	}
	if t.CompleteDelay <= 0 {
		t.CompleteDelay = DefaultCompleteDelay
	}
	if t.MaterialsDelay <= 0 {
		t.MaterialsDelay = DefaultMaterialsDelay
	}
	if t.NotifyDismiss <= 0 {
		t.NotifyDismiss = DefaultNotifyDismiss
	}
	return t
}

// Definition is the content a session is built from.
type Definition struct {
	CourseID  string
	LessonID  string
	Index     int // 1-based position in the course
	Count     int // lessons in the course
	Title     string
	Questions []Question
	Pairs     []Pair
}

type NotificationKind string

const (
	NotifyInfo    NotificationKind = "info"
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
)

type Notification struct {
	Kind           NotificationKind `json:"kind"`
	Message        string           `json:"message"`
	DismissAfterMs int64            `json:"dismissAfterMs"`
}

type EventType string

const (
	EventState        EventType = "state"
	EventNotification EventType = "notification"
	EventNavigate     EventType = "navigate"
)

type Event struct {
	Type         EventType     `json:"type"`
	State        *Snapshot     `json:"state,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
	Intent       *Intent       `json:"intent,omitempty"`
}

// Sink receives session events. Publish must not block.
type Sink interface {
	Publish(sessionID string, ev Event)
}

type nopSink struct{}

func (nopSink) Publish(string, Event) {}

type Options struct {
	Scheduler Scheduler
	Rand      *rand.Rand
	Timing    Timing
	Progress  ProgressRecorder
	Sink      Sink
	Logger    *slog.Logger
}

// Session is the state of one open lesson view. All methods are safe for
// concurrent use; operations and timer callbacks are applied one at a time.
type Session struct {
	id     string
	def    Definition
	timing Timing
	sched  Scheduler
	sink   Sink
	logger *slog.Logger

	done chan struct{}

	mu               sync.Mutex
	closed           bool
	lastActive       time.Time
	materialsPending bool
	quiz             *Quiz
	game             *MatchGame
	checklist        *Checklist
	gate             *Gate
}

func NewSession(id string, def Definition, opts Options) (*Session, error) {
	if def.CourseID == "" || def.LessonID == "" {
		return nil, &ValidationError{Field: "lesson", Msg: "course and lesson ids are required"}
	}
	if def.Index < 1 {
		return nil, &ValidationError{Field: "lesson", Msg: fmt.Sprintf("lesson index %d out of range", def.Index)}
	}
	if opts.Progress == nil {
		return nil, fmt.Errorf("lesson session: progress recorder is required")
	}
	if opts.Scheduler == nil {
		opts.Scheduler = TimerScheduler{}
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Sink == nil {
		opts.Sink = nopSink{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Session{
		id:         id,
		def:        def,
		timing:     opts.Timing.withDefaults(),
		sched:      opts.Scheduler,
		sink:       opts.Sink,
		logger:     opts.Logger.With("session_id", id, "course_id", def.CourseID, "lesson_id", def.LessonID),
		done:       make(chan struct{}),
		lastActive: time.Now(),
	}
	locked := sessionScheduler{s: s}

	items := []string{ItemMaterials}
	if len(def.Questions) > 0 {
		q, err := NewQuiz(def.Questions, locked, s.timing.RevealDelay)
		if err != nil {
			return nil, err
		}
		q.OnResults(s.quizFinished)
		s.quiz = q
		items = append(items, ItemQuiz)
	}
	if len(def.Pairs) > 0 {
		g, err := NewMatchGame(def.Pairs, locked, opts.Rand, s.timing.WrongCooldown, s.timing.CompleteDelay)
		if err != nil {
			return nil, err
		}
		g.OnComplete(s.gameFinished)
		s.game = g
		items = append(items, ItemGame)
	}

	s.checklist = NewChecklist(items...)
	s.checklist.OnChange(func(complete bool) {
		s.logger.Debug("checklist changed", "complete", complete)
	})
	s.gate = NewGate(s.checklist, opts.Progress, def.CourseID, def.LessonID, def.Index, def.Count)
	return s, nil
}

// sessionScheduler runs engine timers under the session lock and drops them
// once the session is closed.
type sessionScheduler struct{ s *Session }

func (ss sessionScheduler) AfterFunc(d time.Duration, f func()) {
	s := ss.s
	s.sched.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		f()
		s.publishState()
	})
}

func (s *Session) ID() string { return s.id }

func (s *Session) Definition() Definition { return s.def }

// LastActive is the time of the most recent user operation.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) begin() error {
	if s.closed {
		return ErrSessionClosed
	}
	s.lastActive = time.Now()
	return nil
}

// Answer submits optionID for the quiz question at questionIndex. ok is
// false when the answer was ignored as stale or repeated.
func (s *Session) Answer(questionIndex int, optionID string) (AnswerResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return AnswerResult{}, false, err
	}
	if s.quiz == nil {
		return AnswerResult{}, false, s.invalid(&ValidationError{Field: "quiz", Msg: "this lesson has no quiz"})
	}
	res, ok := s.quiz.Submit(questionIndex, optionID)
	if ok {
		s.publishState()
	}
	return res, ok, nil
}

func (s *Session) RetryQuiz() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return err
	}
	if s.quiz == nil {
		return s.invalid(&ValidationError{Field: "quiz", Msg: "this lesson has no quiz"})
	}
	s.quiz.Retry()
	s.publishState()
	return nil
}

func (s *Session) SelectCard(cardID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return err
	}
	if s.game == nil {
		return s.invalid(&ValidationError{Field: "game", Msg: "this lesson has no matching game"})
	}
	s.game.Select(cardID)
	s.publishState()
	return nil
}

func (s *Session) RestartGame() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return err
	}
	if s.game == nil {
		return s.invalid(&ValidationError{Field: "game", Msg: "this lesson has no matching game"})
	}
	s.game.Restart()
	s.publishState()
	return nil
}

// ViewMaterials marks the reading materials as viewed after the materials
// delay, as if the learner stayed on the text tab.
func (s *Session) ViewMaterials() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return err
	}
	if s.materialsPending || s.checklist.Done(ItemMaterials) {
		return nil
	}
	s.materialsPending = true
	sessionScheduler{s: s}.AfterFunc(s.timing.MaterialsDelay, func() {
		s.materialsPending = false
		_ = s.checklist.Set(ItemMaterials, true)
	})
	return nil
}

// SetItem toggles a checklist item directly.
func (s *Session) SetItem(name string, done bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return err
	}
	if err := s.checklist.Set(name, done); err != nil {
		return s.invalid(err)
	}
	s.publishState()
	return nil
}

// Complete records the lesson as done. It fails with *PreconditionError
// while any checklist item is open.
func (s *Session) Complete(ctx context.Context) (Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return Intent{}, err
	}
	intent, added, err := s.gate.Complete(ctx)
	var perr *PreconditionError
	switch {
	case errors.As(err, &perr):
		s.notify(NotifyError, "Finish all lesson tasks first!")
		return Intent{}, err
	case err != nil:
		s.logger.Error("recording lesson completion failed", "error", err)
		s.notify(NotifyError, "Could not save your progress, try again")
		return Intent{}, err
	}
	s.logger.Info("lesson completed", "newly_recorded", added)
	s.notify(NotifySuccess, "Lesson complete! Great work!")
	s.sink.Publish(s.id, Event{Type: EventNavigate, Intent: &intent})
	return intent, nil
}

func (s *Session) Next() (Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return Intent{}, err
	}
	intent, err := s.gate.Next()
	if err != nil {
		s.notify(NotifyError, "Finish all lesson tasks first!")
		return Intent{}, err
	}
	s.sink.Publish(s.id, Event{Type: EventNavigate, Intent: &intent})
	return intent, nil
}

func (s *Session) Previous() (Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return Intent{}, err
	}
	intent, err := s.gate.Previous()
	if err != nil {
		return Intent{}, err
	}
	s.sink.Publish(s.id, Event{Type: EventNavigate, Intent: &intent})
	return intent, nil
}

// Close discards the session. Timers still pending become no-ops and Done
// is closed. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
}

// Done is closed once the session is closed, so event streams can end.
func (s *Session) Done() <-chan struct{} { return s.done }

type Snapshot struct {
	ID          string          `json:"id"`
	CourseID    string          `json:"courseId"`
	LessonID    string          `json:"lessonId"`
	Lesson      int             `json:"lesson"`
	LessonCount int             `json:"lessonCount"`
	Title       string          `json:"title"`
	Quiz        *QuizView       `json:"quiz,omitempty"`
	Game        *GameView       `json:"game,omitempty"`
	Checklist   []ChecklistItem `json:"checklist"`
	Complete    bool            `json:"complete"`
	CanPrevious bool            `json:"canPrevious"`
	CanNext     bool            `json:"canNext"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		ID:          s.id,
		CourseID:    s.def.CourseID,
		LessonID:    s.def.LessonID,
		Lesson:      s.def.Index,
		LessonCount: s.def.Count,
		Title:       s.def.Title,
		Checklist:   s.checklist.Items(),
		Complete:    s.checklist.IsComplete(),
		CanPrevious: s.gate.CanPrevious(),
		CanNext:     s.checklist.IsComplete(),
	}
	if s.quiz != nil {
		v := s.quiz.View()
		snap.Quiz = &v
	}
	if s.game != nil {
		v := s.game.View()
		snap.Game = &v
	}
	return snap
}

func (s *Session) quizFinished(score int) {
	s.logger.Info("quiz finished", "score", score, "tier", TierFor(score))
	_ = s.checklist.Set(ItemQuiz, true)
	s.notify(NotifyInfo, fmt.Sprintf("You answered %d of %d questions correctly", s.quiz.Correct(), s.quiz.Total()))
}

func (s *Session) gameFinished(moves int) {
	s.logger.Info("matching game finished", "moves", moves)
	_ = s.checklist.Set(ItemGame, true)
	s.notify(NotifySuccess, fmt.Sprintf("All pairs matched in %d moves!", moves))
}

func (s *Session) invalid(err error) error {
	s.notify(NotifyError, err.Error())
	return err
}

func (s *Session) notify(kind NotificationKind, msg string) {
	s.sink.Publish(s.id, Event{
		Type: EventNotification,
		Notification: &Notification{
			Kind:           kind,
			Message:        msg,
			DismissAfterMs: s.timing.NotifyDismiss.Milliseconds(),
		},
	})
}

func (s *Session) publishState() {
	snap := s.snapshot()
	s.sink.Publish(s.id, Event{Type: EventState, State: &snap})
}
