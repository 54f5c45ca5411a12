package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/businesslike/lessonplay/internal/lesson"
)

var ErrSessionNotFound = errors.New("session not found")

// Registry holds the open lesson sessions, keyed by a random id.
type Registry struct {
	opts   lesson.Options
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*lesson.Session
}

// NewRegistry creates sessions with opts. Each session gets its own random
// source, so opts.Rand is ignored. Sessions idle for longer than ttl are
// dropped by Sweep; a zero ttl keeps them until deleted.
func NewRegistry(opts lesson.Options, ttl time.Duration, logger *slog.Logger) *Registry {
	opts.Rand = nil
	opts.Logger = logger
	return &Registry{
		opts:     opts,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*lesson.Session),
	}
}

func (r *Registry) Create(def lesson.Definition) (*lesson.Session, error) {
	id := uuid.NewString()
	sess, err := lesson.NewSession(id, def, r.opts)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	r.mu.Lock()
	r.sessions[id] = sess
	r.mu.Unlock()

	r.logger.Info("session started", "session_id", id, "course_id", def.CourseID, "lesson_id", def.LessonID)
	return sess, nil
}

func (r *Registry) Get(id string) (*lesson.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Remove closes and forgets the session.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	sess.Close()
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep removes sessions idle for longer than the registry ttl and returns
// how many were dropped.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var expired []*lesson.Session
	for id, sess := range r.sessions {
		if sess.LastActive().Before(cutoff) {
			expired = append(expired, sess)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, sess := range expired {
		sess.Close()
		r.logger.Info("session expired", "session_id", sess.ID())
	}
	return len(expired)
}

// Run sweeps on every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			r.Sweep()
		}
	}
}

// Close closes every session.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, sess := range r.sessions {
		sess.Close()
		delete(r.sessions, id)
	}
	return nil
}
