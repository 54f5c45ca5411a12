package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/businesslike/lessonplay/internal/catalog"
	"github.com/businesslike/lessonplay/internal/database"
	"github.com/businesslike/lessonplay/internal/handler/health"
	"github.com/businesslike/lessonplay/internal/lesson"
	"github.com/businesslike/lessonplay/internal/progress"
)

type testEnv struct {
	router   http.Handler
	store    *progress.Store
	loader   *catalog.Loader
	sched    *lesson.ManualScheduler
	sessions *Registry
	broker   *Broker
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	// Real SQLite in-memory DB, no mocks needed.
	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	backend, err := progress.NewSQLiteBackend(ctx, db)
	if err != nil {
		t.Fatalf("init sqlite backend: %v", err)
	}
	store := progress.NewStore(backend, progress.DefaultPrefix)
	t.Cleanup(func() { store.Close() })

	loader, err := catalog.NewLoader("", slog.Default())
	if err != nil {
		t.Fatalf("loading content: %v", err)
	}

	sched := &lesson.ManualScheduler{}
	broker := NewBroker()
	sessions := NewRegistry(lesson.Options{
		Scheduler: sched,
		Progress:  store,
		Sink:      broker,
	}, 0, slog.Default())
	t.Cleanup(func() { sessions.Close() })

	router := NewRouter(slog.Default(), Deps{
		Catalog:  catalog.New(loader, store),
		Progress: store,
		Sessions: sessions,
		Broker:   broker,
		Checks:   map[string]health.Checker{"store": health.CheckFunc(store.Ping)},
	})

	return &testEnv{
		router:   router,
		store:    store,
		loader:   loader,
		sched:    sched,
		sessions: sessions,
		broker:   broker,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response %q: %v", w.Body.String(), err)
	}
	return v
}

func (e *testEnv) start(t *testing.T, courseID string, number int) (lesson.Snapshot, lesson.Definition) {
	t.Helper()
	course, ok := e.loader.Course(courseID)
	if !ok {
		t.Fatalf("course %s missing", courseID)
	}
	def, ok := course.Definition(number)
	if !ok {
		t.Fatalf("lesson %d missing", number)
	}

	path := "/api/courses/" + courseID + "/lessons/" + strconv.Itoa(number) + "/session"
	w := e.do(t, http.MethodPost, path, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("start session: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return decode[lesson.Snapshot](t, w), def
}

// completeBefore records every lesson numbered below number as completed so
// that lesson can be opened.
func (e *testEnv) completeBefore(t *testing.T, courseID string, number int) {
	t.Helper()
	course, ok := e.loader.Course(courseID)
	if !ok {
		t.Fatalf("course %s missing", courseID)
	}
	for _, l := range course.Lessons {
		if l.Number >= number {
			continue
		}
		if _, err := e.store.MarkLessonComplete(t.Context(), courseID, l.ID); err != nil {
			t.Fatalf("marking lesson %s: %v", l.ID, err)
		}
	}
}
