package progress_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/businesslike/lessonplay/internal/database"
	"github.com/businesslike/lessonplay/internal/progress"
)

func backends(t *testing.T) map[string]func(t *testing.T) progress.Backend {
	t.Helper()
	return map[string]func(t *testing.T) progress.Backend{
		"memory": func(t *testing.T) progress.Backend {
			return progress.NewMemoryBackend()
		},
		"sqlite": func(t *testing.T) progress.Backend {
			ctx := context.Background()
			// Real SQLite in-memory DB, no mocks.
			db, err := database.Open(ctx, ":memory:")
			if err != nil {
				t.Fatalf("opening db: %v", err)
			}
			b, err := progress.NewSQLiteBackend(ctx, db)
			if err != nil {
				db.Close()
				t.Fatalf("init sqlite backend: %v", err)
			}
			t.Cleanup(func() { b.Close() })
			return b
		},
	}
}

func TestMarkLessonComplete(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := progress.NewStore(open(t), progress.DefaultPrefix)

			got, err := s.CompletedInCourse(ctx, "1")
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 0 {
				t.Fatalf("fresh store has completed lessons: %v", got)
			}

			steps := []struct {
				course, lesson string
				wantAdded      bool
			}{
				{"1", "4", true},
				{"1", "4", false},
				{"1", "5", true},
				{"2", "1", true},
				{"1", "5", false},
			}
			for _, st := range steps {
				added, err := s.MarkLessonComplete(ctx, st.course, st.lesson)
				if err != nil {
					t.Fatalf("MarkLessonComplete(%s, %s): %v", st.course, st.lesson, err)
				}
				if added != st.wantAdded {
					t.Errorf("MarkLessonComplete(%s, %s) added = %v, want %v", st.course, st.lesson, added, st.wantAdded)
				}
			}

			all, err := s.CompletedLessons(ctx)
			if err != nil {
				t.Fatal(err)
			}
			want := map[string][]string{"1": {"4", "5"}, "2": {"1"}}
			if !reflect.DeepEqual(all, want) {
				t.Errorf("completed = %v, want %v", all, want)
			}
		})
	}
}

func TestFavoriteCourses(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := progress.NewStore(open(t), progress.DefaultPrefix)

			changed, err := s.SetFavoriteCourse(ctx, "3", true)
			if err != nil || !changed {
				t.Fatalf("add: changed=%v err=%v", changed, err)
			}
			if changed, _ := s.SetFavoriteCourse(ctx, "3", true); changed {
				t.Error("re-adding reported a change")
			}
			if fav, _ := s.IsFavoriteCourse(ctx, "3"); !fav {
				t.Error("course 3 not favorite")
			}

			now, err := s.ToggleFavoriteCourse(ctx, "7")
			if err != nil || !now {
				t.Fatalf("toggle on: now=%v err=%v", now, err)
			}
			if ids, _ := s.FavoriteCourses(ctx); !reflect.DeepEqual(ids, []string{"3", "7"}) {
				t.Errorf("favorites = %v", ids)
			}

			now, _ = s.ToggleFavoriteCourse(ctx, "3")
			if now {
				t.Error("toggle off returned true")
			}
			if changed, _ := s.SetFavoriteCourse(ctx, "3", false); changed {
				t.Error("removing absent course reported a change")
			}
			if ids, _ := s.FavoriteCourses(ctx); !reflect.DeepEqual(ids, []string{"7"}) {
				t.Errorf("favorites = %v, want [7]", ids)
			}
		})
	}
}

func TestFavoriteURLsSeparateFromCourses(t *testing.T) {
	ctx := context.Background()
	s := progress.NewStore(progress.NewMemoryBackend(), progress.DefaultPrefix)

	s.SetFavoriteURL(ctx, "https://example.com/course.html?id=1", true)
	s.SetFavoriteCourse(ctx, "2", true)

	urls, _ := s.FavoriteURLs(ctx)
	ids, _ := s.FavoriteCourses(ctx)
	if len(urls) != 1 || len(ids) != 1 || urls[0] == ids[0] {
		t.Errorf("urls = %v ids = %v", urls, ids)
	}
}

func TestTeacherCourses(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := progress.NewStore(open(t), progress.DefaultPrefix)

			course := progress.PublishedCourse{
				ID:        "abc",
				Title:     "Negotiations",
				Lessons:   []progress.PublishedLesson{{Number: 1, Title: "Openers"}},
				CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
				Status:    "published",
			}
			if err := s.PublishCourse(ctx, course); err != nil {
				t.Fatal(err)
			}

			got, err := s.TeacherCourse(ctx, "abc")
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, course) {
				t.Errorf("course = %+v, want %+v", got, course)
			}
			if _, err := s.TeacherCourse(ctx, "nope"); !errors.Is(err, progress.ErrNotFound) {
				t.Errorf("missing course err = %v", err)
			}
		})
	}
}

func TestPrefixIsolation(t *testing.T) {
	ctx := context.Background()
	backend := progress.NewMemoryBackend()
	a := progress.NewStore(backend, "a_")
	b := progress.NewStore(backend, "b_")

	a.MarkLessonComplete(ctx, "1", "1")
	got, _ := b.CompletedInCourse(ctx, "1")
	if len(got) != 0 {
		t.Errorf("prefix b sees %v", got)
	}
	raw, ok, _ := backend.Get(ctx, "a_completed_lessons")
	if !ok || string(raw) != `{"1":["1"]}` {
		t.Errorf("raw value = %s ok=%v", raw, ok)
	}
}

func TestNullStoredValues(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			backend := open(t)
			for _, key := range []string{"completed_lessons", "favorite_courses", "teacher_courses"} {
				if err := backend.Set(ctx, progress.DefaultPrefix+key, []byte("null")); err != nil {
					t.Fatal(err)
				}
			}
			s := progress.NewStore(backend, progress.DefaultPrefix)

			added, err := s.MarkLessonComplete(ctx, "1", "1")
			if err != nil || !added {
				t.Fatalf("MarkLessonComplete = %v, %v", added, err)
			}
			got, err := s.CompletedInCourse(ctx, "1")
			if err != nil || !reflect.DeepEqual(got, []string{"1"}) {
				t.Errorf("CompletedInCourse = %v, %v", got, err)
			}
			if changed, err := s.SetFavoriteCourse(ctx, "2", true); err != nil || !changed {
				t.Errorf("SetFavoriteCourse = %v, %v", changed, err)
			}
			courses, err := s.TeacherCourses(ctx)
			if err != nil || courses == nil || len(courses) != 0 {
				t.Errorf("TeacherCourses = %v, %v", courses, err)
			}
		})
	}
}

func TestRedisBackendRoundTrip(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()
	backend, err := progress.OpenRedis(ctx, url)
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	prefix := fmt.Sprintf("lessonplay_test_%d_", time.Now().UnixNano())
	s := progress.NewStore(backend, prefix)
	defer s.Close()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if added, err := s.MarkLessonComplete(ctx, "1", "3"); err != nil || !added {
		t.Fatalf("MarkLessonComplete = %v, %v", added, err)
	}
	got, err := s.CompletedInCourse(ctx, "1")
	if err != nil || !reflect.DeepEqual(got, []string{"3"}) {
		t.Errorf("CompletedInCourse = %v, %v", got, err)
	}
	fav, err := s.ToggleFavoriteCourse(ctx, "2")
	if err != nil || !fav {
		t.Errorf("ToggleFavoriteCourse = %v, %v", fav, err)
	}
	raw, ok, err := backend.Get(ctx, prefix+"completed_lessons")
	if err != nil || !ok || string(raw) != `{"1":["3"]}` {
		t.Errorf("raw value = %s ok=%v err=%v", raw, ok, err)
	}
}

func TestParseRedisURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid", "redis://localhost:6379", false},
		{"valid with db", "redis://localhost:6379/2", false},
		{"empty", "", true},
		{"bad scheme", "http://localhost", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := progress.ParseRedisURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseRedisURL() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRedisBackendUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:         "localhost:1",
		DialTimeout:  10 * time.Millisecond,
		ReadTimeout:  10 * time.Millisecond,
		WriteTimeout: 10 * time.Millisecond,
		MaxRetries:   -1,
	})
	s := progress.NewStore(progress.NewRedisBackend(client), progress.DefaultPrefix)
	defer s.Close()

	ctx := context.Background()
	if err := s.Ping(ctx); err == nil {
		t.Error("Ping succeeded against dead redis")
	}
	if _, err := s.MarkLessonComplete(ctx, "1", "1"); err == nil {
		t.Error("MarkLessonComplete succeeded against dead redis")
	}
}
