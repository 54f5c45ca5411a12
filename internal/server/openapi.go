package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/businesslike/lessonplay/internal/catalog"
	"github.com/businesslike/lessonplay/internal/handler/health"
	"github.com/businesslike/lessonplay/internal/lesson"
)

// ErrorResponse is returned for all error responses. Missing lists the open
// checklist items or earlier lessons when a gated action is refused.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing,omitempty"`
	Notice  string   `json:"notice,omitempty"`
}

// Path parameter sets, declared so the reflector can document them.
type SessionPath struct {
	SessionID string `path:"sessionID" json:"-"`
}

type CoursePath struct {
	CourseID string `path:"courseID" json:"-"`
}

type LessonPath struct {
	CourseID     string `path:"courseID" json:"-"`
	LessonNumber int    `path:"lessonNumber" json:"-"`
}

type ChecklistItemPath struct {
	SessionID string `path:"sessionID" json:"-"`
	Item      string `path:"item" json:"-" enum:"materials,quiz,game"`
}

type answerDoc struct {
	SessionPath
	AnswerRequest
}

type selectCardDoc struct {
	SessionPath
	SelectCardRequest
}

type checklistItemDoc struct {
	ChecklistItemPath
	ChecklistItemRequest
}

type apiResponse struct {
	status int
	body   any
	ctype  string
}

type apiOperation struct {
	method, path  string
	summary, desc string
	req           any
	resps         []apiResponse
}

func okResp(body any) apiResponse { return apiResponse{status: http.StatusOK, body: body} }
func createdResp(body any) apiResponse { return apiResponse{status: http.StatusCreated, body: body} }
func errResp(status int) apiResponse { return apiResponse{status: status, body: ErrorResponse{}} }

func apiOperations() []apiOperation {
	const sess = "/api/sessions/{sessionID}"
	sp, cp := SessionPath{}, CoursePath{}
	notFound, bad, conflict, gone := errResp(http.StatusNotFound), errResp(http.StatusBadRequest), errResp(http.StatusConflict), errResp(http.StatusGone)

	return []apiOperation{
		{method: http.MethodGet, path: "/healthz", summary: "Health check",
			desc:  "Returns the health status of the progress store.",
			resps: []apiResponse{okResp(health.Report{}), {status: http.StatusServiceUnavailable, body: health.Report{}}}},

		{method: http.MethodGet, path: "/api/courses", summary: "List courses",
			desc:  "Built-in and teacher-published courses with the learner's progress.",
			resps: []apiResponse{okResp([]CourseSummary{})}},
		{method: http.MethodGet, path: "/api/courses/{courseID}", summary: "Get course",
			desc: "A course with its lessons and which of them are completed.",
			req:  cp, resps: []apiResponse{okResp(CourseDetail{}), notFound}},
		{method: http.MethodPost, path: "/api/teacher/courses", summary: "Publish course",
			desc: "Validates a course-builder draft and publishes it.",
			req:  catalog.CourseDraft{}, resps: []apiResponse{createdResp(catalog.Course{}), bad}},

		{method: http.MethodPost, path: "/api/courses/{courseID}/lessons/{lessonNumber}/session", summary: "Open lesson",
			desc: "Starts an interactive session for a lesson and returns its state. Refused while an earlier lesson of the course is incomplete.",
			req:  LessonPath{}, resps: []apiResponse{createdResp(lesson.Snapshot{}), bad, notFound, conflict}},
		{method: http.MethodGet, path: sess, summary: "Session state",
			req: sp, resps: []apiResponse{okResp(lesson.Snapshot{}), notFound}},
		{method: http.MethodDelete, path: sess, summary: "Close session",
			desc: "Discards the session. Pending timers are dropped and open event streams end.",
			req:  sp, resps: []apiResponse{{status: http.StatusNoContent}, notFound}},
		{method: http.MethodPost, path: sess + "/quiz/answer", summary: "Answer question",
			desc: "Answers the current quiz question. Stale or repeated answers are ignored.",
			req:  answerDoc{}, resps: []apiResponse{okResp(AnswerResponse{}), bad, notFound, gone}},
		{method: http.MethodPost, path: sess + "/quiz/retry", summary: "Retry quiz",
			req: sp, resps: []apiResponse{okResp(lesson.Snapshot{}), bad, notFound, gone}},
		{method: http.MethodPost, path: sess + "/game/select", summary: "Select card",
			desc: "Selects a card in the matching game.",
			req:  selectCardDoc{}, resps: []apiResponse{okResp(lesson.Snapshot{}), bad, notFound, gone}},
		{method: http.MethodPost, path: sess + "/game/restart", summary: "Restart game",
			req: sp, resps: []apiResponse{okResp(lesson.Snapshot{}), bad, notFound, gone}},
		{method: http.MethodPost, path: sess + "/materials/view", summary: "View materials",
			desc: "Checks the materials item after the materials delay.",
			req:  sp, resps: []apiResponse{{status: http.StatusAccepted, body: lesson.Snapshot{}}, notFound, gone}},
		{method: http.MethodPut, path: sess + "/checklist/{item}", summary: "Set checklist item",
			req: checklistItemDoc{}, resps: []apiResponse{okResp(lesson.Snapshot{}), bad, notFound, gone}},
		{method: http.MethodPost, path: sess + "/complete", summary: "Complete lesson",
			desc: "Records the lesson as completed. Refused while checklist items are open.",
			req:  sp, resps: []apiResponse{okResp(NavigationResponse{}), conflict, notFound, gone}},
		{method: http.MethodPost, path: sess + "/next", summary: "Next lesson",
			req: sp, resps: []apiResponse{okResp(NavigationResponse{}), conflict, notFound, gone}},
		{method: http.MethodPost, path: sess + "/previous", summary: "Previous lesson",
			req: sp, resps: []apiResponse{okResp(NavigationResponse{}), conflict, notFound, gone}},
		{method: http.MethodGet, path: sess + "/events", summary: "SSE event stream",
			desc: "Server-Sent Events with state, notification and navigate events.",
			req:  sp, resps: []apiResponse{{status: http.StatusOK, ctype: "text/event-stream"}, notFound}},
		{method: http.MethodGet, path: "/ws/sessions/{sessionID}", summary: "WebSocket event stream",
			desc: "The session events as WebSocket text messages.",
			req:  sp, resps: []apiResponse{{status: http.StatusSwitchingProtocols, ctype: "text/plain"}, notFound}},

		{method: http.MethodGet, path: "/api/progress", summary: "Completed lessons",
			resps: []apiResponse{okResp(ProgressResponse{})}},
		{method: http.MethodGet, path: "/api/favorites/courses", summary: "Favorite courses",
			resps: []apiResponse{okResp([]string{})}},
		{method: http.MethodPut, path: "/api/favorites/courses/{courseID}", summary: "Add favorite course",
			req: cp, resps: []apiResponse{okResp(FavoriteResponse{})}},
		{method: http.MethodDelete, path: "/api/favorites/courses/{courseID}", summary: "Remove favorite course",
			req: cp, resps: []apiResponse{okResp(FavoriteResponse{})}},
		{method: http.MethodPost, path: "/api/favorites/courses/{courseID}/toggle", summary: "Toggle favorite course",
			req: cp, resps: []apiResponse{okResp(FavoriteResponse{})}},
		{method: http.MethodGet, path: "/api/favorites/urls", summary: "Favorite course cards",
			resps: []apiResponse{okResp([]string{})}},
		{method: http.MethodPut, path: "/api/favorites/urls", summary: "Add favorite course card",
			req: FavoriteURLRequest{}, resps: []apiResponse{okResp(FavoriteResponse{}), bad}},
		{method: http.MethodDelete, path: "/api/favorites/urls", summary: "Remove favorite course card",
			req: FavoriteURLRequest{}, resps: []apiResponse{okResp(FavoriteResponse{}), bad}},
	}
}

// newOpenAPISpec panics on reflection errors: the operation table is static,
// so a failure is a programming error.
func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Lessonplay API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for interactive course lessons.")

	for _, op := range apiOperations() {
		oc, err := r.NewOperationContext(op.method, op.path)
		if err != nil {
			panic(fmt.Sprintf("openapi %s %s: %v", op.method, op.path, err))
		}
		oc.SetSummary(op.summary)
		if op.desc != "" {
			oc.SetDescription(op.desc)
		}
		if op.req != nil {
			oc.AddReqStructure(op.req)
		}
		for _, resp := range op.resps {
			opts := []openapi.ContentOption{openapi.WithHTTPStatus(resp.status)}
			if resp.ctype != "" {
				opts = append(opts, openapi.WithContentType(resp.ctype))
			}
			oc.AddRespStructure(resp.body, opts...)
		}
		if err := r.AddOperation(oc); err != nil {
			panic(fmt.Sprintf("openapi %s %s: %v", op.method, op.path, err))
		}
	}
	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
