package server

import (
	"net/http"

	"github.com/businesslike/lessonplay/internal/lesson"
)

type AnswerRequest struct {
	QuestionIndex int    `json:"questionIndex"`
	OptionID      string `json:"optionId"`
}

type AnswerResponse struct {
	// Accepted is false when the answer was stale or the question was
	// already answered.
	Accepted bool                `json:"accepted"`
	Result   *lesson.AnswerResult `json:"result,omitempty"`
	State    lesson.Snapshot      `json:"state"`
}

func handleQuizAnswer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AnswerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.QuestionIndex < 1 || req.OptionID == "" {
			writeError(w, http.StatusBadRequest, "questionIndex and optionId are required")
			return
		}

		sess := sessionFrom(r)
		res, ok, err := sess.Answer(req.QuestionIndex, req.OptionID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		resp := AnswerResponse{Accepted: ok, State: sess.Snapshot()}
		if ok {
			resp.Result = &res
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleQuizRetry() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		if err := sess.RetryQuiz(); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess.Snapshot())
	}
}
