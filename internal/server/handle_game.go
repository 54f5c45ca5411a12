package server

import "net/http"

type SelectCardRequest struct {
	CardID string `json:"cardId"`
}

func handleGameSelect() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SelectCardRequest
		if err := readJSON(r, &req); err != nil || req.CardID == "" {
			writeError(w, http.StatusBadRequest, "cardId is required")
			return
		}

		sess := sessionFrom(r)
		if err := sess.SelectCard(req.CardID); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess.Snapshot())
	}
}

func handleGameRestart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		if err := sess.RestartGame(); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess.Snapshot())
	}
}
