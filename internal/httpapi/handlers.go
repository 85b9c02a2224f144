package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/DoyleJ11/leaderboard-graph/internal/board"
	"github.com/DoyleJ11/leaderboard-graph/internal/types"
)

const replyTimeout = 2 * time.Second

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GetGraph returns the current frame.
func GetGraph(b *board.Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan types.Frame, 1)
		b.Inbox() <- board.GetState{Reply: reply}
		select {
		case f := <-reply:
			writeJSON(w, http.StatusOK, f)
		case <-time.After(replyTimeout):
			http.Error(w, "board not responding", http.StatusServiceUnavailable)
		case <-r.Context().Done():
		}
	}
}

func GetNearest(b *board.Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
		y, errY := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
		if errX != nil || errY != nil {
			http.Error(w, "x and y must be numbers", http.StatusBadRequest)
			return
		}

		reply := make(chan types.Focus, 1)
		b.Inbox() <- board.Nearest{X: x, Y: y, Reply: reply}
		select {
		case focus := <-reply:
			writeJSON(w, http.StatusOK, focus)
		case <-time.After(replyTimeout):
			http.Error(w, "board not responding", http.StatusServiceUnavailable)
		case <-r.Context().Done():
		}
	}
}

func Pause(b *board.Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.Inbox() <- board.Pause{}
		w.WriteHeader(http.StatusAccepted)
	}
}

func Resume(b *board.Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.Inbox() <- board.Resume{}
		w.WriteHeader(http.StatusAccepted)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
