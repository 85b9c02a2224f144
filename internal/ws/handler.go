package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/leaderboard-graph/internal/board"
	"github.com/DoyleJ11/leaderboard-graph/internal/hub"
	"github.com/DoyleJ11/leaderboard-graph/internal/types"
)

// Handler streams frames to one render client and forwards its pause, resume
// and focus requests to the board.
// originPatterns are extra hosts allowed besides the request's own.
func Handler(b *board.Board, h *hub.Hub, originPatterns []string, log *zap.Logger) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			log.Debug("ws accept", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan types.Frame, 8)
		clientID := uuid.NewString()

		h.Inbox() <- hub.Join{ClientID: clientID, Outbox: out}
		defer func() {
			select {
			case h.Inbox() <- hub.Leave{ClientID: clientID}:
			case <-h.Done():
			}
		}()

		// Writer goroutine. Focus replies share the connection, so every write
		// goes through here.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		replies := make(chan types.ServerMessage, 4)
		go func() {
			for {
				var msg types.ServerMessage
				select {
				case <-writeCtx.Done():
					return
				case f, ok := <-out:
					if !ok {
						// dropped by the hub as a slow client
						_ = conn.Close(websocket.StatusTryAgainLater, "too slow")
						return
					}
					msg = types.ServerMessage{Type: "Frame", Frame: &f}
				case msg = <-replies:
				}
				payload, _ := json.Marshal(msg)
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("ws read", zap.String("client", clientID), zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				reply(writeCtx, replies, types.ServerMessage{Type: "Error", Error: "bad json"})
				continue
			}

			switch cm.Type {
			case "Pause":
				b.Inbox() <- board.Pause{}
			case "Resume":
				b.Inbox() <- board.Resume{}
			case "Focus":
				focusReply := make(chan types.Focus, 1)
				b.Inbox() <- board.Nearest{X: cm.X, Y: cm.Y, Reply: focusReply}
				select {
				case focus := <-focusReply:
					reply(writeCtx, replies, types.ServerMessage{Type: "Focus", Focus: &focus})
				case <-r.Context().Done():
					return
				}
			default:
				reply(writeCtx, replies, types.ServerMessage{Type: "Error", Error: "unknown type"})
			}
		}
	}
}

func reply(ctx context.Context, replies chan<- types.ServerMessage, msg types.ServerMessage) {
	select {
	case replies <- msg:
	case <-ctx.Done():
	}
}
