package hub

import (
	"context"

	"go.uber.org/zap"

	"github.com/DoyleJ11/leaderboard-graph/internal/types"
)

type HubMsg interface{ isHubMsg() }

// Join registers a render client. The latest frame, if any, is sent right away.
type Join struct {
	ClientID string
	Outbox   chan types.Frame
}

type Leave struct {
	ClientID string
}

type Broadcast struct {
	Frame types.Frame
}

type GetStats struct {
	Reply chan Stats
}

type ShutdownHub struct{}

type Stats struct {
	Clients int
	Frames  int
	Dropped int
}

func (Join) isHubMsg()        {}
func (Leave) isHubMsg()       {}
func (Broadcast) isHubMsg()   {}
func (GetStats) isHubMsg()    {}
func (ShutdownHub) isHubMsg() {}

// Hub fans frames out to render clients.
type Hub struct {
	inbox   chan HubMsg
	clients map[string]chan types.Frame
	last    *types.Frame
	stats   Stats
	ctx     context.Context
	cancel  context.CancelFunc
	log     *zap.Logger
}

func NewHub(parent context.Context, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		clients: make(map[string]chan types.Frame),
		ctx:     ctx,
		cancel:  cancel,
		log:     log,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Publish hands a frame to the hub. It gives up if the hub has stopped.
func (h *Hub) Publish(f types.Frame) {
	select {
	case h.inbox <- Broadcast{Frame: f}:
	case <-h.ctx.Done():
	}
}

func (h *Hub) Done() <-chan struct{} { return h.ctx.Done() }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Join:
				if old, ok := h.clients[msg.ClientID]; ok {
					close(old)
				}
				h.clients[msg.ClientID] = msg.Outbox
				if h.last != nil {
					select {
					case msg.Outbox <- *h.last:
					default:
					}
				}
				h.log.Debug("client joined", zap.String("client", msg.ClientID), zap.Int("clients", len(h.clients)))

			case Leave:
				if ch, ok := h.clients[msg.ClientID]; ok {
					close(ch)
					delete(h.clients, msg.ClientID)
				}

			case Broadcast:
				f := msg.Frame
				h.last = &f
				h.stats.Frames++
				h.broadcast(f)

			case GetStats:
				s := h.stats
				s.Clients = len(h.clients)
				msg.Reply <- s

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) broadcast(f types.Frame) {
	for id, ch := range h.clients {
		select {
		case ch <- f:
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(h.clients, id)
			h.stats.Dropped++
			h.log.Info("dropped slow client", zap.String("client", id))
		}
	}
}

func (h *Hub) shutdown() {
	for id, ch := range h.clients {
		close(ch)
		delete(h.clients, id)
	}
	h.cancel()
}
