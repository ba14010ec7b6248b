package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/FACorreiaa/triply/internal/app/domain/search"
	"github.com/FACorreiaa/triply/internal/pkg/config"
)

const (
	liveWriteWait = 10 * time.Second
	// liveReadLimit caps one client frame. Queries are short place names.
	liveReadLimit = 4 << 10
)

// liveSearchMessage is one client frame: {"type":"query","query":"Lis"} or
// {"type":"clear"}.
type liveSearchMessage struct {
	Type  string `json:"type"`
	Query string `json:"query"`
}

// liveSearchEvent is one server frame. State is set for "state" events and
// Error for "error" events.
type liveSearchEvent struct {
	Type  string         `json:"type"`
	State *search.State  `json:"state,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// LiveSearchHandler runs one search controller per WebSocket connection so
// the client only sends keystrokes and renders whatever state comes back.
type LiveSearchHandler struct {
	*BaseHandler
	geocoder search.Geocoder
	opts     []search.Option
	upgrader websocket.Upgrader
}

func NewLiveSearchHandler(geocoder search.Geocoder, cfg config.SearchConfig, logger *zap.Logger) *LiveSearchHandler {
	return &LiveSearchHandler{
		BaseHandler: NewBaseHandler(logger),
		geocoder:    geocoder,
		opts: []search.Option{
			search.WithDebounceDelay(cfg.DebounceDelay),
			search.WithMinQueryLength(cfg.MinQueryLength),
			search.WithLimit(cfg.MaxResults),
		},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// CORS is already wide open for the REST routes.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Live GET /api/locations/live
func (h *LiveSearchHandler) Live(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already answered with an HTTP error.
		h.Logger.Debug("Live search upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(liveReadLimit)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	var writeMu sync.Mutex
	send := func(ev liveSearchEvent) {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
		if err := conn.WriteJSON(ev); err != nil {
			h.Logger.Debug("Live search write failed", zap.Error(err))
			cancel()
		}
	}

	ctrl := search.New(h.geocoder, h.Logger.Named("live_search"), append(h.opts, search.WithBaseContext(ctx))...)
	defer ctrl.Close()
	ctrl.Subscribe(func(s search.State) {
		send(liveSearchEvent{Type: "state", State: &s})
	})

	for ctx.Err() == nil {
		var msg liveSearchMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if errors.Is(err, websocket.ErrReadLimit) {
				h.Logger.Warn("Live search frame too large", zap.Int64("limit", liveReadLimit))
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.Logger.Debug("Live search connection closed", zap.Error(err))
			}
			return
		}

		switch msg.Type {
		case "query":
			ctrl.SetQuery(msg.Query)
		case "clear":
			ctrl.Clear()
		default:
			send(liveSearchEvent{Type: "error", Error: &ErrorResponse{
				Error:   "invalid_message",
				Message: `type must be "query" or "clear"`,
			}})
		}
	}
}
