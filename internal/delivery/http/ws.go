package http

import (
	"log/slog"
	"net/http"
	"time"

	"parkpack/internal/delivery/http/helpers"
	"parkpack/internal/domain"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

// streamable whitelists the collections a client may subscribe to over the
// websocket.
var streamable = map[domain.Collection]bool{
	domain.CollectionPresences:   true,
	domain.CollectionEvents:      true,
	domain.CollectionRSVPs:       true,
	domain.CollectionVotes:       true,
	domain.CollectionFriendships: true,
	domain.CollectionPhotos:      true,
	domain.CollectionReviews:     true,
	domain.CollectionMessages:    true,
}

// WSHandler streams change-feed notifications to clients as JSON frames.
type WSHandler struct {
	Logger   *slog.Logger
	Feed     domain.ChangeFeed
	upgrader websocket.Upgrader
}

func NewWSHandler(logger *slog.Logger, feed domain.ChangeFeed, allowedOrigins []string) *WSHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return &WSHandler{
		Logger: logger,
		Feed:   feed,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

// Serve godoc
// @Summary Stream change notifications
// @Description Upgrades to a websocket and forwards change notifications for one collection, optionally filtered by key. Frames are reload triggers; they carry no row data.
// @Tags realtime
// @Param collection query string true "Collection name"
// @Param key query string false "Grouping key filter"
// @Router /ws [get]
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	collection := domain.Collection(r.URL.Query().Get("collection"))
	if !streamable[collection] {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unknown collection")
		return
	}
	sub, err := h.Feed.Subscribe(collection, r.URL.Query().Get("key"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "subscribe failed")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		sub.Close()
		return
	}

	go h.writeLoop(conn, sub)
	h.readLoop(conn)
	sub.Close()
}

// readLoop drains client frames so pongs and close frames are processed. Any
// read error means the client is gone.
func (h *WSHandler) readLoop(conn *websocket.Conn) {
	defer conn.Close()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *WSHandler) writeLoop(conn *websocket.Conn, sub domain.Subscription) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()
	for {
		select {
		case change, ok := <-sub.Changes():
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(wsWriteWait))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(change); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
