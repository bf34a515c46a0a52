package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/vyrodovalexey/media-catalog/internal/browse"
	"github.com/vyrodovalexey/media-catalog/internal/model"
)

// WebSocket configuration constants.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	eventBuffer    = 16
)

// Browse message types.
const (
	MessageChip   = "chip"
	MessageStatus = "status"
	MessageSort   = "sort"
	MessageReset  = "reset"
	MessageView   = "view"
	MessageError  = "error"
)

var errUnknownMessage = errors.New("unknown message type")

// ClientMessage is a browse event sent by the page.
type ClientMessage struct {
	Type      string `json:"type"`
	Dimension string `json:"dimension,omitempty"`
	Value     string `json:"value,omitempty"`
}

// ViewItem is the per-item state of a view, in display order.
type ViewItem struct {
	ID      string `json:"id"`
	Visible bool   `json:"visible"`
}

// ViewMessage is sent after every applied event and after every reload.
type ViewMessage struct {
	Type    string            `json:"type"`
	Visible int               `json:"visible"`
	Total   int               `json:"total"`
	Sort    string            `json:"sort"`
	Filters map[string]string `json:"filters"`
	Items   []ViewItem        `json:"items"`
}

// ErrorMessage reports a rejected client message.
type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// session is one browse connection. The writePump goroutine owns the
// orchestrator; readPump only forwards decoded events.
type session struct {
	id       string
	category model.Category
	conn     *websocket.Conn
	cancel   context.CancelFunc
	events   chan ClientMessage
	reload   chan struct{}
}

// WebSocketHandler serves browse sessions on /ws/{category}. Each session
// filters and sorts its own copy of the collection and is reloaded when a
// write lands in the same category.
type WebSocketHandler struct {
	upgrader websocket.Upgrader
	lister   Lister
	logger   *zap.Logger
	locale   language.Tag
	mu       sync.RWMutex
	sessions map[*session]struct{}
}

// NewWebSocketHandler creates a new WebSocketHandler instance. Upgrades are
// accepted from allowedOrigin and from clients that send no Origin header.
func NewWebSocketHandler(lister Lister, logger *zap.Logger, allowedOrigin string, locale language.Tag) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
		lister:   lister,
		logger:   logger,
		locale:   locale,
		sessions: make(map[*session]struct{}),
	}
}

// RegisterRoutes registers the WebSocket routes with the router.
func (h *WebSocketHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/ws/{category}", h.HandleWebSocket).Methods(http.MethodGet)
}

// HandleWebSocket loads the category and upgrades the connection.
//
//nolint:contextcheck // WebSocket sessions outlive the HTTP request context
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	c, err := model.ParseCategory(mux.Vars(r)["category"])
	if err != nil {
		writeError(w, http.StatusNotFound, msgUnknownCategory)
		return
	}

	records, err := h.lister.List(r.Context(), c)
	if err != nil {
		h.logger.Error("failed to load browse collection", zap.String("category", string(c)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		id:       uuid.New().String(),
		category: c,
		conn:     conn,
		cancel:   cancel,
		events:   make(chan ClientMessage, eventBuffer),
		reload:   make(chan struct{}, 1),
	}

	h.mu.Lock()
	h.sessions[s] = struct{}{}
	h.mu.Unlock()

	h.logger.Info("browse session opened",
		zap.String("session_id", s.id),
		zap.String("category", string(c)),
		zap.String("remote_addr", conn.RemoteAddr().String()),
	)

	go h.writePump(ctx, s, records)
	go h.readPump(ctx, s)
}

// Notify reloads every open session browsing c. It never blocks; a reload
// already pending absorbs further notifications.
func (h *WebSocketHandler) Notify(c model.Category) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.sessions {
		if s.category != c {
			continue
		}
		select {
		case s.reload <- struct{}{}:
		default:
		}
	}
}

// SessionCount returns the number of open sessions.
func (h *WebSocketHandler) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// readPump decodes client messages and hands them to the writePump.
func (h *WebSocketHandler) readPump(ctx context.Context, s *session) {
	defer func() {
		s.cancel()
		h.removeSession(s)
		if err := s.conn.Close(); err != nil {
			h.logger.Debug("error closing connection", zap.Error(err))
		}
	}()

	s.conn.SetReadLimit(maxMessageSize)
	if err := s.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		h.logger.Error("failed to set read deadline", zap.Error(err))
		return
	}

	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket read error", zap.String("session_id", s.id), zap.Error(err))
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.logger.Debug("malformed browse message", zap.String("session_id", s.id), zap.Error(err))
			msg = ClientMessage{}
		}

		select {
		case s.events <- msg:
		case <-ctx.Done():
			return
		}
	}
}

// writePump owns the session's orchestrator. It applies events in arrival
// order, reloads on notification and keeps the connection alive.
func (h *WebSocketHandler) writePump(ctx context.Context, s *session, records []model.Record) {
	pingTicker := time.NewTicker(pingPeriod)
	defer func() {
		pingTicker.Stop()
		s.cancel()
		// Unblocks readPump when the write side fails first.
		_ = s.conn.Close()
	}()

	orch := h.newOrchestrator(s.category, records)
	if err := h.send(s, viewOf(orch)); err != nil {
		h.logger.Debug("failed to send initial view", zap.Error(err))
		return
	}

	for {
		select {
		case <-ctx.Done():
			h.sendCloseMessage(s.conn)
			return
		case msg := <-s.events:
			if err := h.send(s, h.apply(orch, msg)); err != nil {
				h.logger.Debug("failed to send view", zap.Error(err))
				return
			}
		case <-s.reload:
			fresh, err := h.lister.List(ctx, s.category)
			if err != nil {
				h.logger.Error("failed to reload browse collection",
					zap.String("session_id", s.id),
					zap.Error(err),
				)
				continue
			}
			orch = h.rebuild(s.category, fresh, orch.Snapshot())
			if err := h.send(s, viewOf(orch)); err != nil {
				h.logger.Debug("failed to send view", zap.Error(err))
				return
			}
		case <-pingTicker.C:
			if err := h.sendPing(s.conn); err != nil {
				h.logger.Debug("failed to send ping", zap.Error(err))
				return
			}
		}
	}
}

// apply runs one client event against the orchestrator and returns the reply.
func (h *WebSocketHandler) apply(orch *browse.Orchestrator, msg ClientMessage) any {
	switch msg.Type {
	case MessageChip:
		orch.SelectChip(msg.Dimension, msg.Value)
	case MessageStatus:
		orch.ChangeStatus(msg.Value)
	case MessageSort:
		orch.ChangeSort(msg.Value)
	case MessageReset:
		orch.Reset()
	default:
		return ErrorMessage{Type: MessageError, Error: errUnknownMessage.Error() + ": " + msg.Type}
	}
	return viewOf(orch)
}

func (h *WebSocketHandler) newOrchestrator(c model.Category, records []model.Record) *browse.Orchestrator {
	views := browse.NewRecordViews(records)
	return browse.New(browse.ItemViews(views), browse.Dimensions(c), browse.WithLocale(h.locale))
}

// rebuild replaces the collection and re-applies the previous filters and sort.
func (h *WebSocketHandler) rebuild(c model.Category, records []model.Record, prev browse.Snapshot) *browse.Orchestrator {
	orch := h.newOrchestrator(c, records)
	for dim, value := range prev.Filters {
		orch.SelectChip(dim, value)
	}
	orch.ChangeSort(prev.Sort.String())
	return orch
}

func viewOf(orch *browse.Orchestrator) ViewMessage {
	snap := orch.Snapshot()
	items := orch.Items()

	msg := ViewMessage{
		Type:    MessageView,
		Visible: snap.Visible,
		Total:   snap.Total,
		Sort:    snap.Sort.String(),
		Filters: snap.Filters,
		Items:   make([]ViewItem, 0, len(items)),
	}
	for _, item := range items {
		vi := ViewItem{ID: item.Field(model.FieldID)}
		if rv, ok := item.(*browse.RecordView); ok {
			vi.Visible = rv.Visible
		}
		msg.Items = append(msg.Items, vi)
	}
	return msg
}

func (h *WebSocketHandler) send(s *session, msg any) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteJSON(msg)
}

// sendPing sends a ping message to the connection.
func (h *WebSocketHandler) sendPing(conn *websocket.Conn) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.PingMessage, nil)
}

// sendCloseMessage sends a close message to the connection.
func (h *WebSocketHandler) sendCloseMessage(conn *websocket.Conn) {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		h.logger.Debug("failed to set write deadline for close", zap.Error(err))
		return
	}

	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "server shutting down")
	if err := conn.WriteMessage(websocket.CloseMessage, closeMsg); err != nil {
		h.logger.Debug("failed to send close message", zap.Error(err))
	}
}

// removeSession removes a session from the sessions map.
func (h *WebSocketHandler) removeSession(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.sessions[s]; exists {
		s.cancel()
		delete(h.sessions, s)
		h.logger.Info("browse session closed", zap.String("session_id", s.id))
	}
}

// CloseAllConnections closes all active browse sessions.
func (h *WebSocketHandler) CloseAllConnections() {
	h.mu.Lock()
	sessions := make([]*session, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	// Cancelling first lets each writePump send its close frame.
	for _, s := range sessions {
		s.cancel()
	}

	time.Sleep(100 * time.Millisecond)

	h.mu.Lock()
	for s := range h.sessions {
		if err := s.conn.Close(); err != nil {
			h.logger.Debug("error closing connection", zap.Error(err))
		}
		delete(h.sessions, s)
	}
	h.mu.Unlock()

	h.logger.Info("all browse sessions closed")
}
