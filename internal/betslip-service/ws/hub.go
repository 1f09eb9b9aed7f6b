package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub gerencia conexões WebSocket e assinaturas por sessão de bet slip
// subs: mapeia sessionID para o conjunto de conexões inscritas
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	subs     map[string]map[*conn]struct{}
}

// conn serializa escritas: gorilla não permite writers concorrentes na mesma conexão
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) write(msgType int, b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(msgType, b)
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		subs:     make(map[string]map[*conn]struct{}),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket
// Permite subscribe/unsubscribe em sessões e responde a pings
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &conn{ws: wsConn}
	defer wsConn.Close()

	for {
		var msg ClientMsg
		if err := wsConn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			if msg.SessionID == "" {
				continue
			}
			h.mu.Lock()
			if _, ok := h.subs[msg.SessionID]; !ok {
				h.subs[msg.SessionID] = make(map[*conn]struct{})
			}
			h.subs[msg.SessionID][c] = struct{}{}
			h.mu.Unlock()
			_ = c.write(websocket.TextMessage, []byte(`{"type":"subscribed"}`))
		case "unsubscribe":
			h.unsubscribe(msg.SessionID, c)
		case "ping":
			_ = c.write(websocket.TextMessage, []byte(`{"type":"pong"}`))
		}
	}
	// Remove a conexão de todas as assinaturas ao desconectar
	h.mu.Lock()
	for sess, set := range h.subs {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, sess)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) unsubscribe(session string, c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m, ok := h.subs[session]; ok {
		delete(m, c)
		if len(m) == 0 {
			delete(h.subs, session)
		}
	}
}

// Broadcast envia o snapshot para todos os clientes inscritos na sessão
func (h *Hub) Broadcast(update SlipUpdate) {
	h.mu.RLock()
	conns := make([]*conn, 0, len(h.subs[update.SessionID]))
	for c := range h.subs[update.SessionID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()
	if len(conns) == 0 {
		return
	}

	b, _ := json.Marshal(update)
	for _, c := range conns {
		_ = c.write(websocket.TextMessage, b)
	}
}

// Subscribers retorna quantas conexões acompanham a sessão
func (h *Hub) Subscribers(session string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[session])
}
