package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// SessionID: obrigatório para subscribe/unsubscribe
type ClientMsg struct {
	Type      string `json:"type"`      // subscribe | unsubscribe | ping
	SessionID string `json:"sessionId"` // requerido em subscribe/unsubscribe
}

// SlipUpdate é o snapshot do slip enviado aos clientes inscritos na sessão
type SlipUpdate struct {
	SessionID string      `json:"sessionId"`
	Payload   interface{} `json:"payload"`
}
