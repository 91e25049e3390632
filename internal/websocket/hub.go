package websocket

import (
	"sync"

	"go.uber.org/zap"

	"github.com/codeclash/codeclash-backend/internal/models"
)

// Handler 인바운드 이벤트를 처리하는 코디네이터 측 인터페이스
//
// 모든 콜백은 허브/클라이언트 고루틴에서 호출되며, 내부 상태 변경은
// 핸들러 구현이 소유한 뮤텍스로 직렬화된다.
type Handler interface {
	OnConnect(user *models.User)
	OnDisconnect(user *models.User)
	OnMessage(user *models.User, msg InboundMessage)
}

// Hub WebSocket 연결 관리 및 브로드캐스트
//
// 사용자당 살아있는 연결은 항상 하나다. 같은 사용자의 새 연결이
// 등록되면 기존 연결에 session_expired를 보내고 종료시킨다.
type Hub struct {
	// 사용자별 연결 저장 (userID -> *Client)
	clients map[string]*Client
	mu      sync.RWMutex

	// 등록/해제 채널
	register   chan *Client
	unregister chan *Client

	handler Handler
	logger  *zap.Logger
}

// Message 아웃바운드 메시지
type Message struct {
	Targets []string    `json:"-"` // 수신자 목록 (nil이면 전체 브로드캐스트)
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// NewHub Hub 생성
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// SetHandler 인바운드 핸들러 연결 (Run 호출 전에 설정)
func (h *Hub) SetHandler(handler Handler) {
	h.handler = handler
}

// Run Hub 실행 (등록/해제 직렬화)
//
// 메시지 전달은 이 루프를 거치지 않는다. 핸들러 콜백이 루프 안에서
// 전송을 일으키므로, 전달이 루프를 경유하면 루프가 자기 자신에게
// 보내다 멈출 수 있다.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

// registerClient 클라이언트 등록 (같은 사용자의 기존 연결은 대체)
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()

	if old, exists := h.clients[client.user.ID]; exists {
		// 기존 연결에 만료 알림 후 종료
		old.trySend(&Message{
			Type:    EventSessionExpired,
			Payload: ErrorPayload{Message: "session opened elsewhere"},
		})
		close(old.send)
		h.logger.Info("Superseded existing connection",
			zap.String("userId", client.user.ID))
	}

	h.clients[client.user.ID] = client
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("Client registered",
		zap.String("userId", client.user.ID),
		zap.Int("totalClients", total))

	if h.handler != nil {
		h.handler.OnConnect(client.user)
	}
}

// unregisterClient 클라이언트 해제
//
// 대체된 옛 연결의 해제 요청이 새 연결을 지우지 않도록 포인터를 비교한다.
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	current, exists := h.clients[client.user.ID]
	if !exists || current != client {
		h.mu.Unlock()
		return
	}

	delete(h.clients, client.user.ID)
	close(client.send)
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("Client unregistered",
		zap.String("userId", client.user.ID),
		zap.Int("totalClients", total))

	if h.handler != nil {
		h.handler.OnDisconnect(client.user)
	}
}

// broadcastMessage 메시지 전달 (전체 / 대상 목록)
//
// 호출자의 고루틴에서 동기적으로 팬아웃한다. 클라이언트별 송신은
// trySend라 블로킹하지 않으며, 허브 읽기 락만 잡는다.
func (h *Hub) broadcastMessage(message *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if message.Targets == nil {
		for _, client := range h.clients {
			h.deliver(client, message)
		}
		return
	}

	for _, userID := range message.Targets {
		if client, exists := h.clients[userID]; exists {
			h.deliver(client, message)
		}
	}
}

// deliver 단일 클라이언트에게 전달 (송신 버퍼가 가득 차면 연결 해제)
func (h *Hub) deliver(client *Client, message *Message) {
	if !client.trySend(message) {
		h.logger.Warn("Client send channel full, unregistering",
			zap.String("userId", client.user.ID))
		go func(c *Client) {
			h.unregister <- c
		}(client)
	}
}

// Broadcast 모든 사용자에게 메시지 전송
func (h *Hub) Broadcast(event string, payload interface{}) {
	h.broadcastMessage(&Message{Type: event, Payload: payload})
}

// SendToUser 특정 사용자에게 메시지 전송
func (h *Hub) SendToUser(userID string, event string, payload interface{}) {
	h.broadcastMessage(&Message{Targets: []string{userID}, Type: event, Payload: payload})
}

// SendToUsers 대상 목록에게 메시지 전송 (방/매치 스코프)
func (h *Hub) SendToUsers(userIDs []string, event string, payload interface{}) {
	h.broadcastMessage(&Message{Targets: userIDs, Type: event, Payload: payload})
}

// IsConnected 사용자 연결 여부
func (h *Hub) IsConnected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.clients[userID]
	return exists
}
