package service

import (
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/codeclash/codeclash-backend/internal/models"
	"github.com/codeclash/codeclash-backend/internal/websocket"
)

// Coordinator 실시간 이벤트 진입점
//
// websocket.Handler 구현체로, 인바운드 메시지를 각 서비스 연산으로
// 디스패치하고 실패를 구조화된 error 이벤트로 되돌린다. 에러는 해당
// 연결에만 보고되며 코디네이터를 중단시키지 않는다.
type Coordinator struct {
	presence    *PresenceRegistry
	rooms       *RoomService
	matchmaking *MatchmakingService
	matches     *MatchService
	social      *SocialService
	broadcaster Broadcaster
	logger      *zap.Logger
}

// NewCoordinator Coordinator 생성
func NewCoordinator(
	presence *PresenceRegistry,
	rooms *RoomService,
	matchmaking *MatchmakingService,
	matches *MatchService,
	social *SocialService,
	broadcaster Broadcaster,
	logger *zap.Logger,
) *Coordinator {
	return &Coordinator{
		presence:    presence,
		rooms:       rooms,
		matchmaking: matchmaking,
		matches:     matches,
		social:      social,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// connectionSnapshot connection_established 페이로드
type connectionSnapshot struct {
	Self        models.PublicProfile `json:"self"`
	OnlineUsers []models.OnlineUser  `json:"onlineUsers"`
	Rooms       []models.RoomPublic  `json:"rooms"`
}

// OnConnect 인증된 연결 admit: 프레즌스 등록, 접속 알림, 스냅샷 전달
func (c *Coordinator) OnConnect(user *models.User) {
	entry := c.presence.Admit(user)

	c.broadcaster.Broadcast(websocket.EventUserOnline, entry.Public())

	c.broadcaster.SendToUser(user.ID, websocket.EventConnectionEstablished, connectionSnapshot{
		Self:        user.Public(),
		OnlineUsers: c.presence.ListOnline(),
		Rooms:       c.rooms.List(),
	})
}

// OnDisconnect 연결 해제 캐스케이드
//
// 큐 취소 → 소속 방 전부 퇴장 → 프레즌스 제거 → 오프라인 알림 순서.
func (c *Coordinator) OnDisconnect(user *models.User) {
	if err := c.matchmaking.Cancel(user.ID); err != nil && !errors.Is(err, ErrNotQueued) {
		c.logger.Warn("Failed to cancel matchmaking on disconnect",
			zap.String("userId", user.ID),
			zap.Error(err))
	}

	c.rooms.LeaveAll(user.ID)

	if entry := c.presence.Remove(user.ID); entry != nil {
		c.broadcaster.Broadcast(websocket.EventUserOffline, entry.Public())
	}
}

// OnMessage 인바운드 메시지 디스패치 (닫힌 타입 집합)
func (c *Coordinator) OnMessage(user *models.User, msg websocket.InboundMessage) {
	var err error

	switch msg.Type {
	case websocket.InboundCreateRoom:
		err = c.handleCreateRoom(user, msg.Payload)
	case websocket.InboundJoinRoom:
		err = c.handleJoinRoom(user, msg.Payload)
	case websocket.InboundLeaveRoom:
		err = c.handleLeaveRoom(user, msg.Payload)
	case websocket.InboundStartMatchmaking:
		err = c.handleStartMatchmaking(user, msg.Payload)
	case websocket.InboundCancelMatchmaking:
		err = c.matchmaking.Cancel(user.ID)
	case websocket.InboundSendFriendRequest:
		err = c.handleSendFriendRequest(user, msg.Payload)
	case websocket.InboundAcceptFriendRequest:
		err = c.handleAcceptFriendRequest(user, msg.Payload)
	case websocket.InboundChallengeUser:
		err = c.handleChallengeUser(user, msg.Payload)
	case websocket.InboundSubmitSolution:
		err = c.handleSubmitSolution(user, msg.Payload)
	case websocket.InboundUpdateStatus:
		err = c.handleUpdateStatus(user, msg.Payload)
	default:
		err = ErrInvalidInput
	}

	if err != nil {
		c.sendError(user.ID, string(msg.Type), err)
	}
}

func (c *Coordinator) handleCreateRoom(user *models.User, payload json.RawMessage) error {
	var req websocket.CreateRoomRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return ErrInvalidInput
	}
	_, err := c.rooms.Create(user, req.Name, req.Config)
	return err
}

func (c *Coordinator) handleJoinRoom(user *models.User, payload json.RawMessage) error {
	var req websocket.JoinRoomRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return ErrInvalidInput
	}
	_, err := c.rooms.Join(user, req.RoomID, req.Password)
	return err
}

func (c *Coordinator) handleLeaveRoom(user *models.User, payload json.RawMessage) error {
	var req websocket.LeaveRoomRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return ErrInvalidInput
	}
	return c.rooms.Leave(user.ID, req.RoomID)
}

func (c *Coordinator) handleStartMatchmaking(user *models.User, payload json.RawMessage) error {
	var req websocket.StartMatchmakingRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return ErrInvalidInput
	}
	return c.matchmaking.Enqueue(user, req.Constraints)
}

func (c *Coordinator) handleSendFriendRequest(user *models.User, payload json.RawMessage) error {
	var req websocket.FriendRequestPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return ErrInvalidInput
	}
	return c.social.SendFriendRequest(user, req.TargetID, req.Message)
}

func (c *Coordinator) handleAcceptFriendRequest(user *models.User, payload json.RawMessage) error {
	var req websocket.AcceptFriendRequestPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return ErrInvalidInput
	}
	return c.social.AcceptFriendRequest(user, req.RequesterID)
}

func (c *Coordinator) handleChallengeUser(user *models.User, payload json.RawMessage) error {
	var req websocket.ChallengePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return ErrInvalidInput
	}
	return c.social.SendChallenge(user, req.TargetID, req.Config)
}

func (c *Coordinator) handleSubmitSolution(user *models.User, payload json.RawMessage) error {
	var req websocket.SubmitSolutionRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return ErrInvalidInput
	}
	return c.matches.Submit(user.ID, req.MatchID, req.Payload, req.ElapsedMs)
}

// handleUpdateStatus online/away 전환만 허용 (in_match는 매치 수명 관리 전용)
func (c *Coordinator) handleUpdateStatus(user *models.User, payload json.RawMessage) error {
	var req websocket.UpdateStatusRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return ErrInvalidInput
	}
	if req.Status != models.StatusOnline && req.Status != models.StatusAway {
		return ErrInvalidStatus
	}
	if err := c.presence.UpdateStatus(user.ID, req.Status); err != nil {
		return err
	}

	if entry, ok := c.presence.Get(user.ID); ok {
		c.broadcaster.Broadcast(websocket.EventUserStatusChanged, entry.Public())
	}
	return nil
}

// sendError 실패를 요청자에게만 구조화된 에러 이벤트로 보고
func (c *Coordinator) sendError(userID, op string, err error) {
	c.logger.Debug("Operation failed",
		zap.String("userId", userID),
		zap.String("op", op),
		zap.Error(err))

	c.broadcaster.SendToUser(userID, websocket.EventError, websocket.ErrorPayload{
		Message: err.Error(),
		Details: op,
	})
}
