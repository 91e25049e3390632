package websocket

import (
	"encoding/json"

	"github.com/codeclash/codeclash-backend/internal/models"
)

// InboundType 클라이언트 요청 타입 (닫힌 집합)
type InboundType string

const (
	InboundCreateRoom          InboundType = "create_room"
	InboundJoinRoom            InboundType = "join_room"
	InboundLeaveRoom           InboundType = "leave_room"
	InboundStartMatchmaking    InboundType = "start_matchmaking"
	InboundCancelMatchmaking   InboundType = "cancel_matchmaking"
	InboundSendFriendRequest   InboundType = "send_friend_request"
	InboundAcceptFriendRequest InboundType = "accept_friend_request"
	InboundChallengeUser       InboundType = "challenge_user"
	InboundSubmitSolution      InboundType = "submit_solution"
	InboundUpdateStatus        InboundType = "update_status"
)

// InboundMessage 인바운드 메시지 엔벨로프
type InboundMessage struct {
	Type    InboundType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// 아웃바운드 이벤트 타입
const (
	EventConnectionEstablished = "connection_established"
	EventUserOnline            = "user_online"
	EventUserOffline           = "user_offline"
	EventUserStatusChanged     = "user_status_changed"
	EventRoomCreated           = "room_created"
	EventRoomUpdated           = "room_updated"
	EventRoomDeleted           = "room_deleted"
	EventRoomStarted           = "room_started"
	EventUserJoinedRoom        = "user_joined_room"
	EventUserLeftRoom          = "user_left_room"
	EventMatchmakingStarted    = "matchmaking_started"
	EventMatchmakingCancelled  = "matchmaking_cancelled"
	EventMatchmakingTimeout    = "matchmaking_timeout"
	EventMatchFound            = "match_found"
	EventMatchExpired          = "match_expired"
	EventMatchStarted          = "match_started"
	EventSolutionSubmitted     = "solution_submitted"
	EventMatchCompleted        = "match_completed"
	EventFriendRequestReceived = "friend_request_received"
	EventFriendRequestSent     = "friend_request_sent"
	EventFriendRequestAccepted = "friend_request_accepted"
	EventChallengeReceived     = "challenge_received"
	EventChallengeSent         = "challenge_sent"
	EventSessionExpired        = "session_expired"
	EventError                 = "error"
)

// CreateRoomRequest create_room 페이로드
type CreateRoomRequest struct {
	Name   string            `json:"name"`
	Config models.RoomConfig `json:"config"`
}

// JoinRoomRequest join_room 페이로드
type JoinRoomRequest struct {
	RoomID   string `json:"roomId"`
	Password string `json:"password,omitempty"`
}

// LeaveRoomRequest leave_room 페이로드
type LeaveRoomRequest struct {
	RoomID string `json:"roomId"`
}

// StartMatchmakingRequest start_matchmaking 페이로드
type StartMatchmakingRequest struct {
	Constraints models.MatchConstraints `json:"constraints"`
}

// FriendRequestPayload send_friend_request 페이로드
type FriendRequestPayload struct {
	TargetID string `json:"targetId"`
	Message  string `json:"message,omitempty"`
}

// AcceptFriendRequestPayload accept_friend_request 페이로드
type AcceptFriendRequestPayload struct {
	RequesterID string `json:"requesterId"`
}

// ChallengePayload challenge_user 페이로드
type ChallengePayload struct {
	TargetID string                 `json:"targetId"`
	Config   models.ChallengeConfig `json:"config"`
}

// SubmitSolutionRequest submit_solution 페이로드
type SubmitSolutionRequest struct {
	MatchID   string          `json:"matchId"`
	Payload   json.RawMessage `json:"payload"`
	ElapsedMs int64           `json:"elapsedMs"`
}

// UpdateStatusRequest update_status 페이로드
type UpdateStatusRequest struct {
	Status models.UserStatus `json:"status"`
}

// ErrorPayload 실패한 요청에 대한 구조화된 에러 알림
type ErrorPayload struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
