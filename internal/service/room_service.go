package service

import (
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/codeclash/codeclash-backend/internal/models"
	"github.com/codeclash/codeclash-backend/internal/websocket"
	"github.com/codeclash/codeclash-backend/pkg/timers"
)

const (
	roomNameMaxLen = 50

	minTimeLimit  = 5
	maxTimeLimit  = 60
	minMaxPlayers = 2
	maxMaxPlayers = 8
)

// RoomService 방 레지스트리: 생성/참가/퇴장/삭제 및 상태 전이
type RoomService struct {
	mu    sync.RWMutex
	rooms map[string]*models.Room

	presence    *PresenceRegistry
	broadcaster Broadcaster
	timers      *timers.Registry
	startDelay  time.Duration
	logger      *zap.Logger
}

// NewRoomService RoomService 생성
func NewRoomService(
	presence *PresenceRegistry,
	broadcaster Broadcaster,
	timerRegistry *timers.Registry,
	startDelay time.Duration,
	logger *zap.Logger,
) *RoomService {
	return &RoomService{
		rooms:       make(map[string]*models.Room),
		presence:    presence,
		broadcaster: broadcaster,
		timers:      timerRegistry,
		startDelay:  startDelay,
		logger:      logger,
	}
}

// Create 방 생성 (이름 검증, 설정 클램핑, 비공개 방 비밀번호 해싱)
func (s *RoomService) Create(owner *models.User, name string, cfg models.RoomConfig) (*models.Room, error) {
	// 이름 길이는 바이트가 아니라 문자(룬) 수 기준
	if name == "" || utf8.RuneCountInString(name) > roomNameMaxLen {
		return nil, ErrInvalidRoomName
	}

	cfg.TimeLimit = clamp(cfg.TimeLimit, minTimeLimit, maxTimeLimit)
	cfg.MaxPlayers = clamp(cfg.MaxPlayers, minMaxPlayers, maxMaxPlayers)

	var passwordHash string
	if cfg.IsPrivate && cfg.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash room password: %w", err)
		}
		passwordHash = string(hash)
	}
	cfg.Password = "" // 평문은 보관하지 않음

	room := &models.Room{
		ID:           uuid.NewString(),
		Name:         name,
		OwnerID:      owner.ID,
		Members:      []models.PublicProfile{owner.Public()},
		Config:       cfg,
		PasswordHash: passwordHash,
		Status:       models.RoomStatusWaiting,
		CreatedAt:    time.Now(),
	}

	s.mu.Lock()
	s.rooms[room.ID] = room
	pub := room.Public()
	s.mu.Unlock()

	s.logger.Info("Room created",
		zap.String("roomId", room.ID),
		zap.String("ownerId", owner.ID),
		zap.Int("maxPlayers", cfg.MaxPlayers))

	s.broadcaster.Broadcast(websocket.EventRoomCreated, pub)

	return room, nil
}

// Join 방 참가
//
// 정원이 채워지면 starting으로 전이하고, 시작 지연 후 in_progress가 된다.
func (s *RoomService) Join(user *models.User, roomID, password string) (*models.Room, error) {
	s.mu.Lock()

	room, ok := s.rooms[roomID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrRoomNotFound
	}

	if room.Config.IsPrivate && room.PasswordHash != "" {
		if bcrypt.CompareHashAndPassword([]byte(room.PasswordHash), []byte(password)) != nil {
			s.mu.Unlock()
			return nil, ErrInvalidPassword
		}
	}

	if room.HasMember(user.ID) {
		s.mu.Unlock()
		return nil, ErrAlreadyInRoom
	}

	if len(room.Members) >= room.Config.MaxPlayers {
		s.mu.Unlock()
		return nil, ErrRoomFull
	}

	room.Members = append(room.Members, user.Public())

	full := len(room.Members) == room.Config.MaxPlayers
	if full && room.Status == models.RoomStatusWaiting {
		room.Status = models.RoomStatusStarting
	}

	memberIDs := memberIDs(room)
	pub := room.Public()
	s.mu.Unlock()

	s.logger.Info("User joined room",
		zap.String("roomId", roomID),
		zap.String("userId", user.ID),
		zap.Int("members", len(pub.Players)))

	s.broadcaster.SendToUsers(memberIDs, websocket.EventUserJoinedRoom, joinLeavePayload{
		RoomID: roomID,
		User:   user.Public(),
	})
	s.broadcaster.Broadcast(websocket.EventRoomUpdated, pub)

	if full && pub.Status == models.RoomStatusStarting {
		s.timers.Schedule("room-start:"+roomID, s.startDelay, func() {
			s.beginRoom(roomID)
		})
	}

	return room, nil
}

// beginRoom 시작 지연 경과 후 in_progress 전이 (정원 미달이면 no-op)
func (s *RoomService) beginRoom(roomID string) {
	s.mu.Lock()

	room, ok := s.rooms[roomID]
	if !ok || room.Status != models.RoomStatusStarting {
		s.mu.Unlock()
		return
	}
	if len(room.Members) < room.Config.MaxPlayers {
		room.Status = models.RoomStatusWaiting
		s.mu.Unlock()
		return
	}

	room.Status = models.RoomStatusInProgress
	pub := room.Public()
	s.mu.Unlock()

	s.logger.Info("Room started", zap.String("roomId", roomID))

	s.broadcaster.Broadcast(websocket.EventRoomStarted, pub)
}

// Leave 방 퇴장
//
// 마지막 멤버가 나가면 방은 삭제된다. in_progress 중 2명 미만이 되면
// waiting으로 되돌린다.
func (s *RoomService) Leave(userID, roomID string) error {
	s.mu.Lock()

	room, ok := s.rooms[roomID]
	if !ok {
		s.mu.Unlock()
		return ErrRoomNotFound
	}

	removed := false
	for i, m := range room.Members {
		if m.ID == userID {
			room.Members = append(room.Members[:i], room.Members[i+1:]...)
			removed = true
			break
		}
	}
	if !removed {
		s.mu.Unlock()
		return nil
	}

	if len(room.Members) == 0 {
		delete(s.rooms, roomID)
		s.mu.Unlock()

		s.timers.Cancel("room-start:" + roomID)
		s.logger.Info("Room deleted", zap.String("roomId", roomID))
		s.broadcaster.Broadcast(websocket.EventRoomDeleted, roomRef{RoomID: roomID})
		return nil
	}

	if room.Status == models.RoomStatusStarting {
		// 시작 카운트다운 중 이탈: 대기로 복귀
		room.Status = models.RoomStatusWaiting
		s.timers.Cancel("room-start:" + roomID)
	}
	if room.Status == models.RoomStatusInProgress && len(room.Members) < 2 {
		room.Status = models.RoomStatusWaiting
	}

	memberIDs := memberIDs(room)
	pub := room.Public()
	s.mu.Unlock()

	s.logger.Info("User left room",
		zap.String("roomId", roomID),
		zap.String("userId", userID),
		zap.Int("members", len(pub.Players)))

	s.broadcaster.SendToUsers(memberIDs, websocket.EventUserLeftRoom, leftPayload{
		RoomID: roomID,
		UserID: userID,
	})
	s.broadcaster.Broadcast(websocket.EventRoomUpdated, pub)

	return nil
}

// LeaveAll 사용자가 속한 모든 방에서 퇴장 (연결 해제 시)
func (s *RoomService) LeaveAll(userID string) {
	s.mu.RLock()
	var roomIDs []string
	for id, room := range s.rooms {
		if room.HasMember(userID) {
			roomIDs = append(roomIDs, id)
		}
	}
	s.mu.RUnlock()

	for _, roomID := range roomIDs {
		if err := s.Leave(userID, roomID); err != nil {
			s.logger.Warn("Failed to evict user from room",
				zap.String("roomId", roomID),
				zap.String("userId", userID),
				zap.Error(err))
		}
	}
}

// Get 방 조회
func (s *RoomService) Get(roomID string) (*models.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	return room, ok
}

// List 전체 방 목록 프로젝션 (로비 스냅샷용)
func (s *RoomService) List() []models.RoomPublic {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]models.RoomPublic, 0, len(s.rooms))
	for _, room := range s.rooms {
		list = append(list, room.Public())
	}
	return list
}

type joinLeavePayload struct {
	RoomID string               `json:"roomId"`
	User   models.PublicProfile `json:"user"`
}

type leftPayload struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

type roomRef struct {
	RoomID string `json:"roomId"`
}

func memberIDs(room *models.Room) []string {
	ids := make([]string, len(room.Members))
	for i, m := range room.Members {
		ids[i] = m.ID
	}
	return ids
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
