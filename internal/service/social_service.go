package service

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/codeclash/codeclash-backend/internal/models"
	"github.com/codeclash/codeclash-backend/internal/websocket"
)

// SocialService 친구 요청 / 도전장 릴레이
//
// 순수 중계 계층: 대상의 연결로 전달하고 발신자에게 확인을 되돌릴 뿐,
// 상태를 보관하지 않는다.
type SocialService struct {
	presence    *PresenceRegistry
	broadcaster Broadcaster
	logger      *zap.Logger
}

// NewSocialService SocialService 생성
func NewSocialService(presence *PresenceRegistry, broadcaster Broadcaster, logger *zap.Logger) *SocialService {
	return &SocialService{
		presence:    presence,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// SendFriendRequest 친구 요청 중계
func (s *SocialService) SendFriendRequest(from *models.User, targetID, message string) error {
	if err := s.validateTarget(from.ID, targetID); err != nil {
		return err
	}

	req := models.FriendRequest{
		ID:      uuid.NewString(),
		From:    from.Public(),
		ToID:    targetID,
		Message: message,
		SentAt:  time.Now(),
		Status:  models.RequestStatusPending,
	}

	s.logger.Info("Friend request relayed",
		zap.String("from", from.ID),
		zap.String("to", targetID))

	s.broadcaster.SendToUser(targetID, websocket.EventFriendRequestReceived, req)
	s.broadcaster.SendToUser(from.ID, websocket.EventFriendRequestSent, req)
	return nil
}

// AcceptFriendRequest 수락 통지 중계 (requesterID: 원 요청자)
func (s *SocialService) AcceptFriendRequest(actor *models.User, requesterID string) error {
	if err := s.validateTarget(actor.ID, requesterID); err != nil {
		return err
	}

	req := models.FriendRequest{
		ID:     uuid.NewString(),
		From:   actor.Public(),
		ToID:   requesterID,
		SentAt: time.Now(),
		Status: models.RequestStatusAccepted,
	}

	s.logger.Info("Friend request accepted",
		zap.String("actor", actor.ID),
		zap.String("requester", requesterID))

	s.broadcaster.SendToUser(requesterID, websocket.EventFriendRequestAccepted, req)
	s.broadcaster.SendToUser(actor.ID, websocket.EventFriendRequestAccepted, req)
	return nil
}

// SendChallenge 도전장 중계
func (s *SocialService) SendChallenge(from *models.User, targetID string, cfg models.ChallengeConfig) error {
	if err := s.validateTarget(from.ID, targetID); err != nil {
		return err
	}

	challenge := models.Challenge{
		ID:     uuid.NewString(),
		From:   from.Public(),
		ToID:   targetID,
		Config: cfg,
		SentAt: time.Now(),
	}

	s.logger.Info("Challenge relayed",
		zap.String("from", from.ID),
		zap.String("to", targetID))

	s.broadcaster.SendToUser(targetID, websocket.EventChallengeReceived, challenge)
	s.broadcaster.SendToUser(from.ID, websocket.EventChallengeSent, challenge)
	return nil
}

// validateTarget 자기 자신 금지 + 대상 접속 확인
func (s *SocialService) validateTarget(fromID, targetID string) error {
	if fromID == targetID {
		return ErrInvalidTarget
	}
	if !s.presence.IsOnline(targetID) {
		return ErrUserNotFound
	}
	return nil
}
