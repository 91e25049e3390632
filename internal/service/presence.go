package service

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/codeclash/codeclash-backend/internal/models"
)

// PresenceRegistry 접속 사용자 레지스트리
//
// 사용자당 하나의 엔트리만 존재한다. 연결 핸들은 websocket 허브가
// 소유하며, 허브의 단일 연결 강제와 같은 사용자 ID로 짝을 이룬다.
//
// 이 락은 리프 락이다: 어떤 메서드도 락을 쥔 채 다른 서비스를
// 호출하지 않으며, 다른 서비스가 자기 락 안에서 조회해도 안전하다.
// 여기에 콜아웃을 추가하려면 호출부의 락 순서부터 재검토할 것.
type PresenceRegistry struct {
	mu      sync.RWMutex
	entries map[string]*models.PresenceEntry
	logger  *zap.Logger
}

// NewPresenceRegistry 레지스트리 생성
func NewPresenceRegistry(logger *zap.Logger) *PresenceRegistry {
	return &PresenceRegistry{
		entries: make(map[string]*models.PresenceEntry),
		logger:  logger,
	}
}

// Admit 인증 성공한 사용자 등록 (기존 엔트리는 새 스냅샷으로 대체)
func (p *PresenceRegistry) Admit(user *models.User) *models.PresenceEntry {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry := &models.PresenceEntry{
		User:     user,
		Status:   models.StatusOnline,
		LastSeen: time.Now(),
	}
	p.entries[user.ID] = entry

	p.logger.Info("User admitted",
		zap.String("userId", user.ID),
		zap.Int("online", len(p.entries)))

	return entry
}

// Remove 엔트리 제거 (제거된 엔트리 반환, 없으면 nil)
func (p *PresenceRegistry) Remove(userID string) *models.PresenceEntry {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[userID]
	if !ok {
		return nil
	}
	delete(p.entries, userID)

	p.logger.Info("User removed",
		zap.String("userId", userID),
		zap.Int("online", len(p.entries)))

	return entry
}

// UpdateStatus 상태 변경
func (p *PresenceRegistry) UpdateStatus(userID string, status models.UserStatus) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[userID]
	if !ok {
		return ErrUserNotFound
	}
	entry.Status = status
	entry.LastSeen = time.Now()
	return nil
}

// Status 현재 상태 (미접속이면 빈 문자열)
func (p *PresenceRegistry) Status(userID string) models.UserStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if entry, ok := p.entries[userID]; ok {
		return entry.Status
	}
	return ""
}

// Get 엔트리 조회
func (p *PresenceRegistry) Get(userID string) (*models.PresenceEntry, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entry, ok := p.entries[userID]
	return entry, ok
}

// IsOnline 접속 여부
func (p *PresenceRegistry) IsOnline(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	_, ok := p.entries[userID]
	return ok
}

// ListOnline 접속 사용자 목록 프로젝션 (ID 순 정렬, 출력 안정성)
func (p *PresenceRegistry) ListOnline() []models.OnlineUser {
	p.mu.RLock()
	defer p.mu.RUnlock()

	users := make([]models.OnlineUser, 0, len(p.entries))
	for _, entry := range p.entries {
		users = append(users, entry.Public())
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].ID < users[j].ID
	})
	return users
}
