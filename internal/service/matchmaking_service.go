package service

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/codeclash/codeclash-backend/internal/models"
	"github.com/codeclash/codeclash-backend/internal/websocket"
	"github.com/codeclash/codeclash-backend/pkg/timers"
)

// MatchmakingService 스킬 기반 매치메이킹 대기열
//
// 등록 즉시 탐욕적 first-fit 페어링을 시도하고, 실패하면 탐색
// 타임아웃을 무장한다. 주기 스윕은 타이머 미발화에 대비한 안전망이다.
type MatchmakingService struct {
	mu      sync.Mutex
	tickets map[string]*models.MatchmakingTicket // userID -> ticket
	order   []string                             // 등록 순서 (first-fit 결정성)

	presence     *PresenceRegistry
	matchService *MatchService
	broadcaster  Broadcaster
	timers       *timers.Registry

	searchTimeout time.Duration
	sweepInterval time.Duration
	maxRatingDiff int

	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
	runMu    sync.Mutex

	logger *zap.Logger
}

// NewMatchmakingService MatchmakingService 생성
func NewMatchmakingService(
	presence *PresenceRegistry,
	matchService *MatchService,
	broadcaster Broadcaster,
	timerRegistry *timers.Registry,
	searchTimeout time.Duration,
	sweepInterval time.Duration,
	maxRatingDiff int,
	logger *zap.Logger,
) *MatchmakingService {
	return &MatchmakingService{
		tickets:       make(map[string]*models.MatchmakingTicket),
		presence:      presence,
		matchService:  matchService,
		broadcaster:   broadcaster,
		timers:        timerRegistry,
		searchTimeout: searchTimeout,
		sweepInterval: sweepInterval,
		maxRatingDiff: maxRatingDiff,
		stopChan:      make(chan struct{}),
		logger:        logger,
	}
}

// Start 만료 스윕 루프 시작
func (s *MatchmakingService) Start() {
	s.runMu.Lock()
	if s.running {
		s.runMu.Unlock()
		return
	}
	s.running = true
	s.runMu.Unlock()

	s.logger.Info("Starting matchmaking sweep loop",
		zap.Duration("interval", s.sweepInterval))

	s.wg.Add(1)
	go s.sweepLoop()
}

// Stop 스윕 루프 중지
func (s *MatchmakingService) Stop() {
	s.runMu.Lock()
	if !s.running {
		s.runMu.Unlock()
		return
	}
	s.running = false
	s.runMu.Unlock()

	close(s.stopChan)
	s.wg.Wait()
	s.logger.Info("Matchmaking sweep loop stopped")
}

// sweepLoop 주기적으로 마감 지난 티켓 정리
func (s *MatchmakingService) sweepLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweepExpired()
		case <-s.stopChan:
			return
		}
	}
}

// Enqueue 탐색 요청 등록 및 즉시 페어링 시도
func (s *MatchmakingService) Enqueue(user *models.User, constraints models.MatchConstraints) error {
	if s.presence.Status(user.ID) == models.StatusInMatch {
		return ErrBusy
	}

	ticket := &models.MatchmakingTicket{
		User:        user,
		Constraints: constraints,
		QueuedAt:    time.Now(),
		Status:      models.TicketStatusSearching,
	}

	s.mu.Lock()
	if _, exists := s.tickets[user.ID]; exists {
		s.mu.Unlock()
		return ErrAlreadyQueued
	}

	opponent := s.findOpponentLocked(ticket)
	if opponent != nil {
		// 양쪽 모두 큐에서 제거
		s.removeLocked(opponent.User.ID)
		ticket.Status = models.TicketStatusFound
		opponent.Status = models.TicketStatusFound
		s.mu.Unlock()

		s.timers.Cancel("mm:" + opponent.User.ID)

		s.logger.Info("Matchmaking pair found",
			zap.String("user1", user.ID),
			zap.String("user2", opponent.User.ID),
			zap.Int("ratingDiff", abs(user.Rating-opponent.User.Rating)))

		s.matchService.Create(user, opponent.User, constraints)
		return nil
	}

	s.tickets[user.ID] = ticket
	s.order = append(s.order, user.ID)
	s.mu.Unlock()

	s.logger.Info("Matchmaking started",
		zap.String("userId", user.ID),
		zap.Int("rating", user.Rating))

	s.broadcaster.SendToUser(user.ID, websocket.EventMatchmakingStarted, ticket.Public())

	s.timers.Schedule("mm:"+user.ID, s.searchTimeout, func() {
		s.expire(user.ID)
	})

	return nil
}

// findOpponentLocked 등록 순서대로 적합한 첫 상대 탐색 (s.mu 보유 필요)
//
// 적합 조건: 양쪽 모두 in_match가 아니고, 레이팅 차가 한도 이내이며,
// 서로의 허용 범위 안에 양쪽 레이팅이 모두 들어간다.
func (s *MatchmakingService) findOpponentLocked(ticket *models.MatchmakingTicket) *models.MatchmakingTicket {
	for _, userID := range s.order {
		candidate, ok := s.tickets[userID]
		if !ok || candidate.Status != models.TicketStatusSearching {
			continue
		}
		if s.suitable(ticket, candidate) {
			return candidate
		}
	}
	return nil
}

// suitable 페어링 적합성 판정
//
// s.mu를 쥔 채 프레즌스를 조회한다. PresenceRegistry는 리프 락이라
// (락을 쥔 채 다른 서비스를 호출하지 않음) 순환이 생기지 않는다.
// 프레즌스에 콜아웃을 추가하게 되면 이 경로부터 재검토할 것.
func (s *MatchmakingService) suitable(a, b *models.MatchmakingTicket) bool {
	if s.presence.Status(a.User.ID) == models.StatusInMatch ||
		s.presence.Status(b.User.ID) == models.StatusInMatch {
		return false
	}
	if abs(a.User.Rating-b.User.Rating) > s.maxRatingDiff {
		return false
	}
	// 상호 범위 검사: 각자의 레이팅이 상대의 허용 범위 안이어야 함
	return a.Constraints.RatingRange.Contains(b.User.Rating) &&
		b.Constraints.RatingRange.Contains(a.User.Rating)
}

// Cancel 탐색 취소
func (s *MatchmakingService) Cancel(userID string) error {
	s.mu.Lock()
	_, exists := s.tickets[userID]
	if !exists {
		s.mu.Unlock()
		return ErrNotQueued
	}
	s.removeLocked(userID)
	s.mu.Unlock()

	s.timers.Cancel("mm:" + userID)

	s.logger.Info("Matchmaking cancelled", zap.String("userId", userID))

	s.broadcaster.SendToUser(userID, websocket.EventMatchmakingCancelled, struct{}{})
	return nil
}

// expire 탐색 타임아웃 처리
func (s *MatchmakingService) expire(userID string) {
	s.mu.Lock()
	ticket, exists := s.tickets[userID]
	if !exists || ticket.Status != models.TicketStatusSearching {
		s.mu.Unlock()
		return
	}
	ticket.Status = models.TicketStatusExpired
	s.removeLocked(userID)
	s.mu.Unlock()

	s.logger.Info("Matchmaking timed out", zap.String("userId", userID))

	s.broadcaster.SendToUser(userID, websocket.EventMatchmakingTimeout, ticket.Public())
}

// sweepExpired 마감 지난 티켓 일괄 정리 (타이머 안전망)
func (s *MatchmakingService) sweepExpired() {
	now := time.Now()

	s.mu.Lock()
	var expired []*models.MatchmakingTicket
	for userID, ticket := range s.tickets {
		if now.Sub(ticket.QueuedAt) >= s.searchTimeout {
			ticket.Status = models.TicketStatusExpired
			s.removeLocked(userID)
			expired = append(expired, ticket)
		}
	}
	s.mu.Unlock()

	for _, ticket := range expired {
		userID := ticket.User.ID
		s.timers.Cancel("mm:" + userID)
		s.logger.Info("Matchmaking entry swept", zap.String("userId", userID))
		s.broadcaster.SendToUser(userID, websocket.EventMatchmakingTimeout, ticket.Public())
	}
}

// Queued 대기열 등록 여부
func (s *MatchmakingService) Queued(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.tickets[userID]
	return exists
}

// removeLocked 대기열에서 제거 (s.mu 보유 필요)
func (s *MatchmakingService) removeLocked(userID string) {
	delete(s.tickets, userID)
	for i, id := range s.order {
		if id == userID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
