package service

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/codeclash/codeclash-backend/internal/models"
	"github.com/codeclash/codeclash-backend/internal/websocket"
	"github.com/codeclash/codeclash-backend/pkg/timers"
)

const (
	defaultMatchTimeLimit = 30 // 분
	defaultProblemCount   = 1
)

// MatchService 페어링된 매치의 수명 관리
//
// 수락 타임아웃, 풀이 제출 수집, 완료 판정, 정리를 담당한다.
// 완료 판정은 고정 지연 휴리스틱이며 정답 채점은 외부 심판 파이프라인
// 소관이다.
type MatchService struct {
	mu      sync.Mutex
	matches map[string]*models.Match

	presence    *PresenceRegistry
	broadcaster Broadcaster
	timers      *timers.Registry
	ratings     *RatingEstimator

	acceptanceTimeout time.Duration
	completionDelay   time.Duration
	logger            *zap.Logger
}

// NewMatchService MatchService 생성
func NewMatchService(
	presence *PresenceRegistry,
	broadcaster Broadcaster,
	timerRegistry *timers.Registry,
	acceptanceTimeout time.Duration,
	completionDelay time.Duration,
	logger *zap.Logger,
) *MatchService {
	return &MatchService{
		matches:           make(map[string]*models.Match),
		presence:          presence,
		broadcaster:       broadcaster,
		timers:            timerRegistry,
		ratings:           NewRatingEstimator(),
		acceptanceTimeout: acceptanceTimeout,
		completionDelay:   completionDelay,
		logger:            logger,
	}
}

// Create 페어링된 두 사용자로 매치 생성
//
// waiting_acceptance 상태로 시작하며, 수락 타임아웃 내에 아무 행동이
// 없으면 승자 없이 종료된다.
func (s *MatchService) Create(p1, p2 *models.User, constraints models.MatchConstraints) *models.Match {
	match := &models.Match{
		ID:           uuid.NewString(),
		Player1:      p1,
		Player2:      p2,
		Mode:         constraints.Mode,
		Difficulty:   constraints.Difficulty,
		TimeLimit:    defaultMatchTimeLimit,
		ProblemCount: defaultProblemCount,
		Status:       models.MatchStatusWaitingAcceptance,
		CreatedAt:    time.Now(),
	}

	s.mu.Lock()
	s.matches[match.ID] = match
	pub := match.Public()
	s.mu.Unlock()

	// 매치 중에는 큐 진입 불가
	s.presence.UpdateStatus(p1.ID, models.StatusInMatch)
	s.presence.UpdateStatus(p2.ID, models.StatusInMatch)

	s.logger.Info("Match created",
		zap.String("matchId", match.ID),
		zap.String("player1", p1.ID),
		zap.String("player2", p2.ID),
		zap.Int("ratingDiff", abs(p1.Rating-p2.Rating)))

	// 각자에게 상대의 공개 프로필과 함께 통지
	s.broadcaster.SendToUser(p1.ID, websocket.EventMatchFound, matchFoundPayload{
		Match:    pub,
		Opponent: p2.Public(),
	})
	s.broadcaster.SendToUser(p2.ID, websocket.EventMatchFound, matchFoundPayload{
		Match:    pub,
		Opponent: p1.Public(),
	})

	s.timers.Schedule("match-accept:"+match.ID, s.acceptanceTimeout, func() {
		s.expireAcceptance(match.ID)
	})

	return match
}

// expireAcceptance 수락 타임아웃: 아직 waiting_acceptance면 승자 없이 폐기
func (s *MatchService) expireAcceptance(matchID string) {
	s.mu.Lock()

	match, ok := s.matches[matchID]
	if !ok || match.Status != models.MatchStatusWaitingAcceptance {
		s.mu.Unlock()
		return
	}

	match.Status = models.MatchStatusFinished
	delete(s.matches, matchID)
	pub := match.Public()
	playerIDs := match.PlayerIDs()
	s.mu.Unlock()

	s.restorePresence(playerIDs)

	s.logger.Info("Match expired without acceptance",
		zap.String("matchId", matchID))

	s.broadcaster.SendToUsers(playerIDs, websocket.EventMatchExpired, pub)
}

// Submit 풀이 제출
//
// 첫 제출이 waiting_acceptance 매치를 in_progress로 전이시킨다
// (명시적 수락 신호가 없는 프로토콜의 암묵 수락). 제출마다 완료 판정이
// 재예약된다.
func (s *MatchService) Submit(userID, matchID string, payload json.RawMessage, elapsedMs int64) error {
	s.mu.Lock()

	match, ok := s.matches[matchID]
	if !ok || !match.HasPlayer(userID) {
		s.mu.Unlock()
		return ErrMatchNotFound
	}
	if match.Status == models.MatchStatusFinished {
		s.mu.Unlock()
		return ErrMatchNotInProgress
	}

	started := false
	if match.Status == models.MatchStatusWaitingAcceptance {
		match.Status = models.MatchStatusInProgress
		started = true
	}

	solution := models.Solution{
		UserID:      userID,
		Payload:     payload,
		ElapsedMs:   elapsedMs,
		SubmittedAt: time.Now(),
	}
	match.Solutions = append(match.Solutions, solution)

	playerIDs := match.PlayerIDs()
	pub := match.Public()
	s.mu.Unlock()

	if started {
		s.timers.Cancel("match-accept:" + matchID)
		s.broadcaster.SendToUsers(playerIDs, websocket.EventMatchStarted, pub)
	}

	s.logger.Info("Solution submitted",
		zap.String("matchId", matchID),
		zap.String("userId", userID),
		zap.Int64("elapsedMs", elapsedMs))

	s.broadcaster.SendToUsers(playerIDs, websocket.EventSolutionSubmitted, solutionPayload{
		MatchID:   matchID,
		UserID:    userID,
		ElapsedMs: elapsedMs,
	})

	// 제출이 멎은 뒤 완료 판정 (제출마다 재예약)
	s.timers.Schedule("match-complete:"+matchID, s.completionDelay, func() {
		s.complete(matchID)
	})

	return nil
}

// complete 완료 판정: 가장 먼저 제출한 참가자를 승자로 선언하고 폐기
func (s *MatchService) complete(matchID string) {
	s.mu.Lock()

	match, ok := s.matches[matchID]
	if !ok || match.Status != models.MatchStatusInProgress {
		s.mu.Unlock()
		return
	}

	match.Status = models.MatchStatusFinished
	ratingDeltas := make(map[string]int)
	if len(match.Solutions) > 0 {
		winnerID := match.Solutions[0].UserID
		match.WinnerID = &winnerID

		winner, loser := match.Player1, match.Player2
		if winner.ID != winnerID {
			winner, loser = loser, winner
		}
		winnerDelta, loserDelta := s.ratings.Deltas(
			winner.Rating, winner.Level, loser.Rating, loser.Level)
		ratingDeltas[winner.ID] = winnerDelta
		ratingDeltas[loser.ID] = loserDelta
	}
	delete(s.matches, matchID)

	pub := match.Public()
	playerIDs := match.PlayerIDs()
	s.mu.Unlock()

	s.restorePresence(playerIDs)

	s.logger.Info("Match completed",
		zap.String("matchId", matchID),
		zap.Stringp("winnerId", pub.WinnerID))

	s.broadcaster.SendToUsers(playerIDs, websocket.EventMatchCompleted, matchCompletedPayload{
		Match:        pub,
		RatingDeltas: ratingDeltas,
	})
}

// Get 매치 조회
func (s *MatchService) Get(matchID string) (*models.Match, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	match, ok := s.matches[matchID]
	return match, ok
}

// restorePresence 참가자들의 상태를 online으로 복원 (접속 중인 경우만)
func (s *MatchService) restorePresence(playerIDs []string) {
	for _, id := range playerIDs {
		if s.presence.Status(id) == models.StatusInMatch {
			s.presence.UpdateStatus(id, models.StatusOnline)
		}
	}
}

type matchFoundPayload struct {
	Match    models.MatchPublic   `json:"match"`
	Opponent models.PublicProfile `json:"opponent"`
}

// matchCompletedPayload 완료 통지: 레이팅 변동치는 표시용 추정값이다
type matchCompletedPayload struct {
	Match        models.MatchPublic `json:"match"`
	RatingDeltas map[string]int     `json:"ratingDeltas,omitempty"`
}

type solutionPayload struct {
	MatchID   string `json:"matchId"`
	UserID    string `json:"userId"`
	ElapsedMs int64  `json:"elapsedMs"`
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
