package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codeclash/codeclash-backend/internal/models"
	"github.com/codeclash/codeclash-backend/internal/websocket"
	"github.com/codeclash/codeclash-backend/pkg/timers"
)

func newMatchFixture(t *testing.T, acceptance, completion time.Duration) (*MatchService, *fakeBroadcaster, *PresenceRegistry) {
	t.Helper()

	presence := NewPresenceRegistry(testLogger())
	broadcaster := &fakeBroadcaster{}
	registry := timers.NewRegistry()
	t.Cleanup(registry.StopAll)

	return NewMatchService(presence, broadcaster, registry, acceptance, completion, testLogger()), broadcaster, presence
}

func TestMatchService_CreateNotifiesBothPlayers(t *testing.T) {
	s, broadcaster, presence := newMatchFixture(t, time.Hour, time.Hour)
	a := newTestUser("a", 1200)
	b := newTestUser("b", 1300)
	presence.Admit(a)
	presence.Admit(b)

	match := s.Create(a, b, models.MatchConstraints{Mode: "duel", Difficulty: "medium"})

	require.Equal(t, models.MatchStatusWaitingAcceptance, match.Status)
	require.True(t, broadcaster.sentTo("a", websocket.EventMatchFound))
	require.True(t, broadcaster.sentTo("b", websocket.EventMatchFound))
	require.Equal(t, models.StatusInMatch, presence.Status("a"))
	require.Equal(t, models.StatusInMatch, presence.Status("b"))

	// 상대 프로필은 공개 프로젝션이어야 함
	found := broadcaster.ofType(websocket.EventMatchFound)
	payload, ok := found[0].Payload.(matchFoundPayload)
	require.True(t, ok)
	require.Equal(t, "b", payload.Opponent.ID)
}

func TestMatchService_AcceptanceTimeout(t *testing.T) {
	s, broadcaster, presence := newMatchFixture(t, 30*time.Millisecond, time.Hour)
	a := newTestUser("a", 1200)
	b := newTestUser("b", 1300)
	presence.Admit(a)
	presence.Admit(b)

	match := s.Create(a, b, models.MatchConstraints{})

	require.Eventually(t, func() bool {
		_, ok := s.Get(match.ID)
		return !ok
	}, time.Second, 5*time.Millisecond)

	// 승자 없이 종료, 프레즌스는 online으로 복원
	expired := broadcaster.ofType(websocket.EventMatchExpired)
	require.Len(t, expired, 1)
	pub, ok := expired[0].Payload.(models.MatchPublic)
	require.True(t, ok)
	require.Nil(t, pub.WinnerID)
	require.Equal(t, models.MatchStatusFinished, pub.Status)

	require.Equal(t, models.StatusOnline, presence.Status("a"))
	require.Equal(t, models.StatusOnline, presence.Status("b"))
}

func TestMatchService_FirstSubmissionStartsMatch(t *testing.T) {
	s, broadcaster, presence := newMatchFixture(t, 50*time.Millisecond, time.Hour)
	a := newTestUser("a", 1200)
	b := newTestUser("b", 1300)
	presence.Admit(a)
	presence.Admit(b)

	match := s.Create(a, b, models.MatchConstraints{})

	require.NoError(t, s.Submit("a", match.ID, json.RawMessage(`{"code":"x"}`), 1500))

	got, ok := s.Get(match.ID)
	require.True(t, ok)
	require.Equal(t, models.MatchStatusInProgress, got.Status)
	require.Len(t, got.Solutions, 1)

	require.Len(t, broadcaster.ofType(websocket.EventMatchStarted), 1)
	require.Len(t, broadcaster.ofType(websocket.EventSolutionSubmitted), 1)

	// 수락 타임아웃이 취소되었으므로 매치는 폐기되지 않는다
	time.Sleep(120 * time.Millisecond)
	_, ok = s.Get(match.ID)
	require.True(t, ok)
	require.Empty(t, broadcaster.ofType(websocket.EventMatchExpired))
}

func TestMatchService_CompletionAssignsWinner(t *testing.T) {
	s, broadcaster, presence := newMatchFixture(t, time.Hour, 30*time.Millisecond)
	a := newTestUser("a", 1200)
	b := newTestUser("b", 1300)
	presence.Admit(a)
	presence.Admit(b)

	match := s.Create(a, b, models.MatchConstraints{})

	require.NoError(t, s.Submit("b", match.ID, json.RawMessage(`{"code":"first"}`), 900))
	require.NoError(t, s.Submit("a", match.ID, json.RawMessage(`{"code":"second"}`), 1200))

	require.Eventually(t, func() bool {
		_, ok := s.Get(match.ID)
		return !ok
	}, time.Second, 5*time.Millisecond)

	completed := broadcaster.ofType(websocket.EventMatchCompleted)
	require.Len(t, completed, 1)
	payload, ok := completed[0].Payload.(matchCompletedPayload)
	require.True(t, ok)
	pub := payload.Match
	require.NotNil(t, pub.WinnerID)
	require.Equal(t, "b", *pub.WinnerID) // 최초 제출자가 승자
	require.Len(t, pub.Solutions, 2)

	// 레이팅 변동 추정값: 승자는 양수, 패자는 음수
	require.Positive(t, payload.RatingDeltas["b"])
	require.Negative(t, payload.RatingDeltas["a"])

	require.Equal(t, models.StatusOnline, presence.Status("a"))
	require.Equal(t, models.StatusOnline, presence.Status("b"))
}

func TestMatchService_SubmitErrors(t *testing.T) {
	s, _, presence := newMatchFixture(t, time.Hour, time.Hour)
	a := newTestUser("a", 1200)
	b := newTestUser("b", 1300)
	presence.Admit(a)
	presence.Admit(b)

	require.ErrorIs(t, s.Submit("a", "missing", nil, 0), ErrMatchNotFound)

	match := s.Create(a, b, models.MatchConstraints{})

	// 참가자가 아니면 매치가 보이지 않는다
	require.ErrorIs(t, s.Submit("c", match.ID, nil, 0), ErrMatchNotFound)

	// 이미 종료된 매치에는 제출 불가
	s.mu.Lock()
	match.Status = models.MatchStatusFinished
	s.mu.Unlock()
	require.ErrorIs(t, s.Submit("a", match.ID, nil, 0), ErrMatchNotInProgress)

	// 실패한 제출은 로그에 추가되지 않는다
	got, ok := s.Get(match.ID)
	require.True(t, ok)
	require.Empty(t, got.Solutions)
}
