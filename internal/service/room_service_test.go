package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codeclash/codeclash-backend/internal/models"
	"github.com/codeclash/codeclash-backend/internal/websocket"
	"github.com/codeclash/codeclash-backend/pkg/timers"
)

func newRoomFixture(t *testing.T, startDelay time.Duration) (*RoomService, *fakeBroadcaster, *PresenceRegistry) {
	t.Helper()

	presence := NewPresenceRegistry(testLogger())
	broadcaster := &fakeBroadcaster{}
	registry := timers.NewRegistry()
	t.Cleanup(registry.StopAll)

	return NewRoomService(presence, broadcaster, registry, startDelay, testLogger()), broadcaster, presence
}

func TestRoomService_CreateValidation(t *testing.T) {
	s, broadcaster, _ := newRoomFixture(t, time.Hour)
	owner := newTestUser("a", 1200)

	_, err := s.Create(owner, "", models.RoomConfig{})
	require.ErrorIs(t, err, ErrInvalidRoomName)

	_, err = s.Create(owner, strings.Repeat("x", 51), models.RoomConfig{})
	require.ErrorIs(t, err, ErrInvalidRoomName)

	// 길이 한도는 바이트가 아닌 문자 수: 멀티바이트 50자는 허용
	_, err = s.Create(owner, strings.Repeat("가", 50), models.RoomConfig{})
	require.NoError(t, err)

	_, err = s.Create(owner, strings.Repeat("가", 51), models.RoomConfig{})
	require.ErrorIs(t, err, ErrInvalidRoomName)

	room, err := s.Create(owner, "duel", models.RoomConfig{
		MaxPlayers: 100,
		TimeLimit:  1,
	})
	require.NoError(t, err)

	// 설정 클램핑
	require.Equal(t, 8, room.Config.MaxPlayers)
	require.Equal(t, 5, room.Config.TimeLimit)

	require.Equal(t, models.RoomStatusWaiting, room.Status)
	require.Len(t, room.Members, 1)
	require.Equal(t, "a", room.Members[0].ID)

	require.Len(t, broadcaster.ofType(websocket.EventRoomCreated), 1)
}

func TestRoomService_CreateHashesPassword(t *testing.T) {
	s, _, _ := newRoomFixture(t, time.Hour)
	owner := newTestUser("a", 1200)

	room, err := s.Create(owner, "secret duel", models.RoomConfig{
		MaxPlayers: 2,
		TimeLimit:  10,
		IsPrivate:  true,
		Password:   "hunter2",
	})
	require.NoError(t, err)
	require.NotEmpty(t, room.PasswordHash)
	require.NotEqual(t, "hunter2", room.PasswordHash)
	require.Empty(t, room.Config.Password)

	// 프로젝션에 비밀번호 관련 필드 없음
	pub := room.Public()
	require.True(t, pub.IsPrivate)
}

func TestRoomService_JoinErrors(t *testing.T) {
	s, _, _ := newRoomFixture(t, time.Hour)
	owner := newTestUser("a", 1200)

	_, err := s.Join(newTestUser("b", 1100), "missing", "")
	require.ErrorIs(t, err, ErrRoomNotFound)

	room, err := s.Create(owner, "private", models.RoomConfig{
		MaxPlayers: 3,
		TimeLimit:  10,
		IsPrivate:  true,
		Password:   "hunter2",
	})
	require.NoError(t, err)

	_, err = s.Join(newTestUser("b", 1100), room.ID, "wrong")
	require.ErrorIs(t, err, ErrInvalidPassword)

	_, err = s.Join(owner, room.ID, "hunter2")
	require.ErrorIs(t, err, ErrAlreadyInRoom)

	_, err = s.Join(newTestUser("b", 1100), room.ID, "hunter2")
	require.NoError(t, err)
	_, err = s.Join(newTestUser("c", 1150), room.ID, "hunter2")
	require.NoError(t, err)

	_, err = s.Join(newTestUser("d", 1250), room.ID, "hunter2")
	require.ErrorIs(t, err, ErrRoomFull)

	// 정원 불변식
	got, ok := s.Get(room.ID)
	require.True(t, ok)
	require.LessOrEqual(t, len(got.Members), got.Config.MaxPlayers)
}

func TestRoomService_CapacityReachedStartsRoom(t *testing.T) {
	s, broadcaster, _ := newRoomFixture(t, 20*time.Millisecond)
	a := newTestUser("a", 1200)
	b := newTestUser("b", 1100)

	room, err := s.Create(a, "duel", models.RoomConfig{MaxPlayers: 2, TimeLimit: 10})
	require.NoError(t, err)
	require.Equal(t, models.RoomStatusWaiting, room.Status)

	_, err = s.Join(b, room.ID, "")
	require.NoError(t, err)

	got, ok := s.Get(room.ID)
	require.True(t, ok)
	require.Equal(t, models.RoomStatusStarting, got.Status)

	// 시작 지연 경과 후 in_progress
	require.Eventually(t, func() bool {
		got, ok := s.Get(room.ID)
		return ok && got.Status == models.RoomStatusInProgress
	}, time.Second, 5*time.Millisecond)

	require.Len(t, broadcaster.ofType(websocket.EventRoomStarted), 1)

	memberIDs := []string{got.Members[0].ID, got.Members[1].ID}
	require.ElementsMatch(t, []string{"a", "b"}, memberIDs)
}

func TestRoomService_LeaveRevertsAndDeletes(t *testing.T) {
	s, broadcaster, _ := newRoomFixture(t, 10*time.Millisecond)
	a := newTestUser("a", 1200)
	b := newTestUser("b", 1100)

	require.ErrorIs(t, s.Leave("a", "missing"), ErrRoomNotFound)

	room, err := s.Create(a, "duel", models.RoomConfig{MaxPlayers: 2, TimeLimit: 10})
	require.NoError(t, err)
	_, err = s.Join(b, room.ID, "")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		got, ok := s.Get(room.ID)
		return ok && got.Status == models.RoomStatusInProgress
	}, time.Second, 5*time.Millisecond)

	// in_progress에서 2명 미만으로 떨어지면 waiting으로 복귀
	require.NoError(t, s.Leave("b", room.ID))
	got, ok := s.Get(room.ID)
	require.True(t, ok)
	require.Equal(t, models.RoomStatusWaiting, got.Status)
	require.True(t, broadcaster.sentTo("a", websocket.EventUserLeftRoom))

	// 마지막 멤버가 나가면 방 삭제
	require.NoError(t, s.Leave("a", room.ID))
	_, ok = s.Get(room.ID)
	require.False(t, ok)
	require.Len(t, broadcaster.ofType(websocket.EventRoomDeleted), 1)
}

func TestRoomService_LeaveDuringCountdownCancelsStart(t *testing.T) {
	s, _, _ := newRoomFixture(t, 30*time.Millisecond)
	a := newTestUser("a", 1200)
	b := newTestUser("b", 1100)

	room, err := s.Create(a, "duel", models.RoomConfig{MaxPlayers: 2, TimeLimit: 10})
	require.NoError(t, err)
	_, err = s.Join(b, room.ID, "")
	require.NoError(t, err)

	// 카운트다운 중 이탈
	require.NoError(t, s.Leave("b", room.ID))

	time.Sleep(80 * time.Millisecond)

	got, ok := s.Get(room.ID)
	require.True(t, ok)
	require.Equal(t, models.RoomStatusWaiting, got.Status)
}

func TestRoomService_LeaveAll(t *testing.T) {
	s, broadcaster, _ := newRoomFixture(t, time.Hour)
	a := newTestUser("a", 1200)
	b := newTestUser("b", 1100)
	c := newTestUser("c", 1000)

	room, err := s.Create(a, "duel", models.RoomConfig{MaxPlayers: 4, TimeLimit: 10})
	require.NoError(t, err)
	_, err = s.Join(b, room.ID, "")
	require.NoError(t, err)
	_, err = s.Join(c, room.ID, "")
	require.NoError(t, err)

	solo, err := s.Create(c, "solo", models.RoomConfig{MaxPlayers: 4, TimeLimit: 10})
	require.NoError(t, err)

	// 연결 해제 시나리오: c는 3/4 방에서 제거되고, 혼자 있던 방은 삭제
	s.LeaveAll("c")

	got, ok := s.Get(room.ID)
	require.True(t, ok)
	require.Len(t, got.Members, 2)
	require.Equal(t, models.RoomStatusWaiting, got.Status)
	require.False(t, got.HasMember("c"))

	_, ok = s.Get(solo.ID)
	require.False(t, ok)

	require.NotEmpty(t, broadcaster.ofType(websocket.EventRoomUpdated))
}
