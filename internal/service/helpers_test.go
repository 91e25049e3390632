package service

import (
	"sync"

	"go.uber.org/zap"

	"github.com/codeclash/codeclash-backend/internal/models"
)

// recordedEvent 테스트용 브로드캐스트 기록
type recordedEvent struct {
	Targets []string // nil이면 전체 브로드캐스트
	Event   string
	Payload interface{}
}

// fakeBroadcaster Broadcaster 구현 테스트 더블
type fakeBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeBroadcaster) Broadcast(event string, payload interface{}) {
	f.record(recordedEvent{Event: event, Payload: payload})
}

func (f *fakeBroadcaster) SendToUser(userID string, event string, payload interface{}) {
	f.record(recordedEvent{Targets: []string{userID}, Event: event, Payload: payload})
}

func (f *fakeBroadcaster) SendToUsers(userIDs []string, event string, payload interface{}) {
	f.record(recordedEvent{Targets: userIDs, Event: event, Payload: payload})
}

func (f *fakeBroadcaster) record(ev recordedEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

func (f *fakeBroadcaster) ofType(event string) []recordedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []recordedEvent
	for _, ev := range f.events {
		if ev.Event == event {
			out = append(out, ev)
		}
	}
	return out
}

func (f *fakeBroadcaster) sentTo(userID, event string) bool {
	for _, ev := range f.ofType(event) {
		for _, target := range ev.Targets {
			if target == userID {
				return true
			}
		}
	}
	return false
}

func newTestUser(id string, rating int) *models.User {
	return &models.User{
		ID:          id,
		DisplayName: "user-" + id,
		Rating:      rating,
		Level:       1,
	}
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
