package timers

import (
	"sync"
	"time"
)

// Registry 엔티티 ID를 키로 하는 취소 가능 타이머 레지스트리
//
// 매치메이킹 탐색 타임아웃, 매치 수락 타임아웃, 방 시작 지연 등
// 엔티티 단위로 무장되는 타이머를 관리한다. 같은 ID로 다시 예약하면
// 기존 타이머는 교체되고, 취소되거나 교체된 타이머는 발화해도 no-op이다.
type Registry struct {
	mu     sync.Mutex
	timers map[string]*armedTimer
}

// armedTimer 무장된 타이머 한 개
//
// 발화 클로저는 이 포인터로 자신이 아직 현역인지 식별한다. 포인터는
// AfterFunc 호출 전에 확정되므로 발화 고루틴과의 경합이 없다.
type armedTimer struct {
	timer *time.Timer
}

// NewRegistry 타이머 레지스트리 생성
func NewRegistry() *Registry {
	return &Registry{
		timers: make(map[string]*armedTimer),
	}
}

// Schedule d 이후에 fn을 실행하도록 예약 (같은 ID의 기존 타이머는 교체)
func (r *Registry) Schedule(id string, d time.Duration, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.timers[id]; ok {
		old.timer.Stop()
	}

	entry := &armedTimer{}
	entry.timer = time.AfterFunc(d, func() {
		// 발화 시점에 아직 현역 타이머인 경우에만 실행
		if r.claim(id, entry) {
			fn()
		}
	})
	r.timers[id] = entry
}

// claim 레지스트리에 등록된 타이머가 entry 자신일 때만 제거하고 true 반환
func (r *Registry) claim(id string, entry *armedTimer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.timers[id]
	if !ok || current != entry {
		return false
	}
	delete(r.timers, id)
	return true
}

// Cancel 예약된 타이머 취소 (존재했으면 true)
func (r *Registry) Cancel(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.timers[id]
	if !ok {
		return false
	}
	entry.timer.Stop()
	delete(r.timers, id)
	return true
}

// StopAll 모든 타이머 중지 (종료 시 호출)
func (r *Registry) StopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, entry := range r.timers {
		entry.timer.Stop()
		delete(r.timers, id)
	}
}

// Len 현재 등록된 타이머 수
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}
