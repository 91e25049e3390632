package service

// Broadcaster 아웃바운드 전달 스코프
//
// 모든 핸들러는 이 경계를 통해서만 상태를 내보낸다. 페이로드는 반드시
// models의 Public 프로젝션이어야 한다 (연결 핸들, 비밀번호 해시 등
// 내부 필드가 와이어로 새지 않도록).
type Broadcaster interface {
	// Broadcast 전체 연결 대상 (방 목록 변경 등)
	Broadcast(event string, payload interface{})
	// SendToUser 단일 사용자 대상
	SendToUser(userID string, event string, payload interface{})
	// SendToUsers 대상 목록 (방 스코프, 매치 스코프)
	SendToUsers(userIDs []string, event string, payload interface{})
}
