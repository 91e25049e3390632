package models

import "time"

// UserStatus 접속 상태
type UserStatus string

const (
	StatusOnline  UserStatus = "online"
	StatusInMatch UserStatus = "in_match"
	StatusAway    UserStatus = "away"
)

// User 외부 사용자 스토어에서 해석한 인증 주체
//
// 레이팅과 레벨은 연결 시점 스냅샷이며 이 코어에서는 변경하지 않는다.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	Rating      int    `json:"rating"`
	Level       int    `json:"level"`
	Email       string `json:"email,omitempty"`
}

// PublicProfile 전송 가능한 사용자 프로필 (이메일 등 내부 필드 제외)
type PublicProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	Rating      int    `json:"rating"`
	Level       int    `json:"level"`
}

// Public 전송용 프로필 프로젝션
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		Rating:      u.Rating,
		Level:       u.Level,
	}
}

// PresenceEntry 접속 중인 사용자 한 명의 상태
//
// 연결 핸들 자체는 websocket 허브가 소유한다 (사용자당 단일 연결 강제 포함).
type PresenceEntry struct {
	User     *User
	Status   UserStatus
	LastSeen time.Time
}

// OnlineUser 접속 목록 브로드캐스트용 프로젝션
type OnlineUser struct {
	PublicProfile
	Status UserStatus `json:"status"`
}

// Public 전송용 프로젝션
func (e *PresenceEntry) Public() OnlineUser {
	return OnlineUser{
		PublicProfile: e.User.Public(),
		Status:        e.Status,
	}
}
