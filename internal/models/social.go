package models

import "time"

// RequestStatus 친구/도전 요청 상태
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusAccepted RequestStatus = "accepted"
	RequestStatusRejected RequestStatus = "rejected"
)

// FriendRequest 친구 요청 릴레이 객체
//
// 이 코어는 중계만 하고 상태를 보관하지 않는다. 영속 친구 관계는
// 외부 소셜 스토어 소관이다.
type FriendRequest struct {
	ID      string        `json:"id"`
	From    PublicProfile `json:"from"`
	ToID    string        `json:"toId"`
	Message string        `json:"message,omitempty"`
	SentAt  time.Time     `json:"sentAt"`
	Status  RequestStatus `json:"status"`
}

// ChallengeConfig 도전장에 담기는 대전 설정
type ChallengeConfig struct {
	Mode       string `json:"mode"`
	Difficulty string `json:"difficulty"`
	TimeLimit  int    `json:"timeLimit"`
}

// Challenge 특정 상대에게 보내는 도전장
type Challenge struct {
	ID     string          `json:"id"`
	From   PublicProfile   `json:"from"`
	ToID   string          `json:"toId"`
	Config ChallengeConfig `json:"config"`
	SentAt time.Time       `json:"sentAt"`
}
