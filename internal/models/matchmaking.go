package models

import "time"

// TicketStatus 매치메이킹 티켓 상태
type TicketStatus string

const (
	TicketStatusSearching TicketStatus = "searching"
	TicketStatusFound     TicketStatus = "found"
	TicketStatusExpired   TicketStatus = "expired"
)

// RatingRange 상대 레이팅 허용 범위 (0/0이면 무제한)
type RatingRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains 레이팅이 범위 안에 있는지 확인
func (r RatingRange) Contains(rating int) bool {
	if r.Min == 0 && r.Max == 0 {
		return true
	}
	return rating >= r.Min && rating <= r.Max
}

// MatchConstraints 매치메이킹 탐색 조건
type MatchConstraints struct {
	Difficulty  string      `json:"difficulty"`
	Mode        string      `json:"mode"`
	RatingRange RatingRange `json:"ratingRange"`
}

// MatchmakingTicket 대기열에 등록된 탐색 요청
type MatchmakingTicket struct {
	User        *User
	Constraints MatchConstraints
	QueuedAt    time.Time
	Status      TicketStatus
}

// TicketPublic 전송용 티켓 프로젝션
type TicketPublic struct {
	Constraints MatchConstraints `json:"constraints"`
	QueuedAt    time.Time        `json:"queuedAt"`
	Status      TicketStatus     `json:"status"`
}

// Public 전송용 프로젝션
func (t *MatchmakingTicket) Public() TicketPublic {
	return TicketPublic{
		Constraints: t.Constraints,
		QueuedAt:    t.QueuedAt,
		Status:      t.Status,
	}
}
