package models

import (
	"encoding/json"
	"time"
)

// MatchStatus 매치 상태
type MatchStatus string

const (
	MatchStatusWaitingAcceptance MatchStatus = "waiting_acceptance"
	MatchStatusInProgress        MatchStatus = "in_progress"
	MatchStatusFinished          MatchStatus = "finished"
)

// Solution 매치 중 제출된 풀이
type Solution struct {
	UserID      string          `json:"userId"`
	Payload     json.RawMessage `json:"payload"`
	ElapsedMs   int64           `json:"elapsedMs"`
	SubmittedAt time.Time       `json:"submittedAt"`
}

// Match 페어링된 두 사용자의 실시간 대전 세션
type Match struct {
	ID           string
	Player1      *User
	Player2      *User
	Mode         string
	Difficulty   string
	TimeLimit    int // 분 단위
	ProblemCount int
	Status       MatchStatus
	WinnerID     *string
	Solutions    []Solution
	CreatedAt    time.Time
}

// HasPlayer 참가자 여부 확인
func (m *Match) HasPlayer(userID string) bool {
	return m.Player1.ID == userID || m.Player2.ID == userID
}

// PlayerIDs 두 참가자의 ID
func (m *Match) PlayerIDs() []string {
	return []string{m.Player1.ID, m.Player2.ID}
}

// MatchPublic 전송 가능한 매치 프로젝션
type MatchPublic struct {
	ID           string          `json:"id"`
	Players      []PublicProfile `json:"players"`
	Mode         string          `json:"mode"`
	Difficulty   string          `json:"difficulty"`
	TimeLimit    int             `json:"timeLimit"`
	ProblemCount int             `json:"problemCount"`
	Status       MatchStatus     `json:"status"`
	WinnerID     *string         `json:"winnerId,omitempty"`
	Solutions    []Solution      `json:"solutions"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Public 전송용 프로젝션
func (m *Match) Public() MatchPublic {
	solutions := make([]Solution, len(m.Solutions))
	copy(solutions, m.Solutions)

	return MatchPublic{
		ID:           m.ID,
		Players:      []PublicProfile{m.Player1.Public(), m.Player2.Public()},
		Mode:         m.Mode,
		Difficulty:   m.Difficulty,
		TimeLimit:    m.TimeLimit,
		ProblemCount: m.ProblemCount,
		Status:       m.Status,
		WinnerID:     m.WinnerID,
		Solutions:    solutions,
		CreatedAt:    m.CreatedAt,
	}
}
