package models

import "time"

// RoomStatus 방 상태
type RoomStatus string

const (
	RoomStatusWaiting    RoomStatus = "waiting"
	RoomStatusStarting   RoomStatus = "starting"
	RoomStatusInProgress RoomStatus = "in_progress"
	RoomStatusFinished   RoomStatus = "finished"
)

// RoomConfig 방 생성 설정
type RoomConfig struct {
	MaxPlayers int    `json:"maxPlayers"`
	Mode       string `json:"mode"`
	Difficulty string `json:"difficulty"`
	IsPrivate  bool   `json:"isPrivate"`
	Password   string `json:"password,omitempty"` // 인바운드 전용, 저장 시 해시
	TimeLimit  int    `json:"timeLimit"`          // 분 단위
}

// Room 대전 시작 전 로비 방
type Room struct {
	ID           string
	Name         string
	OwnerID      string
	Members      []PublicProfile // 가입 순서 유지
	Config       RoomConfig
	PasswordHash string // bcrypt, 비공개 방만
	Status       RoomStatus
	CreatedAt    time.Time
}

// HasMember 멤버 여부 확인
func (r *Room) HasMember(userID string) bool {
	for _, m := range r.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// RoomPublic 전송 가능한 방 프로젝션 (비밀번호 해시 제외)
//
// 멤버 목록은 players와 participants 두 필드로 동일하게 직렬화한다.
// 실시간 핸들러와 REST 측이 서로 다른 필드명을 읽던 것을 단일 타입으로
// 통합한 형태 (TODO: 프런트엔드가 한쪽으로 정리되면 participants 제거)
type RoomPublic struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	OwnerID      string          `json:"ownerId"`
	Players      []PublicProfile `json:"players"`
	Participants []PublicProfile `json:"participants"`
	MaxPlayers   int             `json:"maxPlayers"`
	Mode         string          `json:"mode"`
	Difficulty   string          `json:"difficulty"`
	IsPrivate    bool            `json:"isPrivate"`
	TimeLimit    int             `json:"timeLimit"`
	Status       RoomStatus      `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Public 전송용 프로젝션
func (r *Room) Public() RoomPublic {
	members := make([]PublicProfile, len(r.Members))
	copy(members, r.Members)

	return RoomPublic{
		ID:           r.ID,
		Name:         r.Name,
		OwnerID:      r.OwnerID,
		Players:      members,
		Participants: members,
		MaxPlayers:   r.Config.MaxPlayers,
		Mode:         r.Config.Mode,
		Difficulty:   r.Config.Difficulty,
		IsPrivate:    r.Config.IsPrivate,
		TimeLimit:    r.Config.TimeLimit,
		Status:       r.Status,
		CreatedAt:    r.CreatedAt,
	}
}
