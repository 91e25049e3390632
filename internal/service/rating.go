package service

import "math"

// RatingEstimator ELO 기반 레이팅 변동 추정기
//
// 레이팅 원장은 플랫폼 사용자 서비스가 소유한다. 여기서 계산한 변동치는
// 매치 완료 통지에 싣는 표시용 추정값일 뿐 어디에도 기록되지 않는다.
type RatingEstimator struct {
	kFactor float64
}

// NewRatingEstimator 기본 K-factor로 추정기 생성
func NewRatingEstimator() *RatingEstimator {
	return &RatingEstimator{kFactor: 32}
}

// kFactorFor 레벨에 따른 K-factor
//
// 저레벨 구간은 수렴을 빠르게, 고레벨 구간은 레이팅을 안정적으로 유지한다.
func (e *RatingEstimator) kFactorFor(level int) float64 {
	if level < 10 {
		return 40.0
	} else if level < 20 {
		return e.kFactor
	}
	return 24.0
}

// Deltas 승자/패자의 예상 레이팅 변동 계산
func (e *RatingEstimator) Deltas(winnerRating, winnerLevel, loserRating, loserLevel int) (winnerDelta, loserDelta int) {
	expectedWin := e.expectedScore(float64(winnerRating), float64(loserRating))

	winnerDelta = int(math.Round(e.kFactorFor(winnerLevel) * (1.0 - expectedWin)))
	loserDelta = int(math.Round(e.kFactorFor(loserLevel) * (0.0 - (1.0 - expectedWin))))
	return
}

// expectedScore A가 B를 이길 기대 확률
func (e *RatingEstimator) expectedScore(ratingA, ratingB float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (ratingB-ratingA)/400.0))
}
