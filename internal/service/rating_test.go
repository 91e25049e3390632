package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRatingEstimator_EqualRatings(t *testing.T) {
	e := NewRatingEstimator()

	winnerDelta, loserDelta := e.Deltas(1200, 15, 1200, 15)
	require.Equal(t, 16, winnerDelta)
	require.Equal(t, -16, loserDelta)
}

func TestRatingEstimator_UpsetPaysMore(t *testing.T) {
	e := NewRatingEstimator()

	// 저레이팅이 고레이팅을 이기면 변동 폭이 커진다
	upsetDelta, _ := e.Deltas(1200, 15, 1600, 15)
	favoredDelta, _ := e.Deltas(1600, 15, 1200, 15)
	require.Greater(t, upsetDelta, favoredDelta)
}

func TestRatingEstimator_KFactorByLevel(t *testing.T) {
	e := NewRatingEstimator()

	require.Equal(t, 40.0, e.kFactorFor(5))
	require.Equal(t, 32.0, e.kFactorFor(15))
	require.Equal(t, 24.0, e.kFactorFor(30))

	// 신규 구간은 같은 결과에서 더 크게 움직인다
	newDelta, _ := e.Deltas(1200, 5, 1200, 5)
	establishedDelta, _ := e.Deltas(1200, 30, 1200, 30)
	require.Greater(t, newDelta, establishedDelta)
}

func TestRatingEstimator_ExpectedScoreSymmetry(t *testing.T) {
	e := NewRatingEstimator()

	pA := e.expectedScore(1400, 1200)
	pB := e.expectedScore(1200, 1400)
	require.InDelta(t, 1.0, pA+pB, 1e-9)
	require.Greater(t, pA, 0.5)
}
