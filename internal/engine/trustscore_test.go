package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateTrustScore_EstablishedWallet(t *testing.T) {
	score := CalculateTrustScore(15, 1200, 12, nil)

	assert.Equal(t, 40, score.BalanceScore)
	assert.Equal(t, 40, score.ActivityScore)
	assert.Equal(t, 20, score.DiversityScore)
	assert.Equal(t, 0, score.Penalty)
	assert.Equal(t, 100, score.Total)
}

func TestCalculateTrustScore_FreshWallet(t *testing.T) {
	score := CalculateTrustScore(0.1, 2, 0, nil)

	assert.Equal(t, 0, score.BalanceScore)
	assert.Equal(t, 2, score.ActivityScore)
	assert.Equal(t, 20, score.Penalty)
	assert.Equal(t, 0, score.Total)
	assert.Contains(t, score.Explanation, "fresh wallet penalty -20")
}

func TestCalculateTrustScore_UnavailableTxCount(t *testing.T) {
	score := CalculateTrustScore(5, TxCountUnavailable, 3, nil)

	// The sentinel means zero activity without the fresh-wallet penalty.
	assert.Equal(t, 0, score.ActivityScore)
	assert.Equal(t, 0, score.Penalty)
	assert.Equal(t, 20+12, score.Total)
	assert.Contains(t, score.Explanation, "transaction history unavailable, activity not scored")
}

func TestCalculateTrustScore_BalanceFloor(t *testing.T) {
	score := CalculateTrustScore(9.9, 0, 0, nil)
	assert.Equal(t, 39, score.BalanceScore)
}

func TestCalculateTrustScore_PumpPenalties(t *testing.T) {
	pump := &PumpStats{
		MintsTouched:    10,
		ClosedPositions: 8,
		JeetScore:       100,
		RugMagnetScore:  100,
	}
	score := CalculateTrustScore(15, 1200, 12, pump)

	// Full jeet penalty 30 plus full rug penalty 20 off a perfect base.
	assert.Equal(t, 50, score.Penalty)
	assert.Equal(t, 50, score.Total)
	assert.Contains(t, score.Explanation, "fast pump exits penalty -30")
	assert.Contains(t, score.Explanation, "dead pump positions penalty -20")
}

func TestCalculateTrustScore_OpenOnlyPenaltyIsScaled(t *testing.T) {
	pump := &PumpStats{
		MintsTouched:    5,
		ClosedPositions: 0,
		JeetScore:       100,
		RugMagnetScore:  0,
	}
	score := CalculateTrustScore(15, 1200, 12, pump)

	// round(30 * 0.35) = 11 instead of the full 30.
	assert.Equal(t, 11, score.Penalty)
	assert.Equal(t, 89, score.Total)
}

func TestCalculateTrustScore_DiamondHandsBonus(t *testing.T) {
	pump := &PumpStats{
		MintsTouched:    5,
		ClosedPositions: 3,
		JeetScore:       0,
		RugMagnetScore:  0,
	}
	score := CalculateTrustScore(10, 500, 5, pump)

	// 40 + 30 + 20 + 20 bonus clamps at 100.
	assert.Equal(t, 100, score.Total)
	assert.Contains(t, score.Explanation, "diamond hands bonus +20")
}

func TestCalculateTrustScore_ClampsToZero(t *testing.T) {
	pump := &PumpStats{
		MintsTouched:    5,
		ClosedPositions: 5,
		JeetScore:       100,
		RugMagnetScore:  100,
	}
	score := CalculateTrustScore(0, 2, 0, pump)
	assert.Equal(t, 0, score.Total)
}

func TestCalculateTrustScore_Deterministic(t *testing.T) {
	pump := &PumpStats{MintsTouched: 4, ClosedPositions: 2, JeetScore: 50, RugMagnetScore: 25}
	first := CalculateTrustScore(7.3, 150, 4, pump)
	second := CalculateTrustScore(7.3, 150, 4, pump)
	assert.Equal(t, first, second)
}

func TestActivityScoreForCount(t *testing.T) {
	cases := []struct {
		count int
		want  int
	}{
		{0, 0},
		{1, 2},
		{10, 7},
		{50, 15},
		{100, 22},
		{300, 30},
		{999, 30},
		{1000, 40},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, activityScoreForCount(tc.count), "count %d", tc.count)
	}
}
