package engine

import (
	"fmt"
	"math"
)

// TxCountUnavailable is the reserved sentinel for a transaction count that
// could not be fetched. It is never a real count: scoring treats it as zero
// activity without the fresh-wallet penalty.
const TxCountUnavailable = -1

const (
	maxBalanceScore   = 40
	maxActivityScore  = 40
	maxDiversityScore = 20
	freshWalletPenalty = 20
	diamondHandsBonus  = 20

	// Open-only pump history is penalized more gently than a confirmed
	// flip record.
	openOnlyPenaltyScale = 0.35
)

// ScoreBreakdown is the deterministic 0-100 trust score with its
// contributing components and a human-readable explanation.
type ScoreBreakdown struct {
	BalanceScore   int      `json:"balanceScore"`
	ActivityScore  int      `json:"activityScore"`
	DiversityScore int      `json:"diversityScore"`
	Penalty        int      `json:"penalty"`
	Total          int      `json:"total"`
	Explanation    []string `json:"explanation"`
}

// CalculateTrustScore combines wallet balance, activity bracket, token
// diversity and pump behavior into one clamped 0-100 score. The function
// is total: every well-typed input produces a value.
func CalculateTrustScore(balance float64, txCount int, diversity int, pump *PumpStats) ScoreBreakdown {
	var explanation []string

	balanceScore := int(math.Floor(balance * 4))
	if balanceScore > maxBalanceScore {
		balanceScore = maxBalanceScore
	}
	if balanceScore > 0 {
		explanation = append(explanation, fmt.Sprintf("SOL balance contributes +%d", balanceScore))
	}

	countedTx := txCount
	if txCount == TxCountUnavailable {
		countedTx = 0
		explanation = append(explanation, "transaction history unavailable, activity not scored")
	}
	activityScore := activityScoreForCount(countedTx)
	if activityScore > 0 {
		explanation = append(explanation, fmt.Sprintf("on-chain activity contributes +%d", activityScore))
	}

	diversityScore := diversity * 4
	if diversityScore > maxDiversityScore {
		diversityScore = maxDiversityScore
	}
	if diversityScore > 0 {
		explanation = append(explanation, fmt.Sprintf("token diversity contributes +%d", diversityScore))
	}

	penalty := 0
	if countedTx < 5 && txCount != TxCountUnavailable {
		penalty += freshWalletPenalty
		explanation = append(explanation, fmt.Sprintf("fresh wallet penalty -%d", freshWalletPenalty))
	}

	bonus := 0
	if pump != nil {
		scale := 1.0
		if pump.ClosedPositions == 0 {
			scale = openOnlyPenaltyScale
		}
		jeetPenalty := int(math.Round(float64(pump.JeetScore) / 100 * 30 * scale))
		if jeetPenalty > 0 {
			penalty += jeetPenalty
			explanation = append(explanation, fmt.Sprintf("fast pump exits penalty -%d", jeetPenalty))
		}

		rugPenalty := int(math.Round(float64(pump.RugMagnetScore) / 100 * 20))
		if rugPenalty > 0 {
			penalty += rugPenalty
			explanation = append(explanation, fmt.Sprintf("dead pump positions penalty -%d", rugPenalty))
		}

		if pump.ClosedPositions >= 1 && pump.JeetScore <= 10 && pump.RugMagnetScore < 40 {
			bonus = diamondHandsBonus
			explanation = append(explanation, fmt.Sprintf("diamond hands bonus +%d", diamondHandsBonus))
		}
	}

	total := balanceScore + activityScore + diversityScore - penalty + bonus
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}

	if len(explanation) == 0 {
		explanation = append(explanation, "standard profile")
	}

	return ScoreBreakdown{
		BalanceScore:   balanceScore,
		ActivityScore:  activityScore,
		DiversityScore: diversityScore,
		Penalty:        penalty,
		Total:          total,
		Explanation:    dedupeOrdered(explanation),
	}
}

func activityScoreForCount(txCount int) int {
	switch {
	case txCount >= 1000:
		return 40
	case txCount >= 300:
		return 30
	case txCount >= 100:
		return 22
	case txCount >= 50:
		return 15
	case txCount >= 10:
		return 7
	case txCount >= 1:
		return 2
	default:
		return 0
	}
}

func dedupeOrdered(entries []string) []string {
	seen := make(map[string]struct{}, len(entries))
	out := entries[:0]
	for _, entry := range entries {
		if _, dup := seen[entry]; dup {
			continue
		}
		seen[entry] = struct{}{}
		out = append(out, entry)
	}
	return out
}
