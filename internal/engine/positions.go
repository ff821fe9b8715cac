package engine

import (
	"math"
	"sort"
	"strings"
	"time"

	"pump-match/internal/helius"
)

const (
	// defaultPumpProgramID is the pump.fun bonding curve program.
	defaultPumpProgramID = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"
	pumpFunSource        = "PUMP_FUN"
	pumpMintSuffix       = "pump"

	// balanceEpsilon absorbs float rounding from transfer deltas; balances
	// this close to zero are treated as exactly zero.
	balanceEpsilon = 1e-9

	// minMintsForVerdict is the smallest sample the extractor will issue a
	// verdict on.
	minMintsForVerdict = 3

	// deadPositionAge marks a still-open position as dead rug exposure.
	deadPositionAge = 72 * time.Hour
)

// Position is the running holding of one mint while transfers are replayed
// in chronological order. OpenedAt is set on the zero-to-positive crossing
// and cleared when the balance returns to zero or below.
type Position struct {
	Balance  float64
	OpenedAt *time.Time
}

// PumpStats summarizes a wallet's trading behavior inside the pump.fun
// token universe. A nil PumpStats means the sample was too small for any
// verdict and downstream scoring must skip pump adjustments entirely.
type PumpStats struct {
	MintsTouched      int     `json:"mintsTouched"`
	ClosedPositions   int     `json:"closedPositions"`
	MedianHoldSeconds float64 `json:"medianHoldSeconds"`
	JeetScore         int     `json:"jeetScore"`
	RugMagnetScore    int     `json:"rugMagnetScore"`
}

// ExtractPumpStats rebuilds per-mint positions from the enriched
// transaction pages of one wallet and derives hold-time statistics.
// Pages arrive newest-first from the provider and are replayed oldest-first.
// The pump universe is built incrementally from transactions attributed to
// the pump.fun program, plus any mint carrying the pump address suffix.
func ExtractPumpStats(txs []helius.EnhancedTransaction, owner string, pumpProgramID string, now time.Time) *PumpStats {
	if pumpProgramID == "" {
		pumpProgramID = defaultPumpProgramID
	}

	ordered := make([]helius.EnhancedTransaction, len(txs))
	for i := range txs {
		ordered[len(txs)-1-i] = txs[i]
	}

	universe := make(map[string]struct{})
	positions := make(map[string]*Position)
	var holds []float64
	closedCount := 0

	for _, tx := range ordered {
		txTime := time.Unix(tx.Timestamp, 0).UTC()

		if isPumpOriginated(tx, pumpProgramID) {
			for _, transfer := range tx.TokenTransfers {
				if transfer.Mint != "" {
					universe[transfer.Mint] = struct{}{}
				}
			}
		}

		for _, transfer := range tx.TokenTransfers {
			if transfer.Mint == "" {
				continue
			}
			if _, inUniverse := universe[transfer.Mint]; !inUniverse && !strings.HasSuffix(transfer.Mint, pumpMintSuffix) {
				continue
			}

			amount, err := transfer.TokenAmount.Float64()
			if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
				// Malformed amount: skip the record, not the transaction.
				continue
			}

			delta := 0.0
			if transfer.ToUserAccount == owner {
				delta += amount
			}
			if transfer.FromUserAccount == owner {
				delta -= amount
			}
			if delta == 0 {
				continue
			}

			pos := positions[transfer.Mint]
			if pos == nil {
				pos = &Position{}
				positions[transfer.Mint] = pos
			}

			prev := pos.Balance
			pos.Balance += delta
			if math.Abs(pos.Balance) <= balanceEpsilon {
				pos.Balance = 0
			}

			switch {
			case prev <= 0 && pos.Balance > 0:
				opened := txTime
				pos.OpenedAt = &opened
			case prev > 0 && pos.Balance <= 0:
				if pos.OpenedAt != nil {
					holds = append(holds, txTime.Sub(*pos.OpenedAt).Seconds())
					closedCount++
				}
				pos.OpenedAt = nil
			}
		}
	}

	// Positions still open contribute their current age to the median and
	// drive the dead-mint exposure.
	deadCount := 0
	for _, pos := range positions {
		if pos.Balance > 0 && pos.OpenedAt != nil {
			age := now.Sub(*pos.OpenedAt)
			holds = append(holds, age.Seconds())
			if age > deadPositionAge {
				deadCount++
			}
		}
	}

	touched := len(positions)
	if touched < minMintsForVerdict {
		return nil
	}

	median := medianOf(holds)
	return &PumpStats{
		MintsTouched:      touched,
		ClosedPositions:   closedCount,
		MedianHoldSeconds: median,
		JeetScore:         jeetScoreForHold(median),
		RugMagnetScore:    int(math.Round(100 * float64(deadCount) / float64(touched))),
	}
}

func isPumpOriginated(tx helius.EnhancedTransaction, pumpProgramID string) bool {
	if tx.Source == pumpFunSource {
		return true
	}
	for _, instruction := range tx.Instructions {
		if instruction.ProgramID == pumpProgramID {
			return true
		}
	}
	return false
}

// jeetScoreForHold maps the median hold time to a 0-100 exit-speed score.
// Non-increasing in the median: faster flips score higher.
func jeetScoreForHold(medianSeconds float64) int {
	switch {
	case medianSeconds <= 120:
		return 100
	case medianSeconds <= 300:
		return 90
	case medianSeconds <= 900:
		return 75
	case medianSeconds <= 3600:
		return 50
	case medianSeconds <= 14400:
		return 30
	case medianSeconds <= 86400:
		return 10
	default:
		return 0
	}
}

func medianOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
