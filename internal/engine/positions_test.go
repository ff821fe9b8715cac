package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pump-match/internal/helius"
)

const owner = "OwnerWallet1111111111111111111111111111111"

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// pumpTx builds a pump.fun-attributed transaction with one transfer.
func pumpTx(sig string, at time.Time, mint, from, to, amount string) helius.EnhancedTransaction {
	return helius.EnhancedTransaction{
		Signature: sig,
		Timestamp: at.Unix(),
		Source:    "PUMP_FUN",
		TokenTransfers: []helius.TokenTransfer{{
			Mint:            mint,
			FromUserAccount: from,
			ToUserAccount:   to,
			TokenAmount:     json.Number(amount),
		}},
	}
}

func plainTx(sig string, at time.Time, mint, from, to, amount string) helius.EnhancedTransaction {
	tx := pumpTx(sig, at, mint, from, to, amount)
	tx.Source = "SYSTEM_PROGRAM"
	return tx
}

// newestFirst reverses a chronological fixture into provider page order.
func newestFirst(txs []helius.EnhancedTransaction) []helius.EnhancedTransaction {
	out := make([]helius.EnhancedTransaction, len(txs))
	for i := range txs {
		out[len(txs)-1-i] = txs[i]
	}
	return out
}

func TestExtractPumpStats_FastFlips(t *testing.T) {
	var chrono []helius.EnhancedTransaction
	for i, mint := range []string{"MintA", "MintB", "MintC"} {
		buyAt := baseTime.Add(time.Duration(i) * time.Hour)
		chrono = append(chrono,
			pumpTx("buy-"+mint, buyAt, mint, "pool", owner, "1000"),
			pumpTx("sell-"+mint, buyAt.Add(60*time.Second), mint, owner, "pool", "1000"),
		)
	}

	now := baseTime.Add(24 * time.Hour)
	stats := ExtractPumpStats(newestFirst(chrono), owner, "", now)
	require.NotNil(t, stats)

	assert.Equal(t, 3, stats.MintsTouched)
	assert.Equal(t, 3, stats.ClosedPositions)
	assert.InDelta(t, 60.0, stats.MedianHoldSeconds, 0.001)
	assert.Equal(t, 100, stats.JeetScore)
	assert.Equal(t, 0, stats.RugMagnetScore)
}

func TestExtractPumpStats_SmallSampleIsNoVerdict(t *testing.T) {
	chrono := []helius.EnhancedTransaction{
		pumpTx("buy-a", baseTime, "MintA", "pool", owner, "10"),
		pumpTx("buy-b", baseTime.Add(time.Minute), "MintB", "pool", owner, "10"),
	}

	stats := ExtractPumpStats(newestFirst(chrono), owner, "", baseTime.Add(time.Hour))
	assert.Nil(t, stats)
}

func TestExtractPumpStats_DeadPositions(t *testing.T) {
	chrono := []helius.EnhancedTransaction{
		pumpTx("buy-a", baseTime, "MintA", "pool", owner, "10"),
		pumpTx("buy-b", baseTime, "MintB", "pool", owner, "10"),
		pumpTx("buy-c", baseTime, "MintC", "pool", owner, "10"),
		pumpTx("buy-d", baseTime, "MintD", "pool", owner, "10"),
		pumpTx("sell-c", baseTime.Add(2*time.Hour), "MintC", owner, "pool", "10"),
		pumpTx("sell-d", baseTime.Add(2*time.Hour), "MintD", owner, "pool", "10"),
	}

	// A and B have been open for 100 hours, past the dead threshold.
	now := baseTime.Add(100 * time.Hour)
	stats := ExtractPumpStats(newestFirst(chrono), owner, "", now)
	require.NotNil(t, stats)

	assert.Equal(t, 4, stats.MintsTouched)
	assert.Equal(t, 2, stats.ClosedPositions)
	assert.Equal(t, 50, stats.RugMagnetScore)
}

func TestExtractPumpStats_UniverseMembership(t *testing.T) {
	chrono := []helius.EnhancedTransaction{
		pumpTx("buy-a", baseTime, "MintA", "pool", owner, "10"),
		pumpTx("buy-b", baseTime, "MintB", "pool", owner, "10"),
		// Suffix mint counts even without pump.fun attribution.
		plainTx("buy-suffix", baseTime, "ABCpump", "pool", owner, "10"),
		// Unattributed, unsuffixed mint stays outside the universe.
		plainTx("buy-other", baseTime, "RandomSplMint", "pool", owner, "10"),
	}

	stats := ExtractPumpStats(newestFirst(chrono), owner, "", baseTime.Add(time.Hour))
	require.NotNil(t, stats)
	assert.Equal(t, 3, stats.MintsTouched)
}

func TestExtractPumpStats_MalformedAmountSkipsRecordOnly(t *testing.T) {
	bad := pumpTx("mixed", baseTime, "MintA", "pool", owner, "not-a-number")
	bad.TokenTransfers = append(bad.TokenTransfers, helius.TokenTransfer{
		Mint:            "MintB",
		FromUserAccount: "pool",
		ToUserAccount:   owner,
		TokenAmount:     json.Number("10"),
	})
	chrono := []helius.EnhancedTransaction{
		bad,
		pumpTx("buy-c", baseTime.Add(time.Minute), "MintC", "pool", owner, "10"),
		pumpTx("buy-d", baseTime.Add(time.Minute), "MintD", "pool", owner, "10"),
	}

	stats := ExtractPumpStats(newestFirst(chrono), owner, "", baseTime.Add(time.Hour))
	require.NotNil(t, stats)

	// MintA's only record was malformed, so it never produced a position.
	assert.Equal(t, 3, stats.MintsTouched)
}

func TestExtractPumpStats_EpsilonClosesDustBalance(t *testing.T) {
	chrono := []helius.EnhancedTransaction{
		pumpTx("buy-a", baseTime, "MintA", "pool", owner, "1.0"),
		pumpTx("sell-a", baseTime.Add(time.Minute), "MintA", owner, "pool", "0.9999999999"),
		pumpTx("buy-b", baseTime, "MintB", "pool", owner, "10"),
		pumpTx("sell-b", baseTime.Add(time.Minute), "MintB", owner, "pool", "10"),
		pumpTx("buy-c", baseTime, "MintC", "pool", owner, "10"),
		pumpTx("sell-c", baseTime.Add(time.Minute), "MintC", owner, "pool", "10"),
	}

	stats := ExtractPumpStats(newestFirst(chrono), owner, "", baseTime.Add(time.Hour))
	require.NotNil(t, stats)

	// The 1e-10 residue on MintA snaps to zero and the position closes.
	assert.Equal(t, 3, stats.ClosedPositions)
	assert.Equal(t, 0, stats.RugMagnetScore)
}

func TestJeetScoreForHold(t *testing.T) {
	cases := []struct {
		median float64
		want   int
	}{
		{60, 100},
		{120, 100},
		{121, 90},
		{300, 90},
		{900, 75},
		{3600, 50},
		{14400, 30},
		{86400, 10},
		{86401, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, jeetScoreForHold(tc.median), "median %v", tc.median)
	}
}

func TestMedianOf(t *testing.T) {
	assert.Equal(t, 0.0, medianOf(nil))
	assert.Equal(t, 5.0, medianOf([]float64{5}))
	assert.Equal(t, 4.0, medianOf([]float64{7, 1, 4}))
	assert.Equal(t, 2.5, medianOf([]float64{1, 2, 3, 4}))
}
