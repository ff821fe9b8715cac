package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pump-match/internal/profile"
)

func TestFindMatches_RanksAndSnapshots(t *testing.T) {
	provider := establishedProvider()
	store := newFakeStore()
	store.profiles["Self"] = profile.MemberProfile{
		WalletAddress: "Self",
		TrustScore:    80,
		OptedIn:       true,
	}

	recent := analyzerNow.Add(-2 * time.Hour)
	store.candidates = []profile.MemberProfile{
		{
			WalletAddress: "Weak",
			TrustScore:    20,
			OptedIn:       true,
		},
		{
			WalletAddress: "Strong",
			TrustScore:    80,
			Badges:        []string{"whale", "diamond_hands"},
			Intent:        profile.IntentJoinProject,
			IdentityState: profile.IdentityVerified,
			LastActiveAt:  &recent,
			OptedIn:       true,
		},
	}

	memo := newFakeCache()
	a := newTestAnalyzer(t, provider, store, memo)

	matches, err := a.FindMatches(context.Background(), "Self", profile.IntentBuildSquad, 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "Strong", matches[0].Candidate.WalletAddress)
	assert.Equal(t, "Weak", matches[1].Candidate.WalletAddress)
	assert.Greater(t, matches[0].Confidence, matches[1].Confidence)

	// The declared intent shapes the ranking, never the analysis cache key.
	assert.Equal(t, []string{"wallet:analysis:Self"}, memo.keys())

	var snapshotted bool
	for _, u := range store.recordedUpserts() {
		if u.address == "Self" && u.patch.MatchSnapshot != nil {
			snapshotted = true
			assert.NotNil(t, u.patch.MatchSnapshotAt)
		}
	}
	assert.True(t, snapshotted, "expected a match snapshot upsert for Self")
}

func TestFindMatches_GatedCandidateScoresZero(t *testing.T) {
	provider := establishedProvider()
	store := newFakeStore()
	store.profiles["Self"] = profile.MemberProfile{WalletAddress: "Self", TrustScore: 40}

	floor := 90
	store.candidates = []profile.MemberProfile{
		{WalletAddress: "Picky", TrustScore: 95, MinTrustScore: &floor, OptedIn: true},
	}

	a := newTestAnalyzer(t, provider, store, newFakeCache())
	matches, err := a.FindMatches(context.Background(), "Self", "", 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	assert.Equal(t, 0, matches[0].Confidence)
	require.Len(t, matches[0].Reasons, 1)
	assert.Equal(t, ReasonReciprocityFloor, matches[0].Reasons[0].Code)
}

func TestSortMatches_TieBreaks(t *testing.T) {
	entry := func(addr string, confidence int, state profile.IdentityState, badges ...string) MatchProfile {
		return MatchProfile{
			Candidate: profile.MemberProfile{
				WalletAddress: addr,
				IdentityState: state,
				Badges:        badges,
			},
			Confidence: confidence,
		}
	}

	t.Run("verified wins inside the band", func(t *testing.T) {
		matches := []MatchProfile{
			entry("ghost", 80, profile.IdentityGhost),
			entry("verified", 79, profile.IdentityVerified),
		}
		sortMatches(matches)
		assert.Equal(t, "verified", matches[0].Candidate.WalletAddress)
	})

	t.Run("confidence wins outside the band", func(t *testing.T) {
		matches := []MatchProfile{
			entry("verified", 79, profile.IdentityVerified),
			entry("ghost", 85, profile.IdentityGhost),
		}
		sortMatches(matches)
		assert.Equal(t, "ghost", matches[0].Candidate.WalletAddress)
	})

	t.Run("system score breaks identical states", func(t *testing.T) {
		matches := []MatchProfile{
			entry("light", 70, profile.IdentityGhost, "og_wallet"),
			entry("heavy", 70, profile.IdentityGhost, "whale", "diamond_hands"),
		}
		sortMatches(matches)
		assert.Equal(t, "heavy", matches[0].Candidate.WalletAddress)
	})
}
