package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func badgeIDSet(badges []Badge) map[BadgeID]bool {
	out := make(map[BadgeID]bool, len(badges))
	for _, b := range badges {
		out[b.ID] = true
	}
	return out
}

func TestComputeBadges_Thresholds(t *testing.T) {
	t.Run("whale requires strictly more than 10 SOL", func(t *testing.T) {
		assert.False(t, badgeIDSet(ComputeBadges(BadgeSignals{Balance: 10.0}))[BadgeWhale])
		assert.True(t, badgeIDSet(ComputeBadges(BadgeSignals{Balance: 10.5}))[BadgeWhale])
	})

	t.Run("og wallet requires strictly more than 1000 txs", func(t *testing.T) {
		assert.False(t, badgeIDSet(ComputeBadges(BadgeSignals{TxCount: 1000}))[BadgeOGWallet])
		assert.True(t, badgeIDSet(ComputeBadges(BadgeSignals{TxCount: 1001}))[BadgeOGWallet])
	})

	t.Run("og wallet never fires on the unavailable sentinel", func(t *testing.T) {
		assert.False(t, badgeIDSet(ComputeBadges(BadgeSignals{TxCount: TxCountUnavailable}))[BadgeOGWallet])
	})

	t.Run("dev requires strictly more than 10 distinct tokens", func(t *testing.T) {
		assert.False(t, badgeIDSet(ComputeBadges(BadgeSignals{TokenDiversity: 10}))[BadgeDev])
		assert.True(t, badgeIDSet(ComputeBadges(BadgeSignals{TokenDiversity: 11}))[BadgeDev])
	})
}

func TestComputeBadges_PumpBehavior(t *testing.T) {
	diamond := ComputeBadges(BadgeSignals{
		Pump: &PumpStats{MintsTouched: 5, ClosedPositions: 2, JeetScore: 10, RugMagnetScore: 0},
	})
	assert.True(t, badgeIDSet(diamond)[BadgeDiamondHands])

	jeet := ComputeBadges(BadgeSignals{
		Pump: &PumpStats{MintsTouched: 6, ClosedPositions: 5, JeetScore: 95, RugMagnetScore: 0},
	})
	assert.True(t, badgeIDSet(jeet)[BadgeMegaJeet])
	assert.False(t, badgeIDSet(jeet)[BadgeDiamondHands])

	rug := ComputeBadges(BadgeSignals{
		Pump: &PumpStats{MintsTouched: 5, ClosedPositions: 1, JeetScore: 0, RugMagnetScore: 60},
	})
	assert.True(t, badgeIDSet(rug)[BadgeRugMagnet])
	// Heavy rug exposure disqualifies diamond hands even with slow exits.
	assert.False(t, badgeIDSet(rug)[BadgeDiamondHands])

	noVerdict := ComputeBadges(BadgeSignals{Pump: nil})
	assert.False(t, badgeIDSet(noVerdict)[BadgeDiamondHands])
	assert.False(t, badgeIDSet(noVerdict)[BadgeMegaJeet])
	assert.False(t, badgeIDSet(noVerdict)[BadgeRugMagnet])
}

func TestComputeBadges_CommunityTrusted(t *testing.T) {
	assert.False(t, badgeIDSet(ComputeBadges(BadgeSignals{Registered: false, Endorsements: 5}))[BadgeCommunityTrusted])
	assert.False(t, badgeIDSet(ComputeBadges(BadgeSignals{Registered: true, Endorsements: 2}))[BadgeCommunityTrusted])
	assert.True(t, badgeIDSet(ComputeBadges(BadgeSignals{Registered: true, Endorsements: 3}))[BadgeCommunityTrusted])
}

func TestSystemScore(t *testing.T) {
	badges := ComputeBadges(BadgeSignals{Balance: 20, TxCount: 2000, TokenDiversity: 15})
	require.Len(t, badges, 3)

	// whale 10 + og 8 + dev 8; zero-weight behavior badges would add nothing.
	assert.Equal(t, 26, SystemScore(badges))
	assert.Equal(t, 0.0, SocialScore(badges))
}

func TestSocialScore_RankDecay(t *testing.T) {
	community, ok := BadgeCommunityTrusted.Meta()
	require.True(t, ok)

	one := SocialScore([]Badge{community})
	assert.InDelta(t, 15.0, one, 0.001)

	// Additional social badges decay by rank: 15*1.0 + 15*0.6 + 15*0.3,
	// and a hypothetical fourth contributes nothing.
	four := SocialScore([]Badge{community, community, community, community})
	assert.InDelta(t, 15.0+9.0+4.5, four, 0.001)
}

func TestBadgeIDsRoundTrip(t *testing.T) {
	badges := ComputeBadges(BadgeSignals{Balance: 20, TokenDiversity: 15})
	ids := BadgeIDs(badges)
	assert.ElementsMatch(t, []string{"whale", "dev"}, ids)

	rehydrated := BadgesFromIDs(append(ids, "badge_from_the_future"))
	assert.Len(t, rehydrated, 2)
}

func TestBadgeMeta_UnknownID(t *testing.T) {
	_, ok := BadgeID("nope").Meta()
	assert.False(t, ok)
}
