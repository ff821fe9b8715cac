package engine

import "sort"

// BadgeCategory splits badges into algorithmic (SYSTEM) and
// community-sourced (SOCIAL) traits.
type BadgeCategory string

const (
	CategorySystem BadgeCategory = "SYSTEM"
	CategorySocial BadgeCategory = "SOCIAL"
)

// BadgeID is the closed set of badge identifiers.
type BadgeID string

const (
	BadgeWhale            BadgeID = "whale"
	BadgeOGWallet         BadgeID = "og_wallet"
	BadgeDev              BadgeID = "dev"
	BadgeDiamondHands     BadgeID = "diamond_hands"
	BadgeMegaJeet         BadgeID = "mega_jeet"
	BadgeRugMagnet        BadgeID = "rug_magnet"
	BadgeCommunityTrusted BadgeID = "community_trusted"
)

// Badge is a named boolean trait with fixed per-id metadata.
type Badge struct {
	ID       BadgeID       `json:"id"`
	Category BadgeCategory `json:"category"`
	Weight   int           `json:"weight"`
	Label    string        `json:"label"`
	Icon     string        `json:"icon"`
}

// Meta returns the compile-time metadata for a badge id. The second return
// is false for ids outside the closed set, so stale snapshot entries from
// older engine versions are dropped rather than panicking a lookup.
func (id BadgeID) Meta() (Badge, bool) {
	switch id {
	case BadgeWhale:
		return Badge{ID: id, Category: CategorySystem, Weight: 10, Label: "Whale", Icon: "badge-whale"}, true
	case BadgeOGWallet:
		return Badge{ID: id, Category: CategorySystem, Weight: 8, Label: "OG Wallet", Icon: "badge-og"}, true
	case BadgeDev:
		return Badge{ID: id, Category: CategorySystem, Weight: 8, Label: "Builder", Icon: "badge-dev"}, true
	case BadgeDiamondHands:
		return Badge{ID: id, Category: CategorySystem, Weight: 12, Label: "Diamond Hands", Icon: "badge-diamond"}, true
	case BadgeMegaJeet:
		return Badge{ID: id, Category: CategorySystem, Weight: 0, Label: "Mega Jeet", Icon: "badge-jeet"}, true
	case BadgeRugMagnet:
		return Badge{ID: id, Category: CategorySystem, Weight: 0, Label: "Rug Magnet", Icon: "badge-rug"}, true
	case BadgeCommunityTrusted:
		return Badge{ID: id, Category: CategorySocial, Weight: 15, Label: "Community Trusted", Icon: "badge-community"}, true
	}
	return Badge{}, false
}

const (
	whaleBalanceThreshold           = 10.0
	ogWalletTxThreshold             = 1000
	devDiversityThreshold           = 10
	megaJeetMinClosedPositions      = 3
	megaJeetMinJeetScore            = 90
	rugMagnetBadgeThreshold         = 40
	communityTrustedMinEndorsements = 3
)

// socialDecay weights SOCIAL badges by rank after sorting weight-descending.
// Ranks past the sequence contribute nothing: a few strong social signals
// beat a stack of weak ones.
var socialDecay = []float64{1.0, 0.6, 0.3}

// BadgeSignals are the raw inputs the badge predicates run over.
// Endorsements is only meaningful for registered members; it comes from the
// profile store, not from wallet signals.
type BadgeSignals struct {
	Balance        float64
	TxCount        int
	TokenDiversity int
	Pump           *PumpStats
	Registered     bool
	Endorsements   int
}

// ComputeBadges evaluates the full predicate set over the signals.
func ComputeBadges(in BadgeSignals) []Badge {
	var out []Badge
	add := func(id BadgeID) {
		meta, _ := id.Meta()
		out = append(out, meta)
	}

	if in.Balance > whaleBalanceThreshold {
		add(BadgeWhale)
	}
	if in.TxCount != TxCountUnavailable && in.TxCount > ogWalletTxThreshold {
		add(BadgeOGWallet)
	}
	if in.TokenDiversity > devDiversityThreshold {
		add(BadgeDev)
	}
	if p := in.Pump; p != nil {
		if p.ClosedPositions >= 1 && p.JeetScore <= 10 && p.RugMagnetScore < rugMagnetBadgeThreshold {
			add(BadgeDiamondHands)
		}
		if p.ClosedPositions >= megaJeetMinClosedPositions && p.JeetScore >= megaJeetMinJeetScore {
			add(BadgeMegaJeet)
		}
		if p.RugMagnetScore >= rugMagnetBadgeThreshold {
			add(BadgeRugMagnet)
		}
	}
	if in.Registered && in.Endorsements >= communityTrustedMinEndorsements {
		add(BadgeCommunityTrusted)
	}
	return out
}

// SystemScore is the flat sum of SYSTEM badge weights.
func SystemScore(badges []Badge) int {
	total := 0
	for _, b := range badges {
		if b.Category == CategorySystem {
			total += b.Weight
		}
	}
	return total
}

// SocialScore ranks SOCIAL badges by weight descending and sums them under
// the rank decay.
func SocialScore(badges []Badge) float64 {
	var weights []int
	for _, b := range badges {
		if b.Category == CategorySocial {
			weights = append(weights, b.Weight)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(weights)))

	total := 0.0
	for rank, w := range weights {
		if rank >= len(socialDecay) {
			break
		}
		total += float64(w) * socialDecay[rank]
	}
	return total
}

// BadgeIDs flattens badges to their ids for snapshot persistence.
func BadgeIDs(badges []Badge) []string {
	out := make([]string, 0, len(badges))
	for _, b := range badges {
		out = append(out, string(b.ID))
	}
	return out
}

// BadgesFromIDs rehydrates a stored id snapshot, dropping unknown ids.
func BadgesFromIDs(ids []string) []Badge {
	out := make([]Badge, 0, len(ids))
	for _, id := range ids {
		if meta, ok := BadgeID(id).Meta(); ok {
			out = append(out, meta)
		}
	}
	return out
}
