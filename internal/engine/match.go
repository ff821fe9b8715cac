package engine

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"pump-match/internal/profile"
)

// ReasonStatus tags a reason as a contributing or a missing factor.
type ReasonStatus string

const (
	StatusPositive ReasonStatus = "POSITIVE"
	StatusMissing  ReasonStatus = "MISSING"
)

// ReasonImpact grades how much a factor moves the confidence.
type ReasonImpact string

const (
	ImpactLow    ReasonImpact = "LOW"
	ImpactMedium ReasonImpact = "MEDIUM"
	ImpactHigh   ReasonImpact = "HIGH"
)

// ReasonCode is the closed set of machine-readable match factors.
type ReasonCode string

const (
	ReasonReciprocityFloor ReasonCode = "RECIPROCITY_FLOOR"
	ReasonBadgeStrength    ReasonCode = "BADGE_STRENGTH"
	ReasonRoleSynergy      ReasonCode = "ROLE_SYNERGY"
	ReasonIntentAligned    ReasonCode = "INTENT_ALIGNED"
	ReasonSharedInterests  ReasonCode = "SHARED_INTERESTS"
	ReasonRecentlyActive   ReasonCode = "RECENTLY_ACTIVE"
	ReasonCommunityTrusted ReasonCode = "COMMUNITY_TRUSTED"
	ReasonVerifiedIdentity ReasonCode = "VERIFIED_IDENTITY"
	ReasonNoSocialProof    ReasonCode = "NO_SOCIAL_PROOF"
)

// MatchReason is one scored factor in a match decision.
type MatchReason struct {
	Code   ReasonCode   `json:"code"`
	Status ReasonStatus `json:"status"`
	Impact ReasonImpact `json:"impact"`
	Detail string       `json:"detail"`
}

// MatchBreakdown is the numeric decomposition of a confidence value.
type MatchBreakdown struct {
	Base               float64 `json:"base"`
	BadgeBonus         float64 `json:"badgeBonus"`
	ContextBonus       float64 `json:"contextBonus"`
	ActivityMultiplier float64 `json:"activityMultiplier"`
}

// MatchResult is the full outcome for one self/candidate pair.
type MatchResult struct {
	Confidence int            `json:"confidence"`
	Reason     string         `json:"reason"`
	Breakdown  MatchBreakdown `json:"breakdown"`
	Reasons    []MatchReason  `json:"reasons"`
}

// SelfContext carries the matching member's profile together with the live
// wallet signals their role and interests are inferred from. Intent is the
// intent declared for this matching run; it never feeds the analysis cache.
type SelfContext struct {
	Profile           *profile.MemberProfile
	Balance           float64
	TokenDiversity    int
	FungibleTokens    int
	NonFungibleAssets int
	Intent            profile.Intent
}

const (
	maxConfidence   = 98
	maxBadgeBonus   = 25.0
	maxRoleIntent   = 20.0
	tagOverlapBonus = 10.0
)

// roleSynergy is the asymmetric (inferred self role, candidate role) bonus
// table. Inference only yields WHALE, DEV or COMMUNITY; the remaining rows
// keep the full pairing data for declared-role callers.
var roleSynergy = map[profile.Role]map[profile.Role]int{
	profile.RoleDev: {
		profile.RoleWhale:     20,
		profile.RoleMarketing: 20,
		profile.RoleDev:       5,
		profile.RoleCommunity: 10,
	},
	profile.RoleWhale: {
		profile.RoleDev:       25,
		profile.RoleArtist:    15,
		profile.RoleMarketing: 18,
		profile.RoleCommunity: 10,
		profile.RoleWhale:     10,
	},
	profile.RoleNFTCollector: {
		profile.RoleArtist: 15,
	},
	profile.RoleMarketing: {
		profile.RoleDev:       20,
		profile.RoleWhale:     18,
		profile.RoleCommunity: 12,
	},
	profile.RoleCommunity: {
		profile.RoleMarketing: 12,
		profile.RoleWhale:     10,
		profile.RoleCommunity: 10,
	},
}

type intentPair struct {
	a, b profile.Intent
}

func pairOf(a, b profile.Intent) intentPair {
	if b < a {
		a, b = b, a
	}
	return intentPair{a: a, b: b}
}

// intentBonusTable is symmetric over the intent enum. Pairs outside the
// table are compatible-unknown: no bonus, no penalty.
var intentBonusTable = map[intentPair]int{
	pairOf(profile.IntentBuildSquad, profile.IntentJoinProject):  20,
	pairOf(profile.IntentHireTalent, profile.IntentJoinProject):  20,
	pairOf(profile.IntentBuildSquad, profile.IntentHireTalent):   15,
	pairOf(profile.IntentFindFunding, profile.IntentBuildSquad):  15,
	pairOf(profile.IntentNetwork, profile.IntentNetwork):         10,
	pairOf(profile.IntentFindFunding, profile.IntentFindFunding): 0,
}

// MatchConfidence computes the 0-98 compatibility between self and one
// candidate, with the numeric breakdown and ordered reason codes.
func MatchConfidence(self SelfContext, candidate *profile.MemberProfile, now time.Time) MatchResult {
	// Reciprocity gate: only the candidate's declared floor is checked.
	if candidate.MinTrustScore != nil && self.Profile.TrustScore < *candidate.MinTrustScore {
		return MatchResult{
			Confidence: 0,
			Reason:     "Below the candidate's minimum trust score",
			Reasons: []MatchReason{{
				Code:   ReasonReciprocityFloor,
				Status: StatusMissing,
				Impact: ImpactHigh,
				Detail: fmt.Sprintf("candidate requires trust score of at least %d", *candidate.MinTrustScore),
			}},
		}
	}

	var reasons []MatchReason

	candidateBadges := BadgesFromIDs(candidate.Badges)
	badgeBonus := float64(SystemScore(candidateBadges)) + SocialScore(candidateBadges)
	if badgeBonus > maxBadgeBonus {
		badgeBonus = maxBadgeBonus
	}
	if badgeBonus > 0 {
		reasons = append(reasons, MatchReason{ReasonBadgeStrength, StatusPositive, ImpactMedium,
			fmt.Sprintf("candidate badges add %.1f", badgeBonus)})
	} else {
		reasons = append(reasons, MatchReason{ReasonBadgeStrength, StatusMissing, ImpactLow, "candidate has no scored badges"})
	}

	selfRole := inferRole(self)
	roleBonus := roleSynergy[selfRole][candidate.Role]
	if roleBonus > 0 {
		reasons = append(reasons, MatchReason{ReasonRoleSynergy, StatusPositive, ImpactMedium,
			fmt.Sprintf("%s/%s role synergy", selfRole, candidate.Role)})
	} else {
		reasons = append(reasons, MatchReason{ReasonRoleSynergy, StatusMissing, ImpactLow, "no role synergy"})
	}

	intentBonus := 0
	if self.Intent != "" && candidate.Intent != "" {
		bonus, known := intentBonusTable[pairOf(self.Intent, candidate.Intent)]
		if known && bonus > 0 {
			intentBonus = bonus
			reasons = append(reasons, MatchReason{ReasonIntentAligned, StatusPositive, ImpactHigh,
				fmt.Sprintf("%s pairs with %s", self.Intent, candidate.Intent)})
		} else {
			reasons = append(reasons, MatchReason{ReasonIntentAligned, StatusMissing, ImpactMedium,
				fmt.Sprintf("%s does not pair with %s", self.Intent, candidate.Intent)})
		}
	}

	contextBonus := float64(roleBonus + intentBonus)
	if contextBonus > maxRoleIntent {
		contextBonus = maxRoleIntent
	}

	if hasWholeWordOverlap(inferInterests(self.FungibleTokens, self.NonFungibleAssets), candidate.Tags) {
		contextBonus += tagOverlapBonus
		reasons = append(reasons, MatchReason{ReasonSharedInterests, StatusPositive, ImpactMedium, "shared on-chain interests"})
	} else {
		reasons = append(reasons, MatchReason{ReasonSharedInterests, StatusMissing, ImpactLow, "no shared interests"})
	}

	// Weak-link base: the lower-trust party dominates so high-trust members
	// are not averaged into low-quality matches.
	selfScore := float64(self.Profile.TrustScore)
	candidateScore := float64(candidate.TrustScore)
	base := math.Min(selfScore, candidateScore)*0.7 + math.Max(selfScore, candidateScore)*0.3

	multiplier := activityMultiplier(candidate.LastActiveAt, now)
	if multiplier < 1.0 {
		reasons = append(reasons, MatchReason{ReasonRecentlyActive, StatusMissing, ImpactLow, "candidate activity decay applied"})
	} else {
		reasons = append(reasons, MatchReason{ReasonRecentlyActive, StatusPositive, ImpactLow, "candidate active within 24h"})
	}

	raw := (base + badgeBonus + contextBonus) * multiplier
	confidence := int(math.Round(raw))
	if confidence > maxConfidence {
		confidence = maxConfidence
	}
	if confidence < 0 {
		confidence = 0
	}

	// Social-proof reasons are display-only, outside the numeric formula.
	switch {
	case candidate.HasBadge(string(BadgeCommunityTrusted)):
		reasons = append(reasons, MatchReason{ReasonCommunityTrusted, StatusPositive, ImpactLow, "endorsed by the community"})
	case candidate.IdentityState == profile.IdentityVerified:
		reasons = append(reasons, MatchReason{ReasonVerifiedIdentity, StatusPositive, ImpactLow, "verified identity"})
	default:
		reasons = append(reasons, MatchReason{ReasonNoSocialProof, StatusMissing, ImpactLow, "no social proof yet"})
	}

	return MatchResult{
		Confidence: confidence,
		Reason:     summarizeReasons(reasons),
		Breakdown: MatchBreakdown{
			Base:               base,
			BadgeBonus:         badgeBonus,
			ContextBonus:       contextBonus,
			ActivityMultiplier: multiplier,
		},
		Reasons: reasons,
	}
}

// inferRole derives the matching member's role from live signals rather
// than their stored profile.
func inferRole(self SelfContext) profile.Role {
	if self.Balance > whaleBalanceThreshold || (self.Profile != nil && self.Profile.HasBadge(string(BadgeWhale))) {
		return profile.RoleWhale
	}
	if self.TokenDiversity > devDiversityThreshold {
		return profile.RoleDev
	}
	return profile.RoleCommunity
}

// inferInterests derives coarse interest labels from asset counts.
func inferInterests(fungibleTokens, nonFungibleAssets int) []string {
	var out []string
	if nonFungibleAssets >= 3 {
		out = append(out, "NFT")
	}
	if fungibleTokens >= 5 {
		out = append(out, "DeFi")
	}
	if fungibleTokens >= 10 {
		out = append(out, "Trading")
	}
	return out
}

// hasWholeWordOverlap reports whether any inferred interest equals a whole
// word of any candidate tag. Substring containment is not enough: "fi"
// must not match "DeFi".
func hasWholeWordOverlap(interests []string, tags []string) bool {
	if len(interests) == 0 || len(tags) == 0 {
		return false
	}
	for _, tag := range tags {
		for _, word := range splitWords(tag) {
			for _, interest := range interests {
				if strings.EqualFold(word, interest) {
					return true
				}
			}
		}
	}
	return false
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func activityMultiplier(lastActive *time.Time, now time.Time) float64 {
	if lastActive == nil {
		return 0.7
	}
	age := now.Sub(*lastActive)
	switch {
	case age <= 24*time.Hour:
		return 1.0
	case age <= 72*time.Hour:
		return 0.9
	default:
		return 0.7
	}
}

func summarizeReasons(reasons []MatchReason) string {
	var parts []string
	for _, r := range reasons {
		if r.Status == StatusPositive && r.Impact != ImpactLow {
			parts = append(parts, r.Detail)
		}
	}
	if len(parts) == 0 {
		return "Baseline trust compatibility"
	}
	return strings.Join(parts, "; ")
}
