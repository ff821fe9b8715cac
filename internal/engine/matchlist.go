package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"pump-match/internal/profile"
)

// MatchProfile pairs one candidate with the confidence computed against
// the calling member.
type MatchProfile struct {
	Candidate  profile.MemberProfile `json:"candidate"`
	Confidence int                   `json:"confidence"`
	Reason     string                `json:"reason"`
	Breakdown  MatchBreakdown        `json:"breakdown"`
	Reasons    []MatchReason         `json:"reasons"`
}

// Ties inside this confidence band are broken by identity state and
// system score instead of raw ordering.
const tieBand = 2

// FindMatches scores every candidate in the pool against the caller and
// returns the ranked list. The declared intent applies on top of the
// cached analysis; it never becomes part of the cache key. The computed
// list is snapshotted onto the caller's profile best-effort.
func (a *Analyzer) FindMatches(ctx context.Context, address string, intent profile.Intent, limit int) ([]MatchProfile, error) {
	if limit <= 0 {
		limit = a.cfg.CandidateLimit
	}

	analysis, err := a.AnalyzeWallet(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("wallet analysis for %s failed: %w", address, err)
	}

	selfProfile, err := a.store.GetProfile(ctx, address)
	if err != nil {
		if !errors.Is(err, profile.ErrNotFound) {
			a.appLogger.Warn("Self profile lookup failed, matching on analysis snapshot", zap.String("wallet", address), zap.Error(err))
		}
		selfProfile = &profile.MemberProfile{
			WalletAddress: address,
			TrustScore:    analysis.Score.Total,
			Badges:        BadgeIDs(analysis.Badges),
		}
	}
	if intent == "" {
		intent = selfProfile.Intent
	}

	candidates, err := a.store.FindCandidates(ctx, address, limit)
	if err != nil {
		return nil, fmt.Errorf("candidate scan for %s failed: %w", address, err)
	}

	self := SelfContext{
		Profile:           selfProfile,
		Balance:           analysis.Signals.Balance,
		TokenDiversity:    analysis.Signals.TokenDiversity,
		FungibleTokens:    analysis.Signals.FungibleTokens,
		NonFungibleAssets: analysis.Signals.NonFungibleAssets,
		Intent:            intent,
	}

	now := a.now()
	matches := make([]MatchProfile, 0, len(candidates))
	for i := range candidates {
		result := MatchConfidence(self, &candidates[i], now)
		matches = append(matches, MatchProfile{
			Candidate:  candidates[i],
			Confidence: result.Confidence,
			Reason:     result.Reason,
			Breakdown:  result.Breakdown,
			Reasons:    result.Reasons,
		})
	}

	sortMatches(matches)

	if snapshot, marshalErr := json.Marshal(matches); marshalErr == nil {
		patch := profile.Patch{MatchSnapshot: snapshot, MatchSnapshotAt: &now}
		if upsertErr := a.store.UpsertProfile(ctx, address, patch); upsertErr != nil {
			a.appLogger.Warn("Failed to persist match snapshot", zap.String("wallet", address), zap.Error(upsertErr))
		}
	}

	return matches, nil
}

// sortMatches ranks by confidence descending; within a 2-point band,
// VERIFIED candidates come first, then higher system score.
func sortMatches(matches []MatchProfile) {
	sort.SliceStable(matches, func(i, j int) bool {
		left, right := matches[i], matches[j]
		diff := left.Confidence - right.Confidence
		if diff > tieBand {
			return true
		}
		if diff < -tieBand {
			return false
		}

		leftVerified := left.Candidate.IdentityState == profile.IdentityVerified
		rightVerified := right.Candidate.IdentityState == profile.IdentityVerified
		if leftVerified != rightVerified {
			return leftVerified
		}

		leftSystem := SystemScore(BadgesFromIDs(left.Candidate.Badges))
		rightSystem := SystemScore(BadgesFromIDs(right.Candidate.Badges))
		if leftSystem != rightSystem {
			return leftSystem > rightSystem
		}
		return left.Confidence > right.Confidence
	})
}
