package engine

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"pump-match/internal/cache"
	"pump-match/internal/profile"
	"pump-match/shared/logger"
)

// Config holds the engine tunables.
type Config struct {
	TxPageLimit    int
	MaxTxPages     int
	AssetPageLimit int
	CandidateLimit int
	// PumpProgramID overrides the default pump.fun program id, mainly for
	// devnet deployments.
	PumpProgramID string
}

func (c Config) withDefaults() Config {
	if c.TxPageLimit <= 0 || c.TxPageLimit > 100 {
		c.TxPageLimit = 100
	}
	if c.MaxTxPages <= 0 {
		c.MaxTxPages = 3
	}
	if c.AssetPageLimit <= 0 {
		c.AssetPageLimit = 200
	}
	if c.CandidateLimit <= 0 {
		c.CandidateLimit = 25
	}
	return c
}

// Analyzer runs the full wallet analysis pipeline: signals, positions,
// trust score, badges, persistence. It holds no per-request state, so one
// Analyzer serves concurrent requests.
type Analyzer struct {
	provider  DataProvider
	store     profile.Store
	memo      cache.Cache
	cfg       Config
	appLogger *logger.Logger
	now       func() time.Time
}

func NewAnalyzer(provider DataProvider, store profile.Store, memo cache.Cache, cfg Config, appLogger *logger.Logger) *Analyzer {
	if memo == nil {
		memo = cache.Noop{}
	}
	return &Analyzer{
		provider:  provider,
		store:     store,
		memo:      memo,
		cfg:       cfg.withDefaults(),
		appLogger: appLogger,
		now:       time.Now,
	}
}

// WalletAnalysis is the full derived view of one wallet.
type WalletAnalysis struct {
	Address       string                `json:"address"`
	Registered    bool                  `json:"registered"`
	IdentityState profile.IdentityState `json:"identityState"`
	Signals       WalletSignals         `json:"signals"`
	Pump          *PumpStats            `json:"pumpStats"`
	Score         ScoreBreakdown        `json:"score"`
	Badges        []Badge               `json:"badges"`
	SystemScore   int                   `json:"systemScore"`
	SocialScore   float64               `json:"socialScore"`
	AnalyzedAt    time.Time             `json:"analyzedAt"`
}

// Cache keys derive from the wallet address alone. Request parameters like
// a declared intent must never widen the key space.
func analysisCacheKey(address string) string {
	return "wallet:analysis:" + address
}

// AnalyzeWallet produces the trust score and badges for one address. The
// caller is trusted to have validated the address. Upstream failures never
// abort the analysis; the affected signals fall back to their safe
// defaults and the gap is noted in the explanation.
func (a *Analyzer) AnalyzeWallet(ctx context.Context, address string) (*WalletAnalysis, error) {
	key := analysisCacheKey(address)
	if data, ok := a.memo.Get(ctx, key); ok {
		var cached WalletAnalysis
		if err := json.Unmarshal(data, &cached); err == nil {
			a.appLogger.Debug("Served wallet analysis from cache", zap.String("wallet", address))
			return &cached, nil
		}
		a.appLogger.Warn("Discarding undecodable cached analysis", zap.String("wallet", address))
	}

	now := a.now()
	signals, txs, gapNotes := a.gatherSignals(ctx, address)
	pump := ExtractPumpStats(txs, address, a.cfg.PumpProgramID, now)
	score := CalculateTrustScore(signals.Balance, signals.TxCount, signals.TokenDiversity, pump)
	score.Explanation = append(score.Explanation, gapNotes...)

	registered := false
	identity := profile.IdentityGhost
	endorsements := 0
	prof, err := a.store.GetProfile(ctx, address)
	switch {
	case err == nil:
		registered = true
		identity = prof.IdentityState
		if count, countErr := a.store.GetEndorsementCount(ctx, address); countErr == nil {
			endorsements = count
		} else {
			a.appLogger.Warn("Endorsement count unavailable, community badge skipped", zap.String("wallet", address), zap.Error(countErr))
		}
	case errors.Is(err, profile.ErrNotFound):
		// Unregistered wallet: badges come from signals alone.
	default:
		a.appLogger.Warn("Profile lookup failed, treating wallet as unregistered", zap.String("wallet", address), zap.Error(err))
	}

	badges := ComputeBadges(BadgeSignals{
		Balance:        signals.Balance,
		TxCount:        signals.TxCount,
		TokenDiversity: signals.TokenDiversity,
		Pump:           pump,
		Registered:     registered,
		Endorsements:   endorsements,
	})

	analysis := &WalletAnalysis{
		Address:       address,
		Registered:    registered,
		IdentityState: identity,
		Signals:       signals,
		Pump:          pump,
		Score:         score,
		Badges:        badges,
		SystemScore:   SystemScore(badges),
		SocialScore:   SocialScore(badges),
		AnalyzedAt:    now,
	}

	// Snapshot write is idempotent (last-write-wins on the address key), so
	// concurrent analyses of the same wallet are tolerated, not serialized.
	badgeIDs := BadgeIDs(badges)
	if err := a.store.UpsertProfile(ctx, address, profile.Patch{
		TrustScore: &score.Total,
		Badges:     &badgeIDs,
	}); err != nil {
		a.appLogger.Warn("Failed to persist analysis snapshot", zap.String("wallet", address), zap.Error(err))
	}

	if data, err := json.Marshal(analysis); err == nil {
		a.memo.Set(ctx, key, data)
	}

	return analysis, nil
}
