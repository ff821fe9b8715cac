package engine

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pump-match/internal/helius"
)

// WalletSignals are the ephemeral per-request inputs to scoring. They are
// never persisted; only the score and badges derived from them are.
type WalletSignals struct {
	Balance           float64  `json:"balance"`
	TxCount           int      `json:"txCount"`
	FungibleTokens    int      `json:"fungibleTokens"`
	NonFungibleAssets int      `json:"nonFungibleAssets"`
	TokenDiversity    int      `json:"tokenDiversity"`
	WalletAgeDays     *float64 `json:"walletAgeDays"`
}

// DataProvider is the on-chain data boundary the engine consumes. The
// Helius client satisfies it in production.
type DataProvider interface {
	GetBalance(ctx context.Context, address string) (float64, error)
	GetOwnedAssets(ctx context.Context, address string, limit int) (*helius.AssetPage, error)
	// GetTransactionPage returns enriched transactions newest-first; before
	// continues pagination from the given signature.
	GetTransactionPage(ctx context.Context, address string, limit int, before string) ([]helius.EnhancedTransaction, error)
}

// gatherSignals issues the independent provider calls concurrently and
// fails each one closed on error: 0 balance, empty assets, the -1
// transaction-count sentinel. The returned notes describe the gaps so the
// analysis explanation can surface them.
func (a *Analyzer) gatherSignals(ctx context.Context, address string) (WalletSignals, []helius.EnhancedTransaction, []string) {
	var (
		balance float64
		assets  *helius.AssetPage
		txs     []helius.EnhancedTransaction
		txErr   error
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		balance, err = a.provider.GetBalance(gctx, address)
		if err != nil {
			a.appLogger.Warn("Balance fetch failed, scoring with 0", zap.String("wallet", address), zap.Error(err))
			balance = 0
		}
		return nil
	})

	g.Go(func() error {
		var err error
		assets, err = a.provider.GetOwnedAssets(gctx, address, a.cfg.AssetPageLimit)
		if err != nil {
			a.appLogger.Warn("Asset fetch failed, scoring with empty asset page", zap.String("wallet", address), zap.Error(err))
			assets = nil
		}
		return nil
	})

	g.Go(func() error {
		// Page cursors depend on the previous page's last item, so
		// pagination is sequential and bounded inside one goroutine.
		before := ""
		for page := 0; page < a.cfg.MaxTxPages; page++ {
			batch, err := a.provider.GetTransactionPage(gctx, address, a.cfg.TxPageLimit, before)
			if err != nil {
				a.appLogger.Warn("Transaction page fetch failed", zap.String("wallet", address), zap.Int("page", page), zap.Error(err))
				txErr = err
				break
			}
			if len(batch) == 0 {
				break
			}
			txs = append(txs, batch...)
			if len(batch) < a.cfg.TxPageLimit {
				break
			}
			before = batch[len(batch)-1].Signature
		}
		return nil
	})

	_ = g.Wait()

	var notes []string
	signals := WalletSignals{Balance: balance}

	if assets != nil {
		distinctFungible := make(map[string]struct{})
		for _, item := range assets.Items {
			if item.IsFungible() {
				signals.FungibleTokens++
				distinctFungible[item.ID] = struct{}{}
			} else {
				signals.NonFungibleAssets++
			}
		}
		signals.TokenDiversity = len(distinctFungible)
	} else {
		notes = append(notes, "asset data unavailable")
	}

	if txErr != nil {
		// Any pagination failure means the window is incomplete; the count
		// becomes the reserved sentinel. Transactions already fetched stay
		// valid input for position extraction.
		signals.TxCount = TxCountUnavailable
		notes = append(notes, "transaction history unavailable")
	} else {
		signals.TxCount = len(txs)
	}

	if age := walletAgeDays(txs, a.now()); age != nil {
		signals.WalletAgeDays = age
	}

	return signals, txs, notes
}

// walletAgeDays approximates wallet age from the oldest fetched timestamp.
// Nil when no first-activity timestamp could be derived from the window.
func walletAgeDays(txs []helius.EnhancedTransaction, now time.Time) *float64 {
	var oldest int64
	for _, tx := range txs {
		if tx.Timestamp > 0 && (oldest == 0 || tx.Timestamp < oldest) {
			oldest = tx.Timestamp
		}
	}
	if oldest == 0 {
		return nil
	}
	days := now.Sub(time.Unix(oldest, 0)).Hours() / 24
	if days < 0 {
		days = 0
	}
	return &days
}
