package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"pump-match/internal/profile"
)

// candidateActivityWindow scopes FindCandidates to recently-active members;
// staleness decay beyond this window is not the matcher's concern.
const candidateActivityWindow = 7 * 24 * time.Hour

// ProfileStore implements profile.Store on a GORM-managed Postgres table.
type ProfileStore struct {
	db *gorm.DB
}

func NewProfileStore(db *gorm.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func (s *ProfileStore) GetProfile(ctx context.Context, address string) (*profile.MemberProfile, error) {
	var row profile.MemberProfile
	result := s.db.WithContext(ctx).Where("wallet_address = ?", address).First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, profile.ErrNotFound
		}
		return nil, fmt.Errorf("profile lookup for %s failed: %w", address, result.Error)
	}
	return &row, nil
}

// UpsertProfile loads (or creates) the row for address and merges the patch
// on top of it. Nil patch fields leave the stored values untouched; the
// whole row is then written back, so concurrent writers resolve
// last-write-wins.
func (s *ProfileStore) UpsertProfile(ctx context.Context, address string, patch profile.Patch) error {
	var row profile.MemberProfile
	result := s.db.WithContext(ctx).
		Where(profile.MemberProfile{WalletAddress: address}).
		Attrs(profile.MemberProfile{IdentityState: profile.IdentityGhost}).
		FirstOrCreate(&row)
	if result.Error != nil {
		return fmt.Errorf("profile upsert for %s failed: %w", address, result.Error)
	}

	applyPatch(&row, patch)

	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("profile save for %s failed: %w", address, err)
	}
	return nil
}

func applyPatch(row *profile.MemberProfile, patch profile.Patch) {
	if patch.TrustScore != nil {
		row.TrustScore = *patch.TrustScore
	}
	if patch.Badges != nil {
		row.Badges = *patch.Badges
	}
	if patch.Role != nil {
		row.Role = *patch.Role
	}
	if patch.Intent != nil {
		row.Intent = *patch.Intent
	}
	if patch.Tags != nil {
		row.Tags = *patch.Tags
	}
	if patch.IdentityState != nil {
		row.IdentityState = *patch.IdentityState
	}
	if patch.TelegramHandle != nil {
		row.TelegramHandle = *patch.TelegramHandle
	}
	if patch.XHandle != nil {
		row.XHandle = *patch.XHandle
	}
	if patch.DiscordHandle != nil {
		row.DiscordHandle = *patch.DiscordHandle
	}
	if patch.OptedIn != nil {
		row.OptedIn = *patch.OptedIn
	}
	if patch.MinTrustScore != nil {
		row.MinTrustScore = patch.MinTrustScore
	}
	if patch.LastActiveAt != nil {
		row.LastActiveAt = patch.LastActiveAt
	}
	if patch.MatchSnapshot != nil {
		row.MatchSnapshot = patch.MatchSnapshot
	}
	if patch.MatchSnapshotAt != nil {
		row.MatchSnapshotAt = patch.MatchSnapshotAt
	}
}

func (s *ProfileStore) FindCandidates(ctx context.Context, excludeAddress string, limit int) ([]profile.MemberProfile, error) {
	if limit <= 0 {
		limit = 25
	}
	cutoff := time.Now().Add(-candidateActivityWindow)

	var rows []profile.MemberProfile
	err := s.db.WithContext(ctx).
		Where("wallet_address <> ?", excludeAddress).
		Where("opted_in = ?", true).
		Where("last_active_at > ?", cutoff).
		Order("last_active_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("candidate scan failed: %w", err)
	}
	return rows, nil
}

func (s *ProfileStore) GetEndorsementCount(ctx context.Context, address string) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&profile.Endorsement{}).
		Where("wallet_address = ?", address).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("endorsement count for %s failed: %w", address, err)
	}
	return int(count), nil
}
