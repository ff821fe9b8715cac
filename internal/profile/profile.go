package profile

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Store lookups for wallets with no profile row.
var ErrNotFound = errors.New("profile not found")

// Role is the member-declared role shown on the profile card.
type Role string

const (
	RoleDev          Role = "DEV"
	RoleWhale        Role = "WHALE"
	RoleMarketing    Role = "MARKETING"
	RoleCommunity    Role = "COMMUNITY"
	RoleArtist       Role = "ARTIST"
	RoleNFTCollector Role = "NFT_COLLECTOR"
)

// Intent is what the member is currently looking for on the network.
type Intent string

const (
	IntentBuildSquad  Intent = "BUILD_SQUAD"
	IntentJoinProject Intent = "JOIN_PROJECT"
	IntentHireTalent  Intent = "HIRE_TALENT"
	IntentFindFunding Intent = "FIND_FUNDING"
	IntentNetwork     Intent = "NETWORK"
)

// MemberProfile is the durable record for a registered network member,
// keyed by wallet address. Trust score and badges are snapshots written
// back by the analysis engine; the engine recomputes them from signals on
// every run.
type MemberProfile struct {
	WalletAddress string        `gorm:"primaryKey" json:"walletAddress"`
	TrustScore    int           `gorm:"not null;default:0" json:"trustScore"`
	Badges        []string      `gorm:"serializer:json" json:"badges"`
	Role          Role          `json:"role"`
	Intent        Intent        `json:"intent"`
	Tags          []string      `gorm:"serializer:json" json:"tags"`
	IdentityState IdentityState `gorm:"not null;default:GHOST" json:"identityState"`

	TelegramHandle string `json:"telegramHandle,omitempty"`
	XHandle        string `json:"xHandle,omitempty"`
	DiscordHandle  string `json:"discordHandle,omitempty"`

	// OptedIn gates whether the member appears in other members' candidate pools.
	OptedIn       bool       `gorm:"not null;default:false" json:"optedIn"`
	MinTrustScore *int       `json:"minTrustScore,omitempty"`
	LastActiveAt  *time.Time `json:"lastActiveAt,omitempty"`

	MatchSnapshot   []byte     `gorm:"type:jsonb" json:"-"`
	MatchSnapshotAt *time.Time `json:"matchSnapshotAt,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

// Endorsement records one member vouching for another. The pair is unique
// so repeat endorsements do not inflate the count.
type Endorsement struct {
	ID              uint      `gorm:"primaryKey"`
	WalletAddress   string    `gorm:"not null;uniqueIndex:idx_endorsement_pair"`
	EndorserAddress string    `gorm:"not null;uniqueIndex:idx_endorsement_pair"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
}

// HasBadge reports whether the stored badge snapshot contains the given id.
func (p *MemberProfile) HasBadge(id string) bool {
	for _, b := range p.Badges {
		if b == id {
			return true
		}
	}
	return false
}

// ContactChannels returns the non-empty linked contact handles.
func (p *MemberProfile) ContactChannels() []string {
	var out []string
	for _, h := range []string{p.TelegramHandle, p.XHandle, p.DiscordHandle} {
		if h != "" {
			out = append(out, h)
		}
	}
	return out
}

// Patch carries a partial profile update. Nil fields are left untouched by
// the store, matching the merge semantics of the upsert.
type Patch struct {
	TrustScore    *int
	Badges        *[]string
	Role          *Role
	Intent        *Intent
	Tags          *[]string
	IdentityState *IdentityState

	TelegramHandle *string
	XHandle        *string
	DiscordHandle  *string

	OptedIn       *bool
	MinTrustScore *int
	LastActiveAt  *time.Time

	MatchSnapshot   []byte
	MatchSnapshotAt *time.Time
}

// Store is the profile persistence boundary consumed by the engine.
type Store interface {
	// GetProfile returns ErrNotFound for wallets that never registered.
	GetProfile(ctx context.Context, address string) (*MemberProfile, error)
	// UpsertProfile merges the patch into the row for address, creating it
	// if needed. UpdatedAt is server-set.
	UpsertProfile(ctx context.Context, address string, patch Patch) error
	// FindCandidates returns opted-in, recently-active members excluding
	// the given address.
	FindCandidates(ctx context.Context, excludeAddress string, limit int) ([]MemberProfile, error)
	GetEndorsementCount(ctx context.Context, address string) (int, error)
}
