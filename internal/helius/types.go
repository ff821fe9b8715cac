package helius

import "encoding/json"

// TokenTransfer is one token movement inside an enhanced transaction.
// TokenAmount stays a json.Number: Helius occasionally emits malformed or
// non-numeric amounts and the consumer decides how to treat those records.
type TokenTransfer struct {
	Mint            string      `json:"mint"`
	FromUserAccount string      `json:"fromUserAccount"`
	ToUserAccount   string      `json:"toUserAccount"`
	TokenAmount     json.Number `json:"tokenAmount"`
}

// Instruction carries the program marker needed to attribute a transaction
// to a specific on-chain program.
type Instruction struct {
	ProgramID string `json:"programId"`
}

// EnhancedTransaction is one item of the Helius enriched transaction feed
// (/v0/addresses/{address}/transactions). Pages arrive newest-first.
type EnhancedTransaction struct {
	Signature      string          `json:"signature"`
	Timestamp      int64           `json:"timestamp"`
	Type           string          `json:"type"`
	Source         string          `json:"source"`
	TokenTransfers []TokenTransfer `json:"tokenTransfers"`
	Instructions   []Instruction   `json:"instructions"`
}

// Asset is one item of a getAssetsByOwner DAS response.
type Asset struct {
	ID        string `json:"id"`
	Interface string `json:"interface"`
}

// IsFungible reports whether the asset is a fungible token rather than an NFT.
func (a Asset) IsFungible() bool {
	return a.Interface == "FungibleToken" || a.Interface == "FungibleAsset"
}

// AssetPage is a bounded page of assets owned by one address.
type AssetPage struct {
	Total int     `json:"total"`
	Limit int     `json:"limit"`
	Page  int     `json:"page"`
	Items []Asset `json:"items"`
}

// AssetDetail is the subset of a getAsset DAS response consumed by
// governance flows (supply and authority checks).
type AssetDetail struct {
	ID        string `json:"id"`
	Interface string `json:"interface"`
	TokenInfo struct {
		Supply uint64 `json:"supply"`
		Symbol string `json:"symbol"`
	} `json:"token_info"`
	Authorities []struct {
		Address string   `json:"address"`
		Scopes  []string `json:"scopes"`
	} `json:"authorities"`
}

// UpdateAuthority returns the first authority holding the "full" scope, or
// the first authority at all when none is scoped that way.
func (a *AssetDetail) UpdateAuthority() string {
	for _, auth := range a.Authorities {
		for _, scope := range auth.Scopes {
			if scope == "full" {
				return auth.Address
			}
		}
	}
	if len(a.Authorities) > 0 {
		return a.Authorities[0].Address
	}
	return ""
}
