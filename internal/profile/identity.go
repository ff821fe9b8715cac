package profile

// IdentityState is the assurance level of a member's off-chain identity.
// The hierarchy is strictly one-way: GHOST -> REACHABLE -> VERIFIED.
type IdentityState string

const (
	// IdentityGhost is the default state: no linked contact channel.
	IdentityGhost IdentityState = "GHOST"
	// IdentityReachable means at least one contact channel is linked.
	IdentityReachable IdentityState = "REACHABLE"
	// IdentityVerified means the member passed a higher-assurance check.
	// A verified member never regresses, whatever happens to their channels.
	IdentityVerified IdentityState = "VERIFIED"
)

// LinkContact returns the state after linking a contact channel. Only
// GHOST moves; REACHABLE and VERIFIED are unchanged.
func (s IdentityState) LinkContact() IdentityState {
	if s == IdentityGhost || s == "" {
		return IdentityReachable
	}
	return s
}

// RemoveAllContacts returns the state after the last contact channel is
// removed. Only REACHABLE reverts to GHOST; VERIFIED is immune.
func (s IdentityState) RemoveAllContacts() IdentityState {
	if s == IdentityReachable {
		return IdentityGhost
	}
	return s
}

// PassVerification moves any state to VERIFIED. Irreversible.
func (s IdentityState) PassVerification() IdentityState {
	return IdentityVerified
}

// LinkContactChannel sets one of the profile's contact handles and advances
// the identity state.
func (p *MemberProfile) LinkContactChannel(channel, handle string) {
	switch channel {
	case "telegram":
		p.TelegramHandle = handle
	case "x", "twitter":
		p.XHandle = handle
	case "discord":
		p.DiscordHandle = handle
	default:
		return
	}
	p.IdentityState = p.IdentityState.LinkContact()
}

// RemoveContactChannel clears one of the profile's contact handles. When no
// channel remains the identity state falls back per RemoveAllContacts.
func (p *MemberProfile) RemoveContactChannel(channel string) {
	switch channel {
	case "telegram":
		p.TelegramHandle = ""
	case "x", "twitter":
		p.XHandle = ""
	case "discord":
		p.DiscordHandle = ""
	default:
		return
	}
	if len(p.ContactChannels()) == 0 {
		p.IdentityState = p.IdentityState.RemoveAllContacts()
	}
}
