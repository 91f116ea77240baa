// Package domain contains core concepts of the raid system.
// This file defines participant identity and membership states.
// No runtime, network, or UI logic should be added here.
package domain

// ParticipantID is the opaque identity of a user taking part in a raid.
// The display name lives with the caller, the core only compares ids.
type ParticipantID string

func (p ParticipantID) String() string {
	return string(p)
}

// MembershipState is the position of a participant within one raid session.
type MembershipState int

const (
	NotInRaid MembershipState = iota
	PendingInvite
	Invited
	Attending
	Ready
)

func (s MembershipState) String() string {
	switch s {
	case PendingInvite:
		return "pending-invite"
	case Invited:
		return "invited"
	case Attending:
		return "attending"
	case Ready:
		return "ready"
	default:
		return "not-in-raid"
	}
}
