package app

import (
	"errors"
	"slices"
)

var (
	ErrNotInvited       = errors.New("player was not invited to this table")
	ErrAlreadyJoined    = errors.New("player already joined this table")
	ErrInvitationFull   = errors.New("table is full")
	ErrPublicInvitation = errors.New("table is public")
)

// Invitation collects the players of a table before the match starts. A private
// invitation only admits the listed invitees; a public one admits anybody.
type Invitation struct {
	Creator    string
	MaxPlayers int

	invitees map[string]bool
	accepted []string
}

// NewInvitation opens a table for creator. A nil invitees list makes it public.
// maxPlayers is clamped to the table limits.
func NewInvitation(creator string, invitees []string, maxPlayers int) *Invitation {
	maxPlayers = min(max(maxPlayers, MinPlayersToStartGame), MaxPlayersPerMatch)
	inv := &Invitation{
		Creator:    creator,
		MaxPlayers: maxPlayers,
	}
	if creator != "" {
		inv.accepted = []string{creator}
	}
	if invitees != nil {
		inv.invitees = make(map[string]bool, len(invitees))
		for _, id := range invitees {
			inv.invitees[id] = true
		}
	}
	return inv
}

// Private reports whether only invitees may join.
func (i *Invitation) Private() bool { return i.invitees != nil }

// Full reports whether every seat is taken.
func (i *Invitation) Full() bool { return len(i.accepted) >= i.MaxPlayers }

// Ready reports whether enough players joined to start.
func (i *Invitation) Ready() bool { return len(i.accepted) >= MinPlayersToStartGame }

// Invited reports whether userID may accept.
func (i *Invitation) Invited(userID string) bool {
	return !i.Private() || i.invitees[userID] || userID == i.Creator
}

// Accept seats userID at the table.
func (i *Invitation) Accept(userID string) error {
	if !i.Invited(userID) {
		return ErrNotInvited
	}
	if slices.Contains(i.accepted, userID) {
		return ErrAlreadyJoined
	}
	if i.Full() {
		return ErrInvitationFull
	}
	i.accepted = append(i.accepted, userID)
	return nil
}

// Invite adds userID to a private table's guest list.
func (i *Invitation) Invite(userID string) error {
	if !i.Private() {
		return ErrPublicInvitation
	}
	i.invitees[userID] = true
	return nil
}

// Withdraw frees the seat userID accepted. The creator keeps their seat.
func (i *Invitation) Withdraw(userID string) {
	if userID == i.Creator {
		return
	}
	i.accepted = slices.DeleteFunc(i.accepted, func(id string) bool { return id == userID })
}

// Release frees the seat of a player who left the table, the creator included. The
// creator may still accept again later.
func (i *Invitation) Release(userID string) {
	i.accepted = slices.DeleteFunc(i.accepted, func(id string) bool { return id == userID })
}

// Joined reports whether userID holds a seat.
func (i *Invitation) Joined(userID string) bool {
	return slices.Contains(i.accepted, userID)
}

// Invitees returns the guest list of a private table, sorted.
func (i *Invitation) Invitees() []string {
	out := make([]string, 0, len(i.invitees))
	for id := range i.invitees {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Players returns the seated players in acceptance order, creator first.
func (i *Invitation) Players() []string {
	return slices.Clone(i.accepted)
}
