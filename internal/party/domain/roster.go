package domain

import (
	"iter"
	"strings"
	"time"
)

// AddOrUpdateMember joins userID or refreshes an existing roster entry,
// returning the updated party.
//
// An existing member keeps their ordinal position. A supplied note overwrites
// the stored one; a blank note keeps it. The waiting flag follows asWaiting,
// so a waiting member re-joining with asWaiting=false claims a playing slot,
// subject to capacity. New playing joins on a full slotted party fail with
// ErrCapacityExceeded; waiting joins are never capacity-limited.
func AddOrUpdateMember(party Party, userID, displayName, note string, asWaiting bool, now time.Time) (Party, error) {
	if party.Status == StatusClosed {
		return Party{}, ErrPartyClosed
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Party{}, ErrNotMember
	}
	displayName = strings.TrimSpace(displayName)
	note = truncateNote(strings.TrimSpace(note))

	updated := party.clone()
	if i, ok := updated.member(userID); ok {
		member := &updated.Members[i]
		if !asWaiting && member.Waiting && partyFull(updated) {
			return Party{}, ErrCapacityExceeded
		}
		if displayName != "" {
			member.DisplayName = displayName
		}
		if note != "" {
			member.Note = note
		}
		member.Waiting = asWaiting
		return updated, nil
	}

	if !asWaiting && partyFull(updated) {
		return Party{}, ErrCapacityExceeded
	}
	updated.Members = append(updated.Members, Membership{
		UserID:      userID,
		DisplayName: displayName,
		Note:        note,
		Waiting:     asWaiting,
		JoinedAt:    now.UTC(),
	})
	return updated, nil
}

// RemoveMember drops userID from the roster regardless of waiting state.
// Surviving members keep their relative order; slots are positional, not
// renumbered identifiers. Freed slots are not backfilled from the waiting
// list; waiting members claim them by re-joining. A closed party's roster
// is frozen.
func RemoveMember(party Party, userID string) (Party, error) {
	if party.Status == StatusClosed {
		return Party{}, ErrPartyClosed
	}
	i, ok := party.member(userID)
	if !ok {
		return Party{}, ErrNotMember
	}
	updated := party.clone()
	updated.Members = append(updated.Members[:i], updated.Members[i+1:]...)
	return updated, nil
}

// ReleaseWaiting removes a waiting-list entry. Unlike RemoveMember it fails
// with ErrNotWaiting when the member holds a playing slot, so the "stop
// waiting" action cannot silently eject a player.
func ReleaseWaiting(party Party, userID string) (Party, error) {
	if party.Status == StatusClosed {
		return Party{}, ErrPartyClosed
	}
	i, ok := party.member(userID)
	if !ok {
		return Party{}, ErrNotMember
	}
	if !party.Members[i].Waiting {
		return Party{}, ErrNotWaiting
	}
	return RemoveMember(party, userID)
}

// ForcedMember is one operator-supplied roster entry for ForceAddMembers.
type ForcedMember struct {
	UserID      string
	DisplayName string
}

// ForceAddMembers applies an operator roster action. In replace mode the
// playing roster becomes exactly the given users (waiting list untouched);
// in add mode new users append as playing members. Both modes validate
// capacity up front and change nothing on overflow.
func ForceAddMembers(party Party, users []ForcedMember, replace bool, now time.Time) (Party, error) {
	if party.Status == StatusClosed {
		return Party{}, ErrPartyClosed
	}

	deduped := make([]ForcedMember, 0, len(users))
	seen := make(map[string]bool, len(users))
	for _, user := range users {
		userID := strings.TrimSpace(user.UserID)
		if userID == "" || seen[userID] {
			continue
		}
		seen[userID] = true
		deduped = append(deduped, ForcedMember{
			UserID:      userID,
			DisplayName: strings.TrimSpace(user.DisplayName),
		})
	}

	updated := party.clone()
	now = now.UTC()

	if replace {
		if party.Category == CategorySlotted && len(deduped) > party.Capacity {
			return Party{}, ErrCapacityExceeded
		}
		var waiting []Membership
		previous := make(map[string]Membership, len(party.Members))
		for _, member := range party.Members {
			previous[member.UserID] = member
			if member.Waiting && !seen[member.UserID] {
				waiting = append(waiting, member)
			}
		}
		members := make([]Membership, 0, len(deduped)+len(waiting))
		for _, user := range deduped {
			member := Membership{UserID: user.UserID, DisplayName: user.DisplayName, JoinedAt: now}
			if prior, ok := previous[user.UserID]; ok {
				member.Note = prior.Note
				member.DisplayName = prior.DisplayName
				member.JoinedAt = prior.JoinedAt
				if user.DisplayName != "" {
					member.DisplayName = user.DisplayName
				}
			}
			members = append(members, member)
		}
		updated.Members = append(members, waiting...)
		return updated, nil
	}

	var added []Membership
	for _, user := range deduped {
		if _, ok := party.member(user.UserID); ok {
			continue
		}
		added = append(added, Membership{UserID: user.UserID, DisplayName: user.DisplayName, JoinedAt: now})
	}
	if party.Category == CategorySlotted && PlayingCount(party)+len(added) > party.Capacity {
		return Party{}, ErrCapacityExceeded
	}
	updated.Members = append(updated.Members, added...)
	return updated, nil
}

// PlayingCount counts members holding a capacity slot.
func PlayingCount(party Party) int {
	count := 0
	for _, member := range party.Members {
		if !member.Waiting {
			count++
		}
	}
	return count
}

// WaitingCount counts waiting-list members.
func WaitingCount(party Party) int {
	return len(party.Members) - PlayingCount(party)
}

func partyFull(party Party) bool {
	return party.Category == CategorySlotted && PlayingCount(party) >= party.Capacity
}

// Slot is one display row produced by Slots.
type Slot struct {
	// Index is the 1-based position within the playing or waiting section.
	Index int
	// Filled reports whether Member is set; an unfilled slot is an empty
	// placeholder row in a slotted party.
	Filled bool
	// Waiting marks rows belonging to the waiting section.
	Waiting bool
	Member  Membership
}

// Slots yields the display rows for the party roster. Slotted parties
// produce exactly Capacity playing rows, filled in join order and padded
// with placeholders; unlimited parties produce one row per playing member.
// Waiting members follow in join order. The sequence is finite and can be
// ranged over any number of times.
func Slots(party Party) iter.Seq[Slot] {
	return func(yield func(Slot) bool) {
		playing := 0
		for _, member := range party.Members {
			if member.Waiting {
				continue
			}
			playing++
			if !yield(Slot{Index: playing, Filled: true, Member: member}) {
				return
			}
		}
		if party.Category == CategorySlotted {
			for i := playing + 1; i <= party.Capacity; i++ {
				if !yield(Slot{Index: i}) {
					return
				}
			}
		}
		waiting := 0
		for _, member := range party.Members {
			if !member.Waiting {
				continue
			}
			waiting++
			if !yield(Slot{Index: waiting, Filled: true, Waiting: true, Member: member}) {
				return
			}
		}
	}
}
