package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func join(t *testing.T, party Party, userID string, asWaiting bool) Party {
	t.Helper()
	updated, err := AddOrUpdateMember(party, userID, "", "", asWaiting, testNow)
	if err != nil {
		t.Fatalf("join %s (waiting=%v): %v", userID, asWaiting, err)
	}
	return updated
}

func TestAddOrUpdateMember_CapacityInvariant(t *testing.T) {
	t.Parallel()

	party := slottedParty(t, 4)
	for _, userID := range []string{"user-2", "user-3", "user-4"} {
		party = join(t, party, userID, false)
	}
	if got := PlayingCount(party); got != 4 {
		t.Fatalf("playing = %d, want 4", got)
	}

	before := len(party.Members)
	_, err := AddOrUpdateMember(party, "user-5", "", "", false, testNow)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("overflow join err = %v, want ErrCapacityExceeded", err)
	}
	if len(party.Members) != before {
		t.Fatalf("rejected join mutated the party: %d members", len(party.Members))
	}

	waiting := join(t, party, "user-5", true)
	if got := PlayingCount(waiting); got != 4 {
		t.Fatalf("playing after waiting join = %d, want 4", got)
	}
	if got := WaitingCount(waiting); got != 1 {
		t.Fatalf("waiting = %d, want 1", got)
	}
}

func TestAddOrUpdateMember_UnlimitedNeverFull(t *testing.T) {
	t.Parallel()

	party := unlimitedParty(t)
	for i := 0; i < 30; i++ {
		party = join(t, party, "user-"+strings.Repeat("x", i+1), false)
	}
	if got := PlayingCount(party); got != 31 {
		t.Fatalf("playing = %d, want 31", got)
	}
}

func TestAddOrUpdateMember_UpsertNotDuplicate(t *testing.T) {
	t.Parallel()

	party := slottedParty(t, 4)
	party = join(t, party, "user-2", false)

	updated, err := AddOrUpdateMember(party, "user-2", "Renamed", "running late", false, testNow)
	if err != nil {
		t.Fatalf("re-join: %v", err)
	}
	if len(updated.Members) != 2 {
		t.Fatalf("members = %d, want 2", len(updated.Members))
	}
	if updated.Members[1].DisplayName != "Renamed" || updated.Members[1].Note != "running late" {
		t.Fatalf("member = %+v, want refreshed name and note", updated.Members[1])
	}
}

func TestAddOrUpdateMember_BlankNoteKeepsPrevious(t *testing.T) {
	t.Parallel()

	party := slottedParty(t, 4)
	withNote, err := AddOrUpdateMember(party, "user-2", "", "no mic", false, testNow)
	if err != nil {
		t.Fatalf("join with note: %v", err)
	}

	rejoined, err := AddOrUpdateMember(withNote, "user-2", "", "   ", false, testNow)
	if err != nil {
		t.Fatalf("re-join blank note: %v", err)
	}
	if rejoined.Members[1].Note != "no mic" {
		t.Fatalf("note = %q, want previous note kept", rejoined.Members[1].Note)
	}
}

func TestAddOrUpdateMember_NoteTruncated(t *testing.T) {
	t.Parallel()

	party := slottedParty(t, 4)
	long := strings.Repeat("가", 120)
	joined, err := AddOrUpdateMember(party, "user-2", "", long, false, testNow)
	if err != nil {
		t.Fatalf("join long note: %v", err)
	}
	if got := len([]rune(joined.Members[1].Note)); got != 80 {
		t.Fatalf("note runes = %d, want 80", got)
	}
}

func TestAddOrUpdateMember_WaitingClaimsFreedSlot(t *testing.T) {
	t.Parallel()

	party, err := NewParty(CreateInput{
		OwnerID:  "owner-1",
		Category: CategorySlotted,
		Title:    "duo",
		Schedule: Schedule{Kind: ScheduleImmediate},
		Capacity: 2,
	}, testNow)
	if err != nil {
		t.Fatalf("new party: %v", err)
	}
	party = join(t, party, "user-2", false)
	party = join(t, party, "user-3", true)

	// Full: the waiting member cannot convert yet.
	if _, err := AddOrUpdateMember(party, "user-3", "", "", false, testNow); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("convert on full party err = %v, want ErrCapacityExceeded", err)
	}

	left, err := RemoveMember(party, "user-2")
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	// The freed slot is not auto-assigned.
	if got := PlayingCount(left); got != 1 {
		t.Fatalf("playing after leave = %d, want 1", got)
	}
	if got := WaitingCount(left); got != 1 {
		t.Fatalf("waiting after leave = %d, want 1", got)
	}

	converted, err := AddOrUpdateMember(left, "user-3", "", "", false, testNow)
	if err != nil {
		t.Fatalf("claim freed slot: %v", err)
	}
	if got := PlayingCount(converted); got != 2 {
		t.Fatalf("playing after claim = %d, want 2", got)
	}
	if got := WaitingCount(converted); got != 0 {
		t.Fatalf("waiting after claim = %d, want 0", got)
	}
}

func TestAddOrUpdateMember_ClosedPartyRejected(t *testing.T) {
	t.Parallel()

	party := slottedParty(t, 4)
	closed, err := Close(party, "owner-1", false)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := AddOrUpdateMember(closed, "user-2", "", "", false, testNow); !errors.Is(err, ErrPartyClosed) {
		t.Fatalf("err = %v, want ErrPartyClosed", err)
	}
}

func TestRemoveMember_ClosedPartyRejected(t *testing.T) {
	t.Parallel()

	party := join(t, slottedParty(t, 4), "user-2", false)
	party = join(t, party, "user-3", true)
	closed, err := Close(party, "owner-1", false)
	if err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := RemoveMember(closed, "user-2"); !errors.Is(err, ErrPartyClosed) {
		t.Fatalf("remove err = %v, want ErrPartyClosed", err)
	}
	if _, err := ReleaseWaiting(closed, "user-3"); !errors.Is(err, ErrPartyClosed) {
		t.Fatalf("release err = %v, want ErrPartyClosed", err)
	}
	if len(closed.Members) != 3 {
		t.Fatalf("closed roster mutated: %d members", len(closed.Members))
	}
}

func TestRemoveMember_UnknownUser(t *testing.T) {
	t.Parallel()

	party := slottedParty(t, 4)
	if _, err := RemoveMember(party, "ghost"); !errors.Is(err, ErrNotMember) {
		t.Fatalf("err = %v, want ErrNotMember", err)
	}
}

func TestReleaseWaiting_RequiresWaitingFlag(t *testing.T) {
	t.Parallel()

	party := slottedParty(t, 4)
	party = join(t, party, "user-2", false)
	party = join(t, party, "user-3", true)

	if _, err := ReleaseWaiting(party, "user-2"); !errors.Is(err, ErrNotWaiting) {
		t.Fatalf("playing release err = %v, want ErrNotWaiting", err)
	}
	released, err := ReleaseWaiting(party, "user-3")
	if err != nil {
		t.Fatalf("release waiting: %v", err)
	}
	if released.IsMember("user-3") {
		t.Fatal("expected waiting member removed")
	}
}

func TestForceAddMembers_AddMode(t *testing.T) {
	t.Parallel()

	party := slottedParty(t, 4)
	added, err := ForceAddMembers(party, []ForcedMember{
		{UserID: "user-2"},
		{UserID: "user-3"},
		{UserID: "owner-1"}, // Already present, skipped.
		{UserID: "user-2"},  // Duplicate input, deduped.
	}, false, testNow)
	if err != nil {
		t.Fatalf("force add: %v", err)
	}
	if got := PlayingCount(added); got != 3 {
		t.Fatalf("playing = %d, want 3", got)
	}

	if _, err := ForceAddMembers(added, []ForcedMember{
		{UserID: "user-4"},
		{UserID: "user-5"},
	}, false, testNow); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("overflow force add err = %v, want ErrCapacityExceeded", err)
	}
}

func TestForceAddMembers_ReplaceMode(t *testing.T) {
	t.Parallel()

	party := slottedParty(t, 4)
	party = join(t, party, "user-2", false)
	party = join(t, party, "user-3", true)

	replaced, err := ForceAddMembers(party, []ForcedMember{
		{UserID: "user-7"},
		{UserID: "user-8"},
	}, true, testNow)
	if err != nil {
		t.Fatalf("force replace: %v", err)
	}
	if got := PlayingCount(replaced); got != 2 {
		t.Fatalf("playing = %d, want 2", got)
	}
	if !replaced.IsMember("user-3") {
		t.Fatal("expected waiting list untouched by replace")
	}
	if replaced.IsMember("owner-1") {
		t.Fatal("expected replaced roster to drop prior playing members")
	}

	if _, err := ForceAddMembers(party, []ForcedMember{
		{UserID: "a"}, {UserID: "b"}, {UserID: "c"}, {UserID: "d"}, {UserID: "e"},
	}, true, testNow); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("oversized replace err = %v, want ErrCapacityExceeded", err)
	}
}

func TestSlots_SlottedPadsToCapacity(t *testing.T) {
	t.Parallel()

	party := slottedParty(t, 4)
	party = join(t, party, "user-2", false)
	party = join(t, party, "user-3", true)

	var playing, placeholders, waiting int
	for slot := range Slots(party) {
		switch {
		case slot.Waiting:
			waiting++
		case slot.Filled:
			playing++
		default:
			placeholders++
		}
	}
	if playing != 2 || placeholders != 2 || waiting != 1 {
		t.Fatalf("rows = %d playing / %d empty / %d waiting, want 2/2/1", playing, placeholders, waiting)
	}
}

func TestSlots_UnlimitedHasNoPlaceholders(t *testing.T) {
	t.Parallel()

	party := unlimitedParty(t)
	party = join(t, party, "user-2", false)

	for slot := range Slots(party) {
		if !slot.Filled {
			t.Fatalf("unexpected placeholder row %+v", slot)
		}
	}
}

func TestSlots_Restartable(t *testing.T) {
	t.Parallel()

	party := slottedParty(t, 3)
	seq := Slots(party)

	first := 0
	for range seq {
		first++
	}
	second := 0
	for range seq {
		second++
	}
	if first != second || first != 3 {
		t.Fatalf("row counts = %d then %d, want 3 both times", first, second)
	}
}

func TestSlots_JoinOrderPreservedAfterLeave(t *testing.T) {
	t.Parallel()

	party := slottedParty(t, 4)
	later := testNow.Add(time.Minute)
	var err error
	party, err = AddOrUpdateMember(party, "user-2", "", "", false, later)
	if err != nil {
		t.Fatalf("join user-2: %v", err)
	}
	party, err = AddOrUpdateMember(party, "user-3", "", "", false, later.Add(time.Minute))
	if err != nil {
		t.Fatalf("join user-3: %v", err)
	}
	party, err = RemoveMember(party, "user-2")
	if err != nil {
		t.Fatalf("leave user-2: %v", err)
	}

	var order []string
	for slot := range Slots(party) {
		if slot.Filled {
			order = append(order, slot.Member.UserID)
		}
	}
	if len(order) != 2 || order[0] != "owner-1" || order[1] != "user-3" {
		t.Fatalf("slot order = %v, want [owner-1 user-3]", order)
	}
}
