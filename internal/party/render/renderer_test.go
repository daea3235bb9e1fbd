package render

import (
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/louisbranch/partyboard/internal/party/domain"
)

var testNow = time.Date(2026, 8, 30, 21, 0, 0, 0, time.UTC)

func testParty() domain.Party {
	return domain.Party{
		Handle:   "msg-1",
		OwnerID:  "owner-1",
		Category: domain.CategorySlotted,
		Title:    "ranked five-stack",
		Schedule: domain.Schedule{Kind: domain.ScheduleImmediate},
		Capacity: 4,
		Status:   domain.StatusRecruiting,
		Members: []domain.Membership{
			{UserID: "owner-1", DisplayName: "Owner", JoinedAt: testNow},
			{UserID: "user-2", Note: "no mic", JoinedAt: testNow},
			{UserID: "user-3", DisplayName: "Three", Waiting: true, JoinedAt: testNow},
		},
	}
}

func TestRender_SlotRowsMatchRosterSlots(t *testing.T) {
	t.Parallel()

	party := testParty()
	payload := Render(NewLocalizer(language.English), party)

	if len(payload.SlotRows) != party.Capacity {
		t.Fatalf("slot rows = %d, want capacity %d", len(payload.SlotRows), party.Capacity)
	}
	if len(payload.WaitingRows) != 1 {
		t.Fatalf("waiting rows = %d, want 1", len(payload.WaitingRows))
	}

	var fromSlots []bool
	for slot := range domain.Slots(party) {
		if !slot.Waiting {
			fromSlots = append(fromSlots, slot.Filled)
		}
	}
	for i, filled := range fromSlots {
		isPlaceholder := strings.Contains(payload.SlotRows[i], "(open)")
		if filled == isPlaceholder {
			t.Fatalf("row %d = %q, filled=%v", i, payload.SlotRows[i], filled)
		}
	}
}

func TestRender_MemberRowContent(t *testing.T) {
	t.Parallel()

	payload := Render(NewLocalizer(language.English), testParty())

	if payload.SlotRows[0] != "1. Owner" {
		t.Fatalf("row 0 = %q, want %q", payload.SlotRows[0], "1. Owner")
	}
	// Missing display name degrades to the user id.
	if payload.SlotRows[1] != "2. user-2 — no mic" {
		t.Fatalf("row 1 = %q", payload.SlotRows[1])
	}
	if !strings.Contains(payload.WaitingRows[0], "Three") {
		t.Fatalf("waiting row = %q, want display name", payload.WaitingRows[0])
	}
}

func TestRender_StatusTitles(t *testing.T) {
	t.Parallel()

	loc := NewLocalizer(language.English)
	party := testParty()

	if got := Render(loc, party).Title; !strings.Contains(got, "Recruiting") {
		t.Fatalf("recruiting title = %q", got)
	}
	party.Status = domain.StatusActive
	if got := Render(loc, party).Title; !strings.Contains(got, "In progress") {
		t.Fatalf("active title = %q", got)
	}
	party.Status = domain.StatusClosed
	if got := Render(loc, party).Title; !strings.Contains(got, "Closed") {
		t.Fatalf("closed title = %q", got)
	}
}

func TestRender_ClosedPayloadIsTerminal(t *testing.T) {
	t.Parallel()

	party := testParty()
	party.Status = domain.StatusClosed
	payload := Render(NewLocalizer(language.English), party)

	if !payload.Terminal {
		t.Fatal("expected terminal payload")
	}
	if len(payload.WaitingRows) != 0 {
		t.Fatalf("terminal waiting rows = %v, want none", payload.WaitingRows)
	}
	if len(payload.SlotRows) != 1 || payload.SlotRows[0] != "(closed)" {
		t.Fatalf("terminal slot rows = %v", payload.SlotRows)
	}
}

func TestRender_ScheduleLine(t *testing.T) {
	t.Parallel()

	loc := NewLocalizer(language.English)
	party := testParty()

	if got := Render(loc, party).Schedule; !strings.Contains(got, "as soon as") {
		t.Fatalf("immediate schedule = %q", got)
	}
	party.Schedule = domain.Schedule{Kind: domain.ScheduleAt, At: testNow.Add(time.Hour)}
	if got := Render(loc, party).Schedule; !strings.Contains(got, "2026-08-30T22:00:00Z") {
		t.Fatalf("timed schedule = %q", got)
	}
}

func TestRender_KoreanCatalog(t *testing.T) {
	t.Parallel()

	payload := Render(NewLocalizer(language.Korean), testParty())
	if !strings.Contains(payload.Title, "모집중") {
		t.Fatalf("korean title = %q", payload.Title)
	}
	if !strings.Contains(payload.Schedule, "모이면") {
		t.Fatalf("korean schedule = %q", payload.Schedule)
	}
}

func TestRender_UnlimitedNoPlaceholders(t *testing.T) {
	t.Parallel()

	party := testParty()
	party.Category = domain.CategoryUnlimited
	party.Capacity = 0

	payload := Render(NewLocalizer(language.English), party)
	if len(payload.SlotRows) != 2 {
		t.Fatalf("slot rows = %d, want 2 playing members", len(payload.SlotRows))
	}
	for _, row := range payload.SlotRows {
		if strings.Contains(row, "(open)") {
			t.Fatalf("unexpected placeholder row %q", row)
		}
	}
}
