// Package render turns a stored party into a display payload. It is the
// only path from a party record to a user-visible artifact, so the rendered
// roster always mirrors the stored one.
package render

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/louisbranch/partyboard/internal/party/domain"
)

// Localizer is the minimal message-printer contract required by the renderer.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// Payload is one channel-agnostic display artifact for a party. The display
// surface decides how rows map onto its widget model.
type Payload struct {
	Title    string
	Body     string
	Schedule string
	// SlotRows lists playing slots in order; slotted parties include
	// placeholder rows up to capacity.
	SlotRows []string
	// WaitingRows lists waiting members in join order.
	WaitingRows []string
	// Terminal marks a closed party payload, which exposes only a delete
	// affordance.
	Terminal bool
}

// NewLocalizer returns a message printer for the given language tag,
// falling back to English.
func NewLocalizer(tag language.Tag) Localizer {
	return message.NewPrinter(tag)
}

// Render builds the display payload for one party.
func Render(loc Localizer, party domain.Party) Payload {
	payload := Payload{
		Title:    partyTitle(loc, party),
		Body:     party.Note,
		Schedule: scheduleLine(loc, party.Schedule),
		Terminal: party.Status == domain.StatusClosed,
	}
	if payload.Terminal {
		payload.SlotRows = []string{loc.Sprintf("party.roster.closed")}
		return payload
	}

	for slot := range domain.Slots(party) {
		row := slotRow(loc, slot)
		if slot.Waiting {
			payload.WaitingRows = append(payload.WaitingRows, row)
			continue
		}
		payload.SlotRows = append(payload.SlotRows, row)
	}
	return payload
}

func partyTitle(loc Localizer, party domain.Party) string {
	label := party.Title
	if label == "" {
		label = loc.Sprintf("party.title.untitled")
	}
	switch party.Status {
	case domain.StatusRecruiting:
		return loc.Sprintf("party.title.recruiting", label)
	case domain.StatusActive:
		return loc.Sprintf("party.title.active", label)
	case domain.StatusClosed:
		return loc.Sprintf("party.title.closed", label)
	default:
		return label
	}
}

func scheduleLine(loc Localizer, schedule domain.Schedule) string {
	if schedule.Kind == domain.ScheduleAt {
		return loc.Sprintf("party.schedule.at", schedule.At.UTC().Format(time.RFC3339))
	}
	return loc.Sprintf("party.schedule.immediate")
}

func slotRow(loc Localizer, slot domain.Slot) string {
	if !slot.Filled {
		return loc.Sprintf("party.slot.empty", slot.Index)
	}
	name := slot.Member.DisplayName
	if name == "" {
		name = slot.Member.UserID
	}
	if slot.Waiting {
		if slot.Member.Note != "" {
			return loc.Sprintf("party.waiting.noted", name, slot.Member.Note)
		}
		return loc.Sprintf("party.waiting.plain", name)
	}
	if slot.Member.Note != "" {
		return loc.Sprintf("party.slot.noted", slot.Index, name, slot.Member.Note)
	}
	return loc.Sprintf("party.slot.plain", slot.Index, name)
}
