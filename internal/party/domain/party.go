package domain

import (
	"strings"
	"time"
)

// Category determines whether a party enforces a playing capacity.
type Category string

const (
	// CategorySlotted caps playing members at the party capacity. Game
	// parties use this.
	CategorySlotted Category = "SLOTTED"
	// CategoryUnlimited accepts any number of playing members. Movie, chat,
	// and music parties use this.
	CategoryUnlimited Category = "UNLIMITED"
)

// ParseCategory canonicalizes a stored category label.
func ParseCategory(value string) (Category, bool) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case string(CategorySlotted):
		return CategorySlotted, true
	case string(CategoryUnlimited):
		return CategoryUnlimited, true
	default:
		return "", false
	}
}

// ScheduleKind distinguishes quorum-start parties from time-triggered ones.
type ScheduleKind string

const (
	// ScheduleImmediate starts whenever the roster decides to, with no
	// automatic promotion.
	ScheduleImmediate ScheduleKind = "IMMEDIATE"
	// ScheduleAt auto-promotes the party once the instant passes.
	ScheduleAt ScheduleKind = "AT"
)

// Schedule describes when a recruiting party should become active.
type Schedule struct {
	Kind ScheduleKind
	// At is the promotion instant; meaningful only when Kind is ScheduleAt.
	At time.Time
}

// Validate checks schedule shape.
func (s Schedule) Validate() error {
	switch s.Kind {
	case ScheduleImmediate:
		return nil
	case ScheduleAt:
		if s.At.IsZero() {
			return ErrInvalidSchedule
		}
		return nil
	default:
		return ErrInvalidSchedule
	}
}

// Membership is one roster entry. Slice order in Party.Members is join order
// and defines slot positions for slotted parties.
type Membership struct {
	UserID      string
	DisplayName string
	Note        string
	Waiting     bool
	JoinedAt    time.Time
}

// Capacity bounds for slotted parties, matching the creation form limits.
const (
	MinCapacity     = 2
	MaxCapacity     = 20
	DefaultCapacity = 4
)

// maxNoteRunes caps free-text member and party notes.
const maxNoteRunes = 80

// Party is the aggregate record for one gathering.
type Party struct {
	// Handle is the opaque primary key, tied 1:1 to the rendered display
	// artifact. Immutable after creation.
	Handle string
	// Location identifies the channel hosting the rendered party.
	Location string
	// OwnerID is the creator identity. Immutable.
	OwnerID   string
	Category  Category
	Title     string
	Note      string
	Schedule  Schedule
	Capacity  int
	Status    Status
	Members   []Membership
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateInput carries validated party creation fields.
type CreateInput struct {
	OwnerID          string
	OwnerDisplayName string
	Category         Category
	Title            string
	Note             string
	Schedule         Schedule
	Capacity         int
}

// NewParty builds a recruiting party with the owner auto-joined as the first
// playing member. Handle and Location are assigned by the caller once the
// display artifact exists.
func NewParty(input CreateInput, now time.Time) (Party, error) {
	ownerID := strings.TrimSpace(input.OwnerID)
	if ownerID == "" {
		return Party{}, ErrOwnerRequired
	}
	if input.Category != CategorySlotted && input.Category != CategoryUnlimited {
		return Party{}, ErrInvalidCategory
	}
	if err := input.Schedule.Validate(); err != nil {
		return Party{}, err
	}

	title := strings.TrimSpace(input.Title)
	capacity := input.Capacity
	if input.Category == CategorySlotted {
		if title == "" {
			return Party{}, ErrTitleRequired
		}
		if capacity == 0 {
			capacity = DefaultCapacity
		}
		if capacity < MinCapacity || capacity > MaxCapacity {
			return Party{}, ErrCapacityOutOfRange
		}
	} else {
		capacity = 0
	}

	now = now.UTC()
	return Party{
		OwnerID:  ownerID,
		Category: input.Category,
		Title:    title,
		Note:     truncateNote(strings.TrimSpace(input.Note)),
		Schedule: input.Schedule,
		Capacity: capacity,
		Status:   StatusRecruiting,
		Members: []Membership{{
			UserID:      ownerID,
			DisplayName: strings.TrimSpace(input.OwnerDisplayName),
			JoinedAt:    now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// EditInput carries optional party field updates. Nil pointers leave the
// current value untouched.
type EditInput struct {
	Category *Category
	Title    *string
	Note     *string
	Capacity *int
}

// ApplyEdit validates and applies owner/operator edits. Category is immutable
// after creation and capacity may not drop below the current playing count.
func ApplyEdit(party Party, input EditInput, caller string, privileged bool) (Party, error) {
	if !party.CanManage(caller, privileged) {
		return Party{}, ErrForbidden
	}
	if party.Status == StatusClosed {
		return Party{}, ErrPartyClosed
	}
	if input.Category != nil && *input.Category != party.Category {
		return Party{}, ErrCategoryImmutable
	}

	updated := party.clone()
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if party.Category == CategorySlotted && title == "" {
			return Party{}, ErrTitleRequired
		}
		updated.Title = title
	}
	if input.Note != nil {
		updated.Note = truncateNote(strings.TrimSpace(*input.Note))
	}
	if input.Capacity != nil && party.Category == CategorySlotted {
		capacity := *input.Capacity
		if capacity < MinCapacity || capacity > MaxCapacity {
			return Party{}, ErrCapacityOutOfRange
		}
		if capacity < PlayingCount(party) {
			return Party{}, ErrCapacityBelowOccupancy
		}
		updated.Capacity = capacity
	}
	return updated, nil
}

// Reschedule replaces the promotion schedule of a recruiting party.
func Reschedule(party Party, schedule Schedule, caller string, privileged bool) (Party, error) {
	if !party.CanManage(caller, privileged) {
		return Party{}, ErrForbidden
	}
	if party.Status != StatusRecruiting {
		return Party{}, ErrInvalidTransition
	}
	if err := schedule.Validate(); err != nil {
		return Party{}, err
	}
	updated := party.clone()
	updated.Schedule = schedule
	return updated, nil
}

// Start promotes a recruiting party to active. Any current member, the
// owner, or a privileged caller may start.
func Start(party Party, caller string, privileged bool) (Party, error) {
	if !party.CanOperate(caller, privileged) {
		return Party{}, ErrForbidden
	}
	if !isStatusTransitionAllowed(party.Status, StatusActive) {
		return Party{}, ErrInvalidTransition
	}
	updated := party.clone()
	updated.Status = StatusActive
	return updated, nil
}

// Close marks the party terminal. Permission matches Start.
func Close(party Party, caller string, privileged bool) (Party, error) {
	if !party.CanOperate(caller, privileged) {
		return Party{}, ErrForbidden
	}
	if !isStatusTransitionAllowed(party.Status, StatusClosed) {
		return Party{}, ErrInvalidTransition
	}
	updated := party.clone()
	updated.Status = StatusClosed
	return updated, nil
}

// CanManage reports whether caller may edit, reschedule, or delete the party.
func (p Party) CanManage(caller string, privileged bool) bool {
	return privileged || (caller != "" && caller == p.OwnerID)
}

// CanOperate reports whether caller may start or close the party.
func (p Party) CanOperate(caller string, privileged bool) bool {
	if p.CanManage(caller, privileged) {
		return true
	}
	_, ok := p.member(caller)
	return ok
}

// IsMember reports whether userID is on the roster, waiting or playing.
func (p Party) IsMember(userID string) bool {
	_, ok := p.member(userID)
	return ok
}

func (p Party) member(userID string) (int, bool) {
	if userID == "" {
		return 0, false
	}
	for i := range p.Members {
		if p.Members[i].UserID == userID {
			return i, true
		}
	}
	return 0, false
}

func (p Party) clone() Party {
	clone := p
	clone.Members = make([]Membership, len(p.Members))
	copy(clone.Members, p.Members)
	return clone
}

func truncateNote(note string) string {
	runes := []rune(note)
	if len(runes) <= maxNoteRunes {
		return note
	}
	return string(runes[:maxNoteRunes])
}
