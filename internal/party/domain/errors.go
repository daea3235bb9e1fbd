package domain

import "errors"

var (
	// ErrOwnerRequired indicates party creation without a creator identity.
	ErrOwnerRequired = errors.New("party owner is required")
	// ErrTitleRequired indicates a slotted party creation or edit with an empty title.
	ErrTitleRequired = errors.New("party title is required")
	// ErrInvalidCategory indicates an unknown party category label.
	ErrInvalidCategory = errors.New("party category is invalid")
	// ErrInvalidSchedule indicates a schedule with an unknown kind or a
	// timed schedule without an instant.
	ErrInvalidSchedule = errors.New("party schedule is invalid")
	// ErrCapacityOutOfRange indicates a slotted capacity outside [2,20].
	ErrCapacityOutOfRange = errors.New("party capacity must be between 2 and 20")
	// ErrCategoryImmutable indicates an edit attempting to change the category.
	ErrCategoryImmutable = errors.New("party category cannot change after creation")

	// ErrForbidden indicates the caller lacks permission for the operation.
	ErrForbidden = errors.New("caller is not permitted")
	// ErrInvalidTransition indicates a status change the lifecycle disallows.
	ErrInvalidTransition = errors.New("status transition is not allowed")
	// ErrPartyClosed indicates a mutation against a closed party.
	ErrPartyClosed = errors.New("party is closed")

	// ErrCapacityExceeded indicates a playing join would exceed capacity.
	ErrCapacityExceeded = errors.New("party capacity exceeded")
	// ErrCapacityBelowOccupancy indicates a capacity edit below the current
	// playing count.
	ErrCapacityBelowOccupancy = errors.New("party capacity below current occupancy")
	// ErrNotWaiting indicates a waiting-list release for a member who holds
	// a playing slot.
	ErrNotWaiting = errors.New("member is not on the waiting list")
	// ErrNotMember indicates an operation against a user absent from the roster.
	ErrNotMember = errors.New("user is not a party member")
)
