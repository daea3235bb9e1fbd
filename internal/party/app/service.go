// Package app orchestrates party operations: every mutating entry point runs
// one fetch-compute-upsert-refresh unit inside a per-handle critical section,
// so concurrent mutations against the same party cannot lose updates and the
// displayed roster only ever trails the stored one by the upsert-to-refresh
// window of the current operation.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/partyboard/internal/party/domain"
	"github.com/louisbranch/partyboard/internal/party/render"
	"github.com/louisbranch/partyboard/internal/party/storage"
	"github.com/louisbranch/partyboard/internal/platform/timeouts"
)

// CloseReasonAllLeft is the notification reason used when the last member
// leaves and the engine closes the party itself.
const CloseReasonAllLeft = "all members left"

// Service exposes the caller-intent entry points over the party engine.
type Service struct {
	store    storage.Store
	display  DisplaySurface
	identity IdentityLookup
	notifier Notifier
	loc      render.Localizer
	clock    func() time.Time
	tracer   trace.Tracer
	locks    handleLocks
}

// NewService wires the party engine. identity and notifier may be nil;
// missing identity degrades name refresh and a nil notifier drops events.
func NewService(store storage.Store, display DisplaySurface, identity IdentityLookup, notifier Notifier, loc render.Localizer, clock func() time.Time) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("party store is required")
	}
	if display == nil {
		return nil, fmt.Errorf("display surface is required")
	}
	if loc == nil {
		return nil, fmt.Errorf("localizer is required")
	}
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		store:    store,
		display:  display,
		identity: identity,
		notifier: notifier,
		loc:      loc,
		clock:    clock,
		tracer:   otel.Tracer("partyboard/party"),
	}, nil
}

// CreateInput carries one party creation request.
type CreateInput struct {
	Location         string
	OwnerID          string
	OwnerDisplayName string
	Category         domain.Category
	Title            string
	Note             string
	Schedule         domain.Schedule
	Capacity         int
}

// CreateParty validates the request, publishes the initial display payload
// to obtain the party handle, and persists the new recruiting party.
func (s *Service) CreateParty(ctx context.Context, input CreateInput) (domain.Party, error) {
	ctx, span := s.tracer.Start(ctx, "party.create")
	defer span.End()

	party, err := domain.NewParty(domain.CreateInput{
		OwnerID:          input.OwnerID,
		OwnerDisplayName: input.OwnerDisplayName,
		Category:         input.Category,
		Title:            input.Title,
		Note:             input.Note,
		Schedule:         input.Schedule,
		Capacity:         input.Capacity,
	}, s.clock())
	if err != nil {
		return domain.Party{}, err
	}
	if input.Location == "" {
		return domain.Party{}, fmt.Errorf("display location is required")
	}
	party.Location = input.Location

	displayCtx, cancel := context.WithTimeout(ctx, timeouts.Display)
	defer cancel()
	handle, err := s.display.Send(displayCtx, party.Location, render.Render(s.loc, party))
	if err != nil {
		return domain.Party{}, fmt.Errorf("publish party display: %w", err)
	}
	party.Handle = handle
	span.SetAttributes(attribute.String("party.handle", handle))

	if err := s.upsert(ctx, party); err != nil {
		return domain.Party{}, err
	}
	s.notify(ctx, Notification{
		Title:    "party created",
		Fields:   map[string]string{"handle": party.Handle, "owner": party.OwnerID},
		Severity: SeverityInfo,
	})
	return party, nil
}

// JoinInput carries one join or note-update request.
type JoinInput struct {
	Handle      string
	UserID      string
	DisplayName string
	Note        string
	AsWaiting   bool
}

// JoinParty adds userID to the roster or refreshes their entry.
func (s *Service) JoinParty(ctx context.Context, input JoinInput) (domain.Party, error) {
	return s.mutate(ctx, "party.join", input.Handle, func(party domain.Party) (domain.Party, error) {
		return domain.AddOrUpdateMember(party, input.UserID, input.DisplayName, input.Note, input.AsWaiting, s.clock())
	})
}

// LeaveParty removes userID from the roster. When the last member leaves the
// party is closed automatically; an empty roster is never a steady state.
func (s *Service) LeaveParty(ctx context.Context, handle, userID string) (domain.Party, error) {
	ctx, span := s.tracer.Start(ctx, "party.leave", trace.WithAttributes(attribute.String("party.handle", handle)))
	defer span.End()

	unlock := s.locks.lock(handle)
	defer unlock()

	party, err := s.fetch(ctx, handle)
	if err != nil {
		return domain.Party{}, err
	}
	updated, err := domain.RemoveMember(party, userID)
	if err != nil {
		return domain.Party{}, err
	}
	if len(updated.Members) == 0 {
		return s.finalize(ctx, updated, CloseReasonAllLeft)
	}
	updated.UpdatedAt = s.clock().UTC()
	if err := s.upsert(ctx, updated); err != nil {
		return domain.Party{}, err
	}
	s.refreshLocked(ctx, updated)
	return updated, nil
}

// ReleaseWaiting removes a waiting-list entry via the explicit "stop
// waiting" action. The all-leave auto-close rule applies here too.
func (s *Service) ReleaseWaiting(ctx context.Context, handle, userID string) (domain.Party, error) {
	ctx, span := s.tracer.Start(ctx, "party.release_waiting", trace.WithAttributes(attribute.String("party.handle", handle)))
	defer span.End()

	unlock := s.locks.lock(handle)
	defer unlock()

	party, err := s.fetch(ctx, handle)
	if err != nil {
		return domain.Party{}, err
	}
	updated, err := domain.ReleaseWaiting(party, userID)
	if err != nil {
		return domain.Party{}, err
	}
	if len(updated.Members) == 0 {
		return s.finalize(ctx, updated, CloseReasonAllLeft)
	}
	updated.UpdatedAt = s.clock().UTC()
	if err := s.upsert(ctx, updated); err != nil {
		return domain.Party{}, err
	}
	s.refreshLocked(ctx, updated)
	return updated, nil
}

// EditParty applies owner/operator field edits.
func (s *Service) EditParty(ctx context.Context, handle string, input domain.EditInput, caller string, privileged bool) (domain.Party, error) {
	return s.mutate(ctx, "party.edit", handle, func(party domain.Party) (domain.Party, error) {
		return domain.ApplyEdit(party, input, caller, privileged)
	})
}

// RescheduleParty replaces the promotion schedule of a recruiting party.
func (s *Service) RescheduleParty(ctx context.Context, handle string, schedule domain.Schedule, caller string, privileged bool) (domain.Party, error) {
	return s.mutate(ctx, "party.reschedule", handle, func(party domain.Party) (domain.Party, error) {
		return domain.Reschedule(party, schedule, caller, privileged)
	})
}

// StartParty promotes a recruiting party to active.
func (s *Service) StartParty(ctx context.Context, handle, caller string, privileged bool) (domain.Party, error) {
	return s.mutate(ctx, "party.start", handle, func(party domain.Party) (domain.Party, error) {
		return domain.Start(party, caller, privileged)
	})
}

// ForceAddMembers applies a privileged roster action in add or replace mode.
func (s *Service) ForceAddMembers(ctx context.Context, handle string, users []domain.ForcedMember, replace bool, privileged bool) (domain.Party, error) {
	if !privileged {
		return domain.Party{}, domain.ErrForbidden
	}
	return s.mutate(ctx, "party.force_add", handle, func(party domain.Party) (domain.Party, error) {
		return domain.ForceAddMembers(party, users, replace, s.clock())
	})
}

// CloseParty marks the party terminal and runs the end-of-life procedure:
// persist the closed record first, then try to remove the display artifact.
// On display success the record is deleted outright; on failure the closed
// record stays behind a terminal payload until an explicit DeleteParty.
func (s *Service) CloseParty(ctx context.Context, handle, caller string, privileged bool, reason string) (domain.Party, error) {
	ctx, span := s.tracer.Start(ctx, "party.close", trace.WithAttributes(attribute.String("party.handle", handle)))
	defer span.End()

	unlock := s.locks.lock(handle)
	defer unlock()

	party, err := s.fetch(ctx, handle)
	if err != nil {
		return domain.Party{}, err
	}
	closed, err := domain.Close(party, caller, privileged)
	if err != nil {
		return domain.Party{}, err
	}
	return s.finalize(ctx, closed, reason)
}

// DeleteParty clears a closed party whose display artifact outlived the
// end-of-life procedure. Owner or privileged callers only; live parties
// must go through CloseParty first.
func (s *Service) DeleteParty(ctx context.Context, handle, caller string, privileged bool) error {
	ctx, span := s.tracer.Start(ctx, "party.delete", trace.WithAttributes(attribute.String("party.handle", handle)))
	defer span.End()

	unlock := s.locks.lock(handle)
	defer unlock()

	party, err := s.fetch(ctx, handle)
	if err != nil {
		return err
	}
	if !party.CanManage(caller, privileged) {
		return domain.ErrForbidden
	}
	if party.Status != domain.StatusClosed {
		return domain.ErrInvalidTransition
	}

	displayCtx, cancel := context.WithTimeout(ctx, timeouts.Display)
	if err := s.display.Delete(displayCtx, party.Handle); err != nil {
		log.Printf("delete party display %s: %v", party.Handle, err)
	}
	cancel()

	if err := s.delete(ctx, party.Handle); err != nil {
		return err
	}
	s.notify(ctx, Notification{
		Title:    "party deleted",
		Fields:   map[string]string{"handle": party.Handle, "caller": caller},
		Severity: SeverityInfo,
	})
	return nil
}

// Refresh re-renders the stored party onto the display surface. A missing
// party is a no-op: it was deleted and there is nothing to reconcile.
func (s *Service) Refresh(ctx context.Context, handle string) error {
	ctx, span := s.tracer.Start(ctx, "party.refresh", trace.WithAttributes(attribute.String("party.handle", handle)))
	defer span.End()

	unlock := s.locks.lock(handle)
	defer unlock()

	party, err := s.fetch(ctx, handle)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	s.refreshLocked(ctx, party)
	return nil
}

// promoteDue transitions every due recruiting party to active. Called by the
// scheduler; safe to repeat because promoted parties drop out of the
// due-list query.
func (s *Service) promoteDue(ctx context.Context, now time.Time) {
	storeCtx, cancel := context.WithTimeout(ctx, timeouts.Storage)
	handles, err := s.store.ListDuePromotions(storeCtx, now)
	cancel()
	if err != nil {
		log.Printf("list due promotions: %v", err)
		return
	}

	for _, handle := range handles {
		if err := s.promoteOne(ctx, handle, now); err != nil {
			log.Printf("promote party %s: %v", handle, err)
		}
	}
}

func (s *Service) promoteOne(ctx context.Context, handle string, now time.Time) error {
	ctx, span := s.tracer.Start(ctx, "party.promote", trace.WithAttributes(attribute.String("party.handle", handle)))
	defer span.End()

	unlock := s.locks.lock(handle)
	defer unlock()

	party, err := s.fetch(ctx, handle)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	// Re-check under the lock: a manual start or reschedule may have raced
	// the due-list scan.
	if party.Status != domain.StatusRecruiting {
		return nil
	}
	if party.Schedule.Kind != domain.ScheduleAt || party.Schedule.At.After(now) {
		return nil
	}

	promoted, err := domain.Start(party, "", true)
	if err != nil {
		return err
	}
	promoted.UpdatedAt = now.UTC()
	if err := s.upsert(ctx, promoted); err != nil {
		return err
	}
	s.refreshLocked(ctx, promoted)
	s.notify(ctx, Notification{
		Title:    "party auto-promoted",
		Fields:   map[string]string{"handle": promoted.Handle},
		Severity: SeverityInfo,
	})
	return nil
}

// mutate runs one fetch-compute-upsert-refresh unit under the handle lock.
func (s *Service) mutate(ctx context.Context, op, handle string, compute func(domain.Party) (domain.Party, error)) (domain.Party, error) {
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("party.handle", handle)))
	defer span.End()

	unlock := s.locks.lock(handle)
	defer unlock()

	party, err := s.fetch(ctx, handle)
	if err != nil {
		return domain.Party{}, err
	}
	updated, err := compute(party)
	if err != nil {
		return domain.Party{}, err
	}
	updated.UpdatedAt = s.clock().UTC()
	if err := s.upsert(ctx, updated); err != nil {
		return domain.Party{}, err
	}
	s.refreshLocked(ctx, updated)
	return updated, nil
}

// finalize runs the end-of-life procedure. It owns the terminal transition:
// auto-close paths hand in a live party and CloseParty hands in one already
// transitioned, so the status is stamped here unconditionally. The caller
// holds the handle lock.
func (s *Service) finalize(ctx context.Context, closed domain.Party, reason string) (domain.Party, error) {
	closed.Status = domain.StatusClosed
	closed.UpdatedAt = s.clock().UTC()
	// Persist the terminal status first so anything racing the display
	// deletion observes an inert record.
	if err := s.upsert(ctx, closed); err != nil {
		return domain.Party{}, err
	}

	displayCtx, cancel := context.WithTimeout(ctx, timeouts.Display)
	deleteErr := s.display.Delete(displayCtx, closed.Handle)
	cancel()

	if deleteErr == nil {
		if err := s.delete(ctx, closed.Handle); err != nil {
			return domain.Party{}, err
		}
	} else {
		log.Printf("delete display for party %s: %v (leaving closed record)", closed.Handle, deleteErr)
		s.refreshLocked(ctx, closed)
	}

	severity := SeverityInfo
	if deleteErr != nil {
		severity = SeverityWarn
	}
	s.notify(ctx, Notification{
		Title:    "party closed",
		Fields:   map[string]string{"handle": closed.Handle, "reason": reason},
		Severity: severity,
	})
	return closed, nil
}

// refreshLocked pushes the current payload to the display surface. Display
// failures are logged, not returned: the stored record is already correct
// and any later refresh reconciles the artifact.
func (s *Service) refreshLocked(ctx context.Context, party domain.Party) {
	party.Members = s.refreshNames(ctx, party.Members)

	displayCtx, cancel := context.WithTimeout(ctx, timeouts.Display)
	defer cancel()
	if err := s.display.Edit(displayCtx, party.Handle, render.Render(s.loc, party)); err != nil {
		log.Printf("refresh display for party %s: %v", party.Handle, err)
	}
}

// refreshNames fills missing display names from the identity lookup for
// rendering only; the stored roster is untouched.
func (s *Service) refreshNames(ctx context.Context, members []domain.Membership) []domain.Membership {
	if s.identity == nil {
		return members
	}
	refreshed := make([]domain.Membership, len(members))
	copy(refreshed, members)
	for i := range refreshed {
		if refreshed[i].DisplayName != "" {
			continue
		}
		if name, ok := s.identity.ResolveDisplayName(ctx, refreshed[i].UserID); ok {
			refreshed[i].DisplayName = name
		}
	}
	return refreshed
}

func (s *Service) fetch(ctx context.Context, handle string) (domain.Party, error) {
	storeCtx, cancel := context.WithTimeout(ctx, timeouts.Storage)
	defer cancel()
	party, err := s.store.Fetch(storeCtx, handle)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.Party{}, err
	}
	if err != nil {
		return domain.Party{}, fmt.Errorf("fetch party %s: %w", handle, err)
	}
	return party, nil
}

func (s *Service) upsert(ctx context.Context, party domain.Party) error {
	storeCtx, cancel := context.WithTimeout(ctx, timeouts.Storage)
	defer cancel()
	if err := s.store.Upsert(storeCtx, party); err != nil {
		return fmt.Errorf("persist party %s: %w", party.Handle, err)
	}
	return nil
}

func (s *Service) delete(ctx context.Context, handle string) error {
	storeCtx, cancel := context.WithTimeout(ctx, timeouts.Storage)
	defer cancel()
	if err := s.store.Delete(storeCtx, handle); err != nil {
		return fmt.Errorf("delete party %s: %w", handle, err)
	}
	return nil
}

func (s *Service) notify(ctx context.Context, event Notification) {
	if s.notifier == nil {
		return
	}
	notifyCtx, cancel := context.WithTimeout(ctx, timeouts.Notify)
	defer cancel()
	s.notifier.Notify(notifyCtx, event)
}
