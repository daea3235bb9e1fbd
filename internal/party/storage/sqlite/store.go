// Package sqlite provides SQLite-backed party persistence.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/partyboard/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/partyboard/internal/party/domain"
	"github.com/louisbranch/partyboard/internal/party/storage"
	"github.com/louisbranch/partyboard/internal/party/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed party aggregate persistence.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a party SQLite store and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Upsert writes the party row and rebuilds its member rows in one
// transaction, giving full-replace semantics for the aggregate.
func (s *Store) Upsert(ctx context.Context, party domain.Party) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(party.Handle) == "" {
		return fmt.Errorf("party handle is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
INSERT INTO parties (
	handle, location, owner_id, category, title, note,
	schedule_kind, schedule_at, capacity, status, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (handle) DO UPDATE SET
	location = excluded.location,
	owner_id = excluded.owner_id,
	category = excluded.category,
	title = excluded.title,
	note = excluded.note,
	schedule_kind = excluded.schedule_kind,
	schedule_at = excluded.schedule_at,
	capacity = excluded.capacity,
	status = excluded.status,
	updated_at = excluded.updated_at
`,
		party.Handle,
		party.Location,
		party.OwnerID,
		string(party.Category),
		party.Title,
		party.Note,
		string(party.Schedule.Kind),
		scheduleAtMilli(party.Schedule),
		party.Capacity,
		string(party.Status),
		party.CreatedAt.UTC().UnixMilli(),
		party.UpdatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert party row: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM party_members WHERE handle = ?`, party.Handle); err != nil {
		return fmt.Errorf("clear member rows: %w", err)
	}
	for position, member := range party.Members {
		_, err := tx.ExecContext(ctx, `
INSERT INTO party_members (handle, user_id, display_name, note, waiting, joined_at, position)
VALUES (?, ?, ?, ?, ?, ?, ?)
`,
			party.Handle,
			member.UserID,
			member.DisplayName,
			member.Note,
			boolToInt(member.Waiting),
			member.JoinedAt.UTC().UnixMilli(),
			position,
		)
		if err != nil {
			return fmt.Errorf("insert member row %s: %w", member.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// Fetch loads one party aggregate with members in join order.
func (s *Store) Fetch(ctx context.Context, handle string) (domain.Party, error) {
	if err := ctx.Err(); err != nil {
		return domain.Party{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Party{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT handle, location, owner_id, category, title, note,
	schedule_kind, schedule_at, capacity, status, created_at, updated_at
FROM parties WHERE handle = ?
`, handle)

	var party domain.Party
	var category, scheduleKind, status string
	var scheduleAt, createdAt, updatedAt int64
	err := row.Scan(
		&party.Handle,
		&party.Location,
		&party.OwnerID,
		&category,
		&party.Title,
		&party.Note,
		&scheduleKind,
		&scheduleAt,
		&party.Capacity,
		&status,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Party{}, storage.ErrNotFound
	}
	if err != nil {
		return domain.Party{}, fmt.Errorf("fetch party row: %w", err)
	}

	parsedCategory, ok := domain.ParseCategory(category)
	if !ok {
		return domain.Party{}, fmt.Errorf("party %s has invalid category %q", handle, category)
	}
	parsedStatus, ok := domain.ParseStatus(status)
	if !ok {
		return domain.Party{}, fmt.Errorf("party %s has invalid status %q", handle, status)
	}
	party.Category = parsedCategory
	party.Status = parsedStatus
	party.Schedule = domain.Schedule{Kind: domain.ScheduleKind(scheduleKind)}
	if party.Schedule.Kind == domain.ScheduleAt {
		party.Schedule.At = time.UnixMilli(scheduleAt).UTC()
	}
	party.CreatedAt = time.UnixMilli(createdAt).UTC()
	party.UpdatedAt = time.UnixMilli(updatedAt).UTC()

	members, err := s.fetchMembers(ctx, handle)
	if err != nil {
		return domain.Party{}, err
	}
	party.Members = members
	return party, nil
}

func (s *Store) fetchMembers(ctx context.Context, handle string) ([]domain.Membership, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT user_id, display_name, note, waiting, joined_at
FROM party_members WHERE handle = ? ORDER BY position ASC
`, handle)
	if err != nil {
		return nil, fmt.Errorf("fetch member rows: %w", err)
	}
	defer rows.Close()

	var members []domain.Membership
	for rows.Next() {
		var member domain.Membership
		var waiting int
		var joinedAt int64
		if err := rows.Scan(&member.UserID, &member.DisplayName, &member.Note, &waiting, &joinedAt); err != nil {
			return nil, fmt.Errorf("scan member row: %w", err)
		}
		member.Waiting = waiting != 0
		member.JoinedAt = time.UnixMilli(joinedAt).UTC()
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate member rows: %w", err)
	}
	return members, nil
}

// Delete removes the party and its member rows in one transaction. Member
// rows are deleted explicitly rather than through the FK cascade, so the
// aggregate contract holds regardless of pragma state. Deleting an absent
// handle succeeds.
func (s *Store) Delete(ctx context.Context, handle string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM party_members WHERE handle = ?`, handle); err != nil {
		return fmt.Errorf("delete party members: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM parties WHERE handle = ?`, handle); err != nil {
		return fmt.Errorf("delete party: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete tx: %w", err)
	}
	return nil
}

// ListDuePromotions returns handles of recruiting, time-scheduled parties
// due at or before now.
func (s *Store) ListDuePromotions(ctx context.Context, now time.Time) ([]string, error) {
	return s.listHandles(ctx, `
SELECT handle FROM parties
WHERE status = ? AND schedule_kind = ? AND schedule_at <= ?
ORDER BY schedule_at ASC
`, string(domain.StatusRecruiting), string(domain.ScheduleAt), now.UTC().UnixMilli())
}

// ListOpen returns handles of every non-closed party.
func (s *Store) ListOpen(ctx context.Context) ([]string, error) {
	return s.listHandles(ctx, `
SELECT handle FROM parties WHERE status != ? ORDER BY created_at ASC
`, string(domain.StatusClosed))
}

func (s *Store) listHandles(ctx context.Context, query string, args ...any) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list party handles: %w", err)
	}
	defer rows.Close()

	var handles []string
	for rows.Next() {
		var handle string
		if err := rows.Scan(&handle); err != nil {
			return nil, fmt.Errorf("scan party handle: %w", err)
		}
		handles = append(handles, handle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate party handles: %w", err)
	}
	return handles, nil
}

func scheduleAtMilli(schedule domain.Schedule) int64 {
	if schedule.Kind != domain.ScheduleAt {
		return 0
	}
	return schedule.At.UTC().UnixMilli()
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
