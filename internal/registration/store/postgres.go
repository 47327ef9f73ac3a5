package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"campuspass/internal/registration/models"
	id "campuspass/pkg/domain"
	"campuspass/pkg/platform/sentinel"
)

// uniqueViolation is the postgres SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

// Postgres persists registrations in PostgreSQL.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

const regColumns = `id, event_id, participant_id, credential_key, credential_qr, created_at, attended, attended_at`

// Create inserts a registration inside a transaction that serializes
// concurrent attempts for the same event.
//
// A plain read-count-then-insert would let two transactions observe the same
// count and both admit the final seat. SELECT ... FOR UPDATE on the event row
// blocks the second transaction until the first commits, so the capacity
// check always sees the committed count. The UNIQUE(event_id, participant_id)
// index is the authoritative duplicate guard; the 23505 mapping below keeps a
// raced duplicate surfacing as a conflict, not an internal error.
func (s *Postgres) Create(ctx context.Context, reg *models.Registration) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var capacity int
	err = tx.QueryRow(ctx,
		`SELECT capacity FROM events WHERE id = $1 FOR UPDATE`,
		reg.EventID.String(),
	).Scan(&capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("lock event row: %w", err)
	}

	var count int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1`,
		reg.EventID.String(),
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("count registrations: %w", err)
	}
	if count >= capacity {
		err = sentinel.ErrCapacityExceeded
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO registrations (`+regColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		reg.ID.String(), reg.EventID.String(), reg.ParticipantID.String(),
		reg.CredentialKey, reg.CredentialQR, reg.CreatedAt, reg.Attended, reg.AttendedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			err = sentinel.ErrConflict
			return err
		}
		return fmt.Errorf("insert registration: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Postgres) FindByEventAndParticipant(ctx context.Context, eventID id.EventID, participantID id.UserID) (*models.Registration, error) {
	return s.findOne(ctx,
		`SELECT `+regColumns+` FROM registrations WHERE event_id = $1 AND participant_id = $2`,
		eventID.String(), participantID.String())
}

func (s *Postgres) FindByCredential(ctx context.Context, credentialKey string) (*models.Registration, error) {
	return s.findOne(ctx,
		`SELECT `+regColumns+` FROM registrations WHERE credential_key = $1`,
		credentialKey)
}

// ListByParticipant returns the participant's registrations, newest first.
func (s *Postgres) ListByParticipant(ctx context.Context, participantID id.UserID) ([]*models.Registration, error) {
	return s.list(ctx,
		`SELECT `+regColumns+` FROM registrations
		 WHERE participant_id = $1 ORDER BY created_at DESC`,
		participantID.String())
}

// ListByEvent returns the event's registrations, newest first.
func (s *Postgres) ListByEvent(ctx context.Context, eventID id.EventID) ([]*models.Registration, error) {
	return s.list(ctx,
		`SELECT `+regColumns+` FROM registrations
		 WHERE event_id = $1 ORDER BY created_at DESC`,
		eventID.String())
}

func (s *Postgres) CountByEvent(ctx context.Context, eventID id.EventID) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1`,
		eventID.String(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return count, nil
}

// MarkAttended flips the attended flag exactly once. The WHERE clause makes
// the transition conditional, so a raced second call cannot overwrite the
// original attendance time; it falls through to a plain read.
func (s *Postgres) MarkAttended(ctx context.Context, regID id.RegistrationID, at time.Time) (*models.Registration, error) {
	_, err := s.db.Exec(ctx,
		`UPDATE registrations SET attended = TRUE, attended_at = $2
		 WHERE id = $1 AND attended = FALSE`,
		regID.String(), at,
	)
	if err != nil {
		return nil, fmt.Errorf("mark attended: %w", err)
	}

	return s.findOne(ctx, `SELECT `+regColumns+` FROM registrations WHERE id = $1`, regID.String())
}

func (s *Postgres) findOne(ctx context.Context, query string, args ...any) (*models.Registration, error) {
	reg, err := scanRegistration(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (s *Postgres) list(ctx context.Context, query string, args ...any) ([]*models.Registration, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []*models.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func scanRegistration(row pgx.Row) (*models.Registration, error) {
	var (
		reg            models.Registration
		rawID          string
		rawEvent       string
		rawParticipant string
	)
	err := row.Scan(&rawID, &rawEvent, &rawParticipant, &reg.CredentialKey,
		&reg.CredentialQR, &reg.CreatedAt, &reg.Attended, &reg.AttendedAt)
	if err != nil {
		return nil, err
	}

	regID, err := id.ParseRegistrationID(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse stored registration id: %w", err)
	}
	eventID, err := id.ParseEventID(rawEvent)
	if err != nil {
		return nil, fmt.Errorf("parse stored event id: %w", err)
	}
	participantID, err := id.ParseUserID(rawParticipant)
	if err != nil {
		return nil, fmt.Errorf("parse stored participant id: %w", err)
	}
	reg.ID = regID
	reg.EventID = eventID
	reg.ParticipantID = participantID
	return &reg, nil
}
