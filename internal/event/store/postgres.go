package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"campuspass/internal/event/models"
	id "campuspass/pkg/domain"
	"campuspass/pkg/platform/sentinel"
)

// Postgres persists events in PostgreSQL. Volunteer assignments live in a
// uuid[] column; the sets are small (staff for one event) so a join table
// would buy nothing.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

const eventColumns = `id, title, description, date, location, capacity, organizer_id, volunteer_ids, created_at, updated_at`

// foreignKeyViolation is the postgres SQLSTATE for foreign key failures.
const foreignKeyViolation = "23503"

func (s *Postgres) Create(ctx context.Context, event *models.Event) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO events (`+eventColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		event.ID.String(), event.Title, event.Description, event.Date, event.Location,
		event.Capacity, event.OrganizerID.String(), volunteerStrings(event), event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, eventID.String())
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return event, nil
}

// List returns all events ordered by date ascending.
func (s *Postgres) List(ctx context.Context) ([]*models.Event, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY date ASC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (s *Postgres) Update(ctx context.Context, event *models.Event) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE events
		 SET title = $2, description = $3, date = $4, location = $5, capacity = $6,
		     volunteer_ids = $7, updated_at = $8
		 WHERE id = $1`,
		event.ID.String(), event.Title, event.Description, event.Date, event.Location,
		event.Capacity, volunteerStrings(event), event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, eventID id.EventID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, eventID.String())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var (
		e            models.Event
		rawID        string
		rawOrganizer string
		rawVols      []string
	)
	err := row.Scan(&rawID, &e.Title, &e.Description, &e.Date, &e.Location,
		&e.Capacity, &rawOrganizer, &rawVols, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}

	eventID, err := id.ParseEventID(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse stored event id: %w", err)
	}
	organizerID, err := id.ParseUserID(rawOrganizer)
	if err != nil {
		return nil, fmt.Errorf("parse stored organizer id: %w", err)
	}
	e.ID = eventID
	e.OrganizerID = organizerID
	for _, raw := range rawVols {
		userID, err := id.ParseUserID(raw)
		if err != nil {
			return nil, fmt.Errorf("parse stored volunteer id: %w", err)
		}
		e.VolunteerIDs = append(e.VolunteerIDs, userID)
	}
	return &e, nil
}

func volunteerStrings(event *models.Event) []string {
	out := make([]string, 0, len(event.VolunteerIDs))
	for _, v := range event.VolunteerIDs {
		out = append(out, v.String())
	}
	return out
}
