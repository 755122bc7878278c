package store

import (
	"database/sql"
	"time"
)

// RepEvent is a persisted repetition count change.
type RepEvent struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Person    int       `json:"person"`
	Kind      string    `json:"kind"`
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"created_at"`
}

// Total is the highest count reached by one person for one movement kind.
type Total struct {
	Person int    `json:"person"`
	Kind   string `json:"kind"`
	Count  int    `json:"count"`
}

// EventRepository provides access to repetition events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Create inserts a batch of events for a session in a single transaction.
// CreatedAt is set to now for every event.
func (r *EventRepository) Create(sessionID string, events []RepEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO rep_events (session_id, person, kind, count, created_at) VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for i := range events {
		events[i].SessionID = sessionID
		events[i].CreatedAt = now

		result, err := stmt.Exec(sessionID, events[i].Person, events[i].Kind, events[i].Count, now)
		if err != nil {
			return err
		}
		if id, err := result.LastInsertId(); err == nil {
			events[i].ID = id
		}
	}

	return tx.Commit()
}

// ListBySession retrieves every event of a session in insertion order.
func (r *EventRepository) ListBySession(sessionID string) ([]RepEvent, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, person, kind, count, created_at
		 FROM rep_events
		 WHERE session_id = ?
		 ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []RepEvent
	for rows.Next() {
		var e RepEvent
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Person, &e.Kind, &e.Count, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// Totals returns the final count per person and kind for a session.
func (r *EventRepository) Totals(sessionID string) ([]Total, error) {
	rows, err := r.db.Query(
		`SELECT person, kind, MAX(count)
		 FROM rep_events
		 WHERE session_id = ?
		 GROUP BY person, kind
		 ORDER BY person,
		   CASE kind WHEN 'jump' THEN 0 WHEN 'squat' THEN 1 ELSE 2 END`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []Total
	for rows.Next() {
		var t Total
		if err := rows.Scan(&t.Person, &t.Kind, &t.Count); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return totals, nil
}
