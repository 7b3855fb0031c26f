package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sadopc/wagecalc/internal/wage"
)

const dateLayout = "2006-01-02"

// AddHoliday inserts a holiday or renames an existing one.
func (s *Store) AddHoliday(date time.Time, name string) error {
	_, err := s.db.Exec(
		`INSERT INTO holidays (date, name) VALUES (?, ?) ON CONFLICT(date) DO UPDATE SET name = excluded.name`,
		date.Format(dateLayout), name,
	)
	if err != nil {
		return fmt.Errorf("add holiday: %w", err)
	}
	return nil
}

func (s *Store) RemoveHoliday(date time.Time) error {
	res, err := s.db.Exec(`DELETE FROM holidays WHERE date = ?`, date.Format(dateLayout))
	if err != nil {
		return fmt.Errorf("remove holiday: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("remove holiday %s: %w", date.Format(dateLayout), sql.ErrNoRows)
	}
	return nil
}

func (s *Store) ListHolidays() ([]Holiday, error) {
	rows, err := s.db.Query(`SELECT date, name, created_at FROM holidays ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []Holiday
	for rows.Next() {
		var h Holiday
		var date, createdAt string
		if err := rows.Scan(&date, &h.Name, &createdAt); err != nil {
			return nil, err
		}
		h.Date, _ = time.Parse(dateLayout, date)
		h.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// HolidaySet returns the calendar as an immutable set for one batch.
func (s *Store) HolidaySet() (wage.HolidaySet, error) {
	holidays, err := s.ListHolidays()
	if err != nil {
		return wage.HolidaySet{}, err
	}
	dates := make([]time.Time, len(holidays))
	for i, h := range holidays {
		dates[i] = h.Date
	}
	return wage.NewHolidaySet(dates...), nil
}
