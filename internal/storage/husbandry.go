package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/herptrack/herptrack/internal/model"
)

// CreateEnclosure inserts a new enclosure
func (s *SQLiteStore) CreateEnclosure(ctx context.Context, e *model.Enclosure) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO enclosures (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Name, nullString(e.Description), e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create enclosure: %w", err)
	}
	return nil
}

// GetEnclosure returns the enclosure with the given id, or nil when it
// does not exist
func (s *SQLiteStore) GetEnclosure(ctx context.Context, id string) (*model.Enclosure, error) {
	var e model.Enclosure
	var description sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM enclosures WHERE id = ?`, id).Scan(
		&e.ID, &e.Name, &description, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan enclosure: %w", err)
	}

	e.Description = description.String
	return &e, nil
}

// CreateAnimal inserts a new animal
func (s *SQLiteStore) CreateAnimal(ctx context.Context, a *model.Animal) error {
	var hatchDate sql.NullTime
	if a.HatchDate != nil {
		hatchDate = sql.NullTime{Time: *a.HatchDate, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO animals (id, enclosure_id, name, species, morph, sex, hatch_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, nullString(a.EnclosureID), a.Name, nullString(a.Species),
		nullString(a.Morph), nullString(a.Sex), hatchDate, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create animal: %w", err)
	}
	return nil
}

// GetAnimal returns the animal with the given id, or nil when it does
// not exist
func (s *SQLiteStore) GetAnimal(ctx context.Context, id string) (*model.Animal, error) {
	var a model.Animal
	var enclosureID, species, morph, sex sql.NullString
	var hatchDate sql.NullTime

	err := s.db.QueryRowContext(ctx, `
		SELECT id, enclosure_id, name, species, morph, sex, hatch_date, created_at, updated_at
		FROM animals WHERE id = ?`, id).Scan(
		&a.ID, &enclosureID, &a.Name, &species, &morph, &sex,
		&hatchDate, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan animal: %w", err)
	}

	a.EnclosureID = enclosureID.String
	a.Species = species.String
	a.Morph = morph.String
	a.Sex = sex.String
	if hatchDate.Valid {
		a.HatchDate = &hatchDate.Time
	}
	return &a, nil
}

// ListAnimals returns all animals, optionally filtered by enclosure
func (s *SQLiteStore) ListAnimals(ctx context.Context, enclosureID string) ([]model.Animal, error) {
	query := `SELECT id, enclosure_id, name, species, morph, sex, hatch_date, created_at, updated_at FROM animals`
	args := make([]interface{}, 0, 1)
	if enclosureID != "" {
		query += " WHERE enclosure_id = ?"
		args = append(args, enclosureID)
	}
	query += " ORDER BY name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list animals: %w", err)
	}
	defer rows.Close()

	var animals []model.Animal
	for rows.Next() {
		var a model.Animal
		var encID, species, morph, sex sql.NullString
		var hatchDate sql.NullTime

		err := rows.Scan(&a.ID, &encID, &a.Name, &species, &morph, &sex,
			&hatchDate, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan animal: %w", err)
		}

		a.EnclosureID = encID.String
		a.Species = species.String
		a.Morph = morph.String
		a.Sex = sex.String
		if hatchDate.Valid {
			a.HatchDate = &hatchDate.Time
		}
		animals = append(animals, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return animals, nil
}

// AppendWeight stores a weight measurement
func (s *SQLiteStore) AppendWeight(ctx context.Context, w *model.WeightEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO weight_entries (id, animal_id, grams, measured_at, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		w.ID, w.AnimalID, w.Grams, w.MeasuredAt, nullString(w.Notes), w.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append weight entry: %w", err)
	}
	return nil
}

// ListWeights returns an animal's weight history, most recent first
func (s *SQLiteStore) ListWeights(ctx context.Context, animalID string) ([]model.WeightEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, animal_id, grams, measured_at, notes, created_at
		FROM weight_entries WHERE animal_id = ?
		ORDER BY measured_at DESC`, animalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list weight entries: %w", err)
	}
	defer rows.Close()

	var entries []model.WeightEntry
	for rows.Next() {
		var w model.WeightEntry
		var notes sql.NullString
		if err := rows.Scan(&w.ID, &w.AnimalID, &w.Grams, &w.MeasuredAt, &notes, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan weight entry: %w", err)
		}
		w.Notes = notes.String
		entries = append(entries, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return entries, nil
}

// AppendLength stores a length measurement
func (s *SQLiteStore) AppendLength(ctx context.Context, l *model.LengthEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO length_entries (id, animal_id, centimeters, measured_at, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		l.ID, l.AnimalID, l.Centimeters, l.MeasuredAt, nullString(l.Notes), l.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append length entry: %w", err)
	}
	return nil
}

// AppendShed stores a shed record
func (s *SQLiteStore) AppendShed(ctx context.Context, r *model.ShedRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shed_records (id, animal_id, shed_at, complete, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.AnimalID, r.ShedAt, r.Complete, nullString(r.Notes), r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append shed record: %w", err)
	}
	return nil
}

// AppendVetVisit stores a vet visit record
func (s *SQLiteStore) AppendVetVisit(ctx context.Context, v *model.VetVisit) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vet_visits (id, animal_id, visited_at, reason, outcome, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		v.ID, v.AnimalID, v.VisitedAt, nullString(v.Reason), nullString(v.Outcome), v.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append vet visit: %w", err)
	}
	return nil
}

// StartBrumation stores a new brumation cycle with no end date
func (s *SQLiteStore) StartBrumation(ctx context.Context, b *model.BrumationCycle) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO brumation_cycles (id, animal_id, started_at, notes, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		b.ID, b.AnimalID, b.StartedAt, nullString(b.Notes), b.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to start brumation cycle: %w", err)
	}
	return nil
}

// EndBrumation closes an open brumation cycle
func (s *SQLiteStore) EndBrumation(ctx context.Context, id string, endedAt time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE brumation_cycles SET ended_at = ? WHERE id = ? AND ended_at IS NULL`,
		endedAt, id)
	if err != nil {
		return fmt.Errorf("failed to end brumation cycle: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("open brumation cycle not found: %s", id)
	}
	return nil
}

// ListBrumations returns an animal's brumation history, most recent
// first
func (s *SQLiteStore) ListBrumations(ctx context.Context, animalID string) ([]model.BrumationCycle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, animal_id, started_at, ended_at, notes, created_at
		FROM brumation_cycles WHERE animal_id = ?
		ORDER BY started_at DESC`, animalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list brumation cycles: %w", err)
	}
	defer rows.Close()

	var cycles []model.BrumationCycle
	for rows.Next() {
		var b model.BrumationCycle
		var endedAt sql.NullTime
		var notes sql.NullString
		if err := rows.Scan(&b.ID, &b.AnimalID, &b.StartedAt, &endedAt, &notes, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan brumation cycle: %w", err)
		}
		if endedAt.Valid {
			b.EndedAt = &endedAt.Time
		}
		b.Notes = notes.String
		cycles = append(cycles, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return cycles, nil
}
