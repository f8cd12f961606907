package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/herptrack/herptrack/internal/model"
)

// SQLiteStore persists tasks, completion logs, and husbandry records
// using SQLite. Writes are serialized per row by the database;
// completion logs are append-only.
type SQLiteStore struct {
	logger *zap.Logger
	db     *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath and ensures
// the schema exists
func NewSQLiteStore(logger *zap.Logger, dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{
		logger: logger,
		db:     db,
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// initialize creates the necessary tables if they don't exist
func (s *SQLiteStore) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS care_tasks (
			id TEXT PRIMARY KEY,
			animal_id TEXT,
			enclosure_id TEXT,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			frequency TEXT NOT NULL,
			custom_interval_days INTEGER,
			scheduled_hour INTEGER,
			scheduled_minute INTEGER,
			next_due_at DATETIME NOT NULL,
			active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_care_tasks_next_due_at ON care_tasks(next_due_at);
		CREATE INDEX IF NOT EXISTS idx_care_tasks_animal_id ON care_tasks(animal_id);

		CREATE TABLE IF NOT EXISTS completion_logs (
			id TEXT PRIMARY KEY,
			task_id TEXT NOT NULL,
			completed_at DATETIME NOT NULL,
			skipped INTEGER NOT NULL DEFAULT 0,
			skip_reason TEXT,
			feeder_type TEXT,
			quantity REAL,
			notes TEXT,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_completion_logs_task_id ON completion_logs(task_id);
		CREATE INDEX IF NOT EXISTS idx_completion_logs_completed_at ON completion_logs(completed_at);

		CREATE TABLE IF NOT EXISTS enclosures (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS animals (
			id TEXT PRIMARY KEY,
			enclosure_id TEXT,
			name TEXT NOT NULL,
			species TEXT,
			morph TEXT,
			sex TEXT,
			hatch_date DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_animals_enclosure_id ON animals(enclosure_id);

		CREATE TABLE IF NOT EXISTS weight_entries (
			id TEXT PRIMARY KEY,
			animal_id TEXT NOT NULL,
			grams REAL NOT NULL,
			measured_at DATETIME NOT NULL,
			notes TEXT,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_weight_entries_animal_id ON weight_entries(animal_id);

		CREATE TABLE IF NOT EXISTS length_entries (
			id TEXT PRIMARY KEY,
			animal_id TEXT NOT NULL,
			centimeters REAL NOT NULL,
			measured_at DATETIME NOT NULL,
			notes TEXT,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_length_entries_animal_id ON length_entries(animal_id);

		CREATE TABLE IF NOT EXISTS shed_records (
			id TEXT PRIMARY KEY,
			animal_id TEXT NOT NULL,
			shed_at DATETIME NOT NULL,
			complete INTEGER NOT NULL DEFAULT 1,
			notes TEXT,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_shed_records_animal_id ON shed_records(animal_id);

		CREATE TABLE IF NOT EXISTS vet_visits (
			id TEXT PRIMARY KEY,
			animal_id TEXT NOT NULL,
			visited_at DATETIME NOT NULL,
			reason TEXT,
			outcome TEXT,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_vet_visits_animal_id ON vet_visits(animal_id);

		CREATE TABLE IF NOT EXISTS brumation_cycles (
			id TEXT PRIMARY KEY,
			animal_id TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			ended_at DATETIME,
			notes TEXT,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_brumation_cycles_animal_id ON brumation_cycles(animal_id);
	`)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	return nil
}

// CreateTask inserts a new care task
func (s *SQLiteStore) CreateTask(ctx context.Context, task *model.CareTask) error {
	var hour, minute sql.NullInt64
	if task.ScheduledTime != nil {
		hour = sql.NullInt64{Int64: int64(task.ScheduledTime.Hour), Valid: true}
		minute = sql.NullInt64{Int64: int64(task.ScheduledTime.Minute), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO care_tasks (
			id, animal_id, enclosure_id, name, type, frequency,
			custom_interval_days, scheduled_hour, scheduled_minute,
			next_due_at, active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID,
		nullString(task.AnimalID),
		nullString(task.EnclosureID),
		task.Name,
		task.Type,
		task.Frequency,
		sql.NullInt64{Int64: int64(task.CustomIntervalDays), Valid: task.CustomIntervalDays > 0},
		hour,
		minute,
		task.NextDueAt,
		task.Active,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// GetTask returns the task with the given id, or nil when it does not
// exist
func (s *SQLiteStore) GetTask(ctx context.Context, id string) (*model.CareTask, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, animal_id, enclosure_id, name, type, frequency,
			custom_interval_days, scheduled_hour, scheduled_minute,
			next_due_at, active, created_at, updated_at
		FROM care_tasks
		WHERE id = ?`, id)

	task, err := scanTask(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}
	return task, nil
}

// UpdateTaskDue persists a new due instant for a task. This is the only
// scheduling mutation; history is never rewritten.
func (s *SQLiteStore) UpdateTaskDue(ctx context.Context, id string, due time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE care_tasks SET next_due_at = ?, updated_at = ? WHERE id = ?`,
		due, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update task due date: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("task not found: %s", id)
	}
	return nil
}

// SetTaskActive toggles a task in or out of all computations
func (s *SQLiteStore) SetTaskActive(ctx context.Context, id string, active bool) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE care_tasks SET active = ?, updated_at = ? WHERE id = ?`,
		active, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update task active flag: %w", err)
	}
	return nil
}

// AppendLog stores a completion log record
func (s *SQLiteStore) AppendLog(ctx context.Context, log *model.CompletionLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO completion_logs (
			id, task_id, completed_at, skipped, skip_reason,
			feeder_type, quantity, notes, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID,
		log.TaskID,
		log.CompletedAt,
		log.Skipped,
		nullString(log.SkipReason),
		nullString(log.FeederType),
		sql.NullFloat64{Float64: log.Quantity, Valid: log.Quantity != 0},
		nullString(log.Notes),
		log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append completion log: %w", err)
	}
	return nil
}

// ListLogs returns a task's completion history, most recent first
func (s *SQLiteStore) ListLogs(ctx context.Context, taskID string) ([]model.CompletionLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, completed_at, skipped, skip_reason,
			feeder_type, quantity, notes, created_at
		FROM completion_logs
		WHERE task_id = ?
		ORDER BY completed_at DESC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completion logs: %w", err)
	}
	defer rows.Close()

	logs, err := scanLogs(rows)
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// ListTasksWithLogs returns every task paired with its full completion
// history, for read-side aggregation
func (s *SQLiteStore) ListTasksWithLogs(ctx context.Context) ([]model.TaskWithLogs, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, animal_id, enclosure_id, name, type, frequency,
			custom_interval_days, scheduled_hour, scheduled_minute,
			next_due_at, active, created_at, updated_at
		FROM care_tasks
		ORDER BY next_due_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var items []model.TaskWithLogs
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		items = append(items, model.TaskWithLogs{Task: *task})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	for i := range items {
		logs, err := s.ListLogs(ctx, items[i].Task.ID)
		if err != nil {
			return nil, err
		}
		items[i].Logs = logs
	}
	return items, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan logic
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row scanner) (*model.CareTask, error) {
	var task model.CareTask
	var animalID, enclosureID sql.NullString
	var intervalDays, hour, minute sql.NullInt64

	err := row.Scan(
		&task.ID,
		&animalID,
		&enclosureID,
		&task.Name,
		&task.Type,
		&task.Frequency,
		&intervalDays,
		&hour,
		&minute,
		&task.NextDueAt,
		&task.Active,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.AnimalID = animalID.String
	task.EnclosureID = enclosureID.String
	if intervalDays.Valid {
		task.CustomIntervalDays = int(intervalDays.Int64)
	}
	if hour.Valid && minute.Valid {
		task.ScheduledTime = &model.TimeOfDay{
			Hour:   int(hour.Int64),
			Minute: int(minute.Int64),
		}
	}
	return &task, nil
}

func scanLogs(rows *sql.Rows) ([]model.CompletionLog, error) {
	var logs []model.CompletionLog
	for rows.Next() {
		var log model.CompletionLog
		var skipReason, feederType, notes sql.NullString
		var quantity sql.NullFloat64

		err := rows.Scan(
			&log.ID,
			&log.TaskID,
			&log.CompletedAt,
			&log.Skipped,
			&skipReason,
			&feederType,
			&quantity,
			&notes,
			&log.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan completion log: %w", err)
		}

		log.SkipReason = skipReason.String
		log.FeederType = feederType.String
		log.Quantity = quantity.Float64
		log.Notes = notes.String
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return logs, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
