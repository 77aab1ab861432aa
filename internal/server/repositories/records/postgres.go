package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/vehiclereg/internal/common"
	"github.com/dmitrijs2005/vehiclereg/internal/dbx"
	"github.com/dmitrijs2005/vehiclereg/internal/vehicle"
)

const uniqueViolation = "23505"

const recordColumns = `id, registration_number, details, front_photo, left_photo, right_photo, rear_photo, status`

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]vehicle.Record, error) {
	query :=
		`SELECT ` + recordColumns + ` FROM records
		 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []vehicle.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (vehicle.Record, error) {
	return getRecord(ctx, r.db, id, false)
}

func (r *PostgresRepository) ExistsByKey(ctx context.Context, key string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM records WHERE registration_key = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, key).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, rec vehicle.Record) (vehicle.Record, error) {
	query :=
		`INSERT INTO records (id, registration_key, registration_number, details,
		     front_photo, left_photo, right_photo, rear_photo, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	rec.ID = "rec_" + uuid.NewString()
	if rec.Status == nil {
		rec.Status = vehicle.Completion{}
	}

	details, status, err := encode(rec)
	if err != nil {
		return vehicle.Record{}, err
	}

	_, err = r.db.ExecContext(ctx, query,
		rec.ID, rec.Key(), rec.RegistrationNumber, details,
		rec.FrontPhoto, rec.LeftPhoto, rec.RightPhoto, rec.RearPhoto, status)
	if err != nil {
		if isUniqueViolation(err) {
			return vehicle.Record{}, common.ErrConflict
		}
		return vehicle.Record{}, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}

// Modify locks the row for the duration of fn.
func (r *PostgresRepository) Modify(ctx context.Context, id string, fn ModifyFunc) (vehicle.Record, error) {
	query :=
		`UPDATE records
		 SET details = $2, front_photo = $3, left_photo = $4, right_photo = $5, rear_photo = $6,
		     updated_at = now()
		 WHERE id = $1`

	return dbx.InTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) (vehicle.Record, error) {
		cur, err := getRecord(ctx, tx, id, true)
		if err != nil {
			return vehicle.Record{}, err
		}
		next, err := fn(cur)
		if err != nil {
			return vehicle.Record{}, err
		}
		next.ID = cur.ID
		next.RegistrationNumber = cur.RegistrationNumber
		next.Status = cur.Status

		details, _, err := encode(next)
		if err != nil {
			return vehicle.Record{}, err
		}
		if _, err := tx.ExecContext(ctx, query, id, details,
			next.FrontPhoto, next.LeftPhoto, next.RightPhoto, next.RearPhoto); err != nil {
			return vehicle.Record{}, fmt.Errorf("db error: %w", err)
		}
		return next, nil
	})
}

// SetStatus merges a single key into the status document, so concurrent
// patches of different stages do not overwrite each other.
func (r *PostgresRepository) SetStatus(ctx context.Context, id string, stage vehicle.Stage, value bool) (vehicle.Record, error) {
	query :=
		`UPDATE records
		 SET status = status || jsonb_build_object($2::text, $3::boolean), updated_at = now()
		 WHERE id = $1
		 RETURNING ` + recordColumns

	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, id, string(stage), value))
	if err != nil {
		return vehicle.Record{}, err
	}
	return rec, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func getRecord(ctx context.Context, db dbx.DBTX, id string, forUpdate bool) (vehicle.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	return scanRecord(db.QueryRowContext(ctx, query, id))
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (vehicle.Record, error) {
	var (
		rec     vehicle.Record
		details []byte
		status  []byte
	)
	err := s.Scan(&rec.ID, &rec.RegistrationNumber, &details,
		&rec.FrontPhoto, &rec.LeftPhoto, &rec.RightPhoto, &rec.RearPhoto, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return vehicle.Record{}, common.ErrorNotFound
		}
		return vehicle.Record{}, fmt.Errorf("db error: %w", err)
	}
	if err := json.Unmarshal(details, &rec.Details); err != nil {
		return vehicle.Record{}, fmt.Errorf("decoding details of %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal(status, &rec.Status); err != nil {
		return vehicle.Record{}, fmt.Errorf("decoding status of %s: %w", rec.ID, err)
	}
	return rec, nil
}

func encode(rec vehicle.Record) (details, status []byte, err error) {
	details, err = json.Marshal(rec.Details)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding details: %w", err)
	}
	status, err = json.Marshal(rec.Status)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding status: %w", err)
	}
	return details, status, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
