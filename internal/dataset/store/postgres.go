package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"afi/internal/dataset/models"
	"afi/pkg/platform/tx"
)

var insertColumns = []string{
	"period",
	"state_canonical",
	"district_clean",
	"pincode",
	"afi_composite_score",
	"enrol_total",
	"demo_total",
	"bio_total",
	"aadhaar_base",
	"age_mismatch_score",
	"cluster_id",
	"cluster_name",
}

// PostgresStore persists records in the district_afi_data table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed record store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Query returns every record ordered by descending score.
func (s *PostgresStore) Query(ctx context.Context) ([]models.Record, error) {
	query := `
		SELECT id, period, state_canonical, district_clean, pincode,
		       afi_composite_score, enrol_total, demo_total, bio_total,
		       aadhaar_base, age_mismatch_score, cluster_id, cluster_name
		FROM ` + models.TableName + `
		ORDER BY afi_composite_score DESC, id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []models.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// Delete removes the rows selected by filter in one statement.
func (s *PostgresStore) Delete(ctx context.Context, filter models.Filter) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM `+models.TableName+` WHERE id <> $1`, filter.IDNot)
	if err != nil {
		return fmt.Errorf("delete records: %w", err)
	}
	return nil
}

// Insert writes batch with COPY inside one transaction so the batch lands
// entirely or not at all.
func (s *PostgresStore) Insert(ctx context.Context, batch []models.Record) error {
	if len(batch) == 0 {
		return nil
	}
	return tx.Run(ctx, s.db, func(ctx context.Context, t *sql.Tx) error {
		stmt, err := t.PrepareContext(ctx, pq.CopyIn(models.TableName, insertColumns...))
		if err != nil {
			return fmt.Errorf("prepare copy: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, r := range batch {
			if _, err := stmt.ExecContext(ctx,
				r.Period,
				r.StateCanonical,
				r.DistrictClean,
				r.Pincode,
				r.AFICompositeScore,
				r.EnrolTotal,
				r.DemoTotal,
				r.BioTotal,
				r.AadhaarBase,
				r.AgeMismatchScore,
				r.ClusterID,
				r.ClusterName,
			); err != nil {
				return fmt.Errorf("copy record: %w", err)
			}
		}
		if _, err := stmt.ExecContext(ctx); err != nil {
			return fmt.Errorf("flush copy: %w", err)
		}
		return nil
	})
}

// Count returns the number of stored records.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM `+models.TableName).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (models.Record, error) {
	var (
		r           models.Record
		pincode     sql.NullString
		enrol       sql.NullInt64
		demo        sql.NullInt64
		bio         sql.NullInt64
		base        sql.NullInt64
		ageMismatch sql.NullFloat64
		clusterID   sql.NullInt32
		clusterName sql.NullString
	)
	if err := row.Scan(
		&r.ID, &r.Period, &r.StateCanonical, &r.DistrictClean, &pincode,
		&r.AFICompositeScore, &enrol, &demo, &bio,
		&base, &ageMismatch, &clusterID, &clusterName,
	); err != nil {
		return models.Record{}, err
	}
	r.Pincode = nullString(pincode)
	r.EnrolTotal = nullInt64(enrol)
	r.DemoTotal = nullInt64(demo)
	r.BioTotal = nullInt64(bio)
	r.AadhaarBase = nullInt64(base)
	if ageMismatch.Valid {
		r.AgeMismatchScore = &ageMismatch.Float64
	}
	if clusterID.Valid {
		v := int(clusterID.Int32)
		r.ClusterID = &v
	}
	r.ClusterName = nullString(clusterName)
	return r, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullInt64(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}
