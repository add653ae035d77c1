package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"epi_notifier/internal/domain/equipment"
)

type PostgresEquipmentRepository struct {
	db *sql.DB
}

func NewPostgresEquipmentRepository(db *sql.DB) *PostgresEquipmentRepository {
	return &PostgresEquipmentRepository{db: db}
}

// ListExpiringWithin returns non-returned equipment assignments whose expiry
// date falls within [start, end] inclusive. A NULL returned flag counts as
// not returned. Rows come back in expiry-date order, which the aggregator
// re-sorts anyway for its tie-break rules.
func (r *PostgresEquipmentRepository) ListExpiringWithin(ctx context.Context, start, end time.Time) ([]equipment.Record, error) {
	query := `SELECT holder_name, registration_id, equipment_name, certification_id, expiry_date, COALESCE(returned, FALSE)
               FROM equipment_assignments
               WHERE expiry_date::date BETWEEN $1 AND $2
                 AND COALESCE(returned, FALSE) = FALSE
               ORDER BY expiry_date ASC`

	rows, err := r.db.QueryContext(ctx, query, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("error listing expiring equipment assignments: %w", err)
	}
	defer rows.Close()

	records := make([]equipment.Record, 0)
	for rows.Next() {
		var rec equipment.Record
		if err := rows.Scan(&rec.HolderName, &rec.RegistrationID, &rec.EquipmentName, &rec.CertificationID, &rec.ExpiryDate, &rec.Returned); err != nil {
			return nil, fmt.Errorf("error scanning equipment assignment: %w", err)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating equipment assignments: %w", err)
	}
	return records, nil
}
