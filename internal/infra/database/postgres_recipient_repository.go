package database

import (
	"context"
	"database/sql"
	"fmt"

	"epi_notifier/internal/domain/recipient"
)

type PostgresRecipientRepository struct {
	db *sql.DB
}

func NewPostgresRecipientRepository(db *sql.DB) *PostgresRecipientRepository {
	return &PostgresRecipientRepository{db: db}
}

// ListNotifiable returns all users with a non-empty email address, ordered by
// name for stable logs. Address form is validated later, at dispatch time.
func (r *PostgresRecipientRepository) ListNotifiable(ctx context.Context) ([]recipient.Recipient, error) {
	query := `SELECT name, email
               FROM users
               WHERE email IS NOT NULL AND email <> ''
               ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing notifiable recipients: %w", err)
	}
	defer rows.Close()

	recipients := make([]recipient.Recipient, 0)
	for rows.Next() {
		var rec recipient.Recipient
		if err := rows.Scan(&rec.Name, &rec.Email); err != nil {
			return nil, fmt.Errorf("error scanning recipient: %w", err)
		}
		recipients = append(recipients, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipients: %w", err)
	}
	return recipients, nil
}
