package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/fundhive/backend/internal/db"
	"github.com/fundhive/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DonationRepo struct {
	pool *pgxpool.Pool
}

func NewDonationRepo(pool *pgxpool.Pool) *DonationRepo {
	return &DonationRepo{pool: pool}
}

// CreateTx inserts a donation inside the caller's transaction, alongside
// its fee row and the aggregate recompute.
func (r *DonationRepo) CreateTx(ctx context.Context, q db.Querier, d *models.Donation) error {
	return q.QueryRow(ctx, `
		INSERT INTO donations (campaign_id, user_id, amount, payment_status, payment_method, anonymous, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, d.CampaignID, d.UserID, d.Amount, d.PaymentStatus, d.PaymentMethod, d.Anonymous, d.Message,
	).Scan(&d.ID, &d.CreatedAt)
}

// CreateFeeTx inserts the platform fee row for a donation, same transaction.
func (r *DonationRepo) CreateFeeTx(ctx context.Context, q db.Querier, f *models.PlatformFee) error {
	return q.QueryRow(ctx, `
		INSERT INTO platform_fees (donation_id, amount)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, f.DonationID, f.Amount).Scan(&f.ID, &f.CreatedAt)
}

func (r *DonationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Donation, error) {
	var d models.Donation
	err := r.pool.QueryRow(ctx, `
		SELECT id, campaign_id, user_id, amount, payment_status, payment_method, anonymous, message, created_at
		FROM donations WHERE id = $1
	`, id).Scan(&d.ID, &d.CampaignID, &d.UserID, &d.Amount, &d.PaymentStatus, &d.PaymentMethod,
		&d.Anonymous, &d.Message, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrDonationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ConfirmTx flips a pending donation to completed. The status guard makes
// duplicate confirmations from an at-least-once payment collaborator a
// no-op: the second delivery matches zero rows.
func (r *DonationRepo) ConfirmTx(ctx context.Context, q db.Querier, id uuid.UUID) (bool, error) {
	tag, err := q.Exec(ctx, `
		UPDATE donations SET payment_status = $1 WHERE id = $2 AND payment_status = $3
	`, models.PaymentStatusCompleted, id, models.PaymentStatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkFailedTx records a gateway-reported payment failure.
func (r *DonationRepo) MarkFailedTx(ctx context.Context, q db.Querier, id uuid.UUID) (bool, error) {
	tag, err := q.Exec(ctx, `
		UPDATE donations SET payment_status = $1 WHERE id = $2 AND payment_status = $3
	`, models.PaymentStatusFailed, id, models.PaymentStatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

type DonationFilter struct {
	CampaignID *uuid.UUID
	UserID     *uuid.UUID
	Status     *string
	Limit      int
	Offset     int
}

func (r *DonationRepo) List(ctx context.Context, f DonationFilter) ([]models.Donation, error) {
	query := `
		SELECT id, campaign_id, user_id, amount, payment_status, payment_method, anonymous, message, created_at
		FROM donations
	`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.CampaignID != nil {
		where = append(where, fmt.Sprintf("campaign_id = $%d", argIdx))
		args = append(args, *f.CampaignID)
		argIdx++
	}
	if f.UserID != nil {
		where = append(where, fmt.Sprintf("user_id = $%d", argIdx))
		args = append(args, *f.UserID)
		argIdx++
	}
	if f.Status != nil {
		where = append(where, fmt.Sprintf("payment_status = $%d", argIdx))
		args = append(args, *f.Status)
		argIdx++
	}

	if len(where) > 0 {
		query += " WHERE "
		for i, w := range where {
			if i > 0 {
				query += " AND "
			}
			query += w
		}
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var donations []models.Donation
	for rows.Next() {
		var d models.Donation
		if err := rows.Scan(&d.ID, &d.CampaignID, &d.UserID, &d.Amount, &d.PaymentStatus, &d.PaymentMethod,
			&d.Anonymous, &d.Message, &d.CreatedAt); err != nil {
			return nil, err
		}
		donations = append(donations, d)
	}
	return donations, rows.Err()
}
