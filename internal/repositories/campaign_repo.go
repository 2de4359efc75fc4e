package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fundhive/backend/internal/db"
	"github.com/fundhive/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CampaignRepo struct {
	pool *pgxpool.Pool
}

func NewCampaignRepo(pool *pgxpool.Pool) *CampaignRepo {
	return &CampaignRepo{pool: pool}
}

const campaignColumns = `id, creator_user_id, title, description, category, image_url, video_url,
	       goal_amount, current_amount, start_date, end_date, status,
	       backers_count, is_featured, reason, created_at, updated_at`

func scanCampaign(row pgx.Row, c *models.Campaign) error {
	return row.Scan(&c.ID, &c.CreatorUserID, &c.Title, &c.Description, &c.Category, &c.ImageURL, &c.VideoURL,
		&c.GoalAmount, &c.CurrentAmount, &c.StartDate, &c.EndDate, &c.Status,
		&c.BackersCount, &c.IsFeatured, &c.Reason, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CampaignRepo) Create(ctx context.Context, c *models.Campaign) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO campaigns (creator_user_id, title, description, category, image_url, video_url,
		                       goal_amount, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, current_amount, backers_count, created_at, updated_at
	`, c.CreatorUserID, c.Title, c.Description, c.Category, c.ImageURL, c.VideoURL,
		c.GoalAmount, c.StartDate, c.EndDate, c.Status,
	).Scan(&c.ID, &c.CurrentAmount, &c.BackersCount, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CampaignRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	var c models.Campaign
	err := scanCampaign(r.pool.QueryRow(ctx, `
		SELECT `+campaignColumns+` FROM campaigns WHERE id = $1
	`, id), &c)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrCampaignNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetForUpdate locks the campaign row for the duration of the transaction.
// Donation writers take this lock before touching the ledger so concurrent
// writes to one campaign serialize and each recompute sees every committed
// donation.
func (r *CampaignRepo) GetForUpdate(ctx context.Context, q db.Querier, id uuid.UUID) (*models.Campaign, error) {
	var c models.Campaign
	err := scanCampaign(q.QueryRow(ctx, `
		SELECT `+campaignColumns+` FROM campaigns WHERE id = $1 FOR UPDATE
	`, id), &c)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrCampaignNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateStatus performs a guarded transition: the row only changes if it is
// still in the expected from-status. Returns false when a concurrent writer
// got there first.
func (r *CampaignRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE campaigns SET status = $1, updated_at = now() WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateDecision applies an admin approve/reject to a pending campaign.
// Approving clears any previous rejection reason; rejecting records one.
func (r *CampaignRepo) UpdateDecision(ctx context.Context, id uuid.UUID, to string, reason *string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE campaigns SET status = $1, reason = $2, updated_at = now()
		WHERE id = $3 AND status = $4
	`, to, reason, id, models.CampaignStatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateContent rewrites the editable fields. The status guard keeps edits
// out of reviewed or running campaigns; passing newStatus pending with the
// row currently rejected is the resubmission path and clears the reason.
func (r *CampaignRepo) UpdateContent(ctx context.Context, c *models.Campaign) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE campaigns SET title = $1, description = $2, category = $3, image_url = $4, video_url = $5,
		       goal_amount = $6, start_date = $7, end_date = $8, status = $9, reason = $10, updated_at = now()
		WHERE id = $11 AND status IN ($12, $13)
	`, c.Title, c.Description, c.Category, c.ImageURL, c.VideoURL,
		c.GoalAmount, c.StartDate, c.EndDate, c.Status, c.Reason,
		c.ID, models.CampaignStatusPending, models.CampaignStatusRejected)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SetFeatured marks a campaign featured while holding the system-wide cap.
// The advisory lock serializes concurrent feature requests so two of them
// cannot both pass a stale count.
func (r *CampaignRepo) SetFeatured(ctx context.Context, id uuid.UUID, cap int) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('campaigns_featured'))`); err != nil {
			return err
		}

		var already bool
		err := tx.QueryRow(ctx, `SELECT is_featured FROM campaigns WHERE id = $1`, id).Scan(&already)
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrCampaignNotFound
		}
		if err != nil {
			return err
		}

		var count int
		if err := tx.QueryRow(ctx, `SELECT count(*) FROM campaigns WHERE is_featured = true`).Scan(&count); err != nil {
			return err
		}
		if err := models.CanFeature(already, count, cap); err != nil {
			return err
		}
		if already {
			return nil
		}

		_, err = tx.Exec(ctx, `
			UPDATE campaigns SET is_featured = true, updated_at = now() WHERE id = $1
		`, id)
		return err
	})
}

func (r *CampaignRepo) ClearFeatured(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE campaigns SET is_featured = false, updated_at = now() WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrCampaignNotFound
	}
	return nil
}

// RecomputeAggregates is the single source-of-truth path for campaign
// totals: sum and distinct-backer count over completed donations, written
// back to the materialized columns. Runs inside the caller's transaction.
func (r *CampaignRepo) RecomputeAggregates(ctx context.Context, q db.Querier, campaignID uuid.UUID) (*models.CampaignTotals, error) {
	var t models.CampaignTotals
	err := q.QueryRow(ctx, `
		UPDATE campaigns SET
			current_amount = agg.total,
			backers_count = agg.backers,
			updated_at = now()
		FROM (
			SELECT COALESCE(sum(amount), 0) AS total, count(DISTINCT user_id) AS backers
			FROM donations
			WHERE campaign_id = $1 AND payment_status = $2
		) AS agg
		WHERE campaigns.id = $1
		RETURNING campaigns.current_amount, campaigns.backers_count
	`, campaignID, models.PaymentStatusCompleted).Scan(&t.CurrentAmount, &t.BackersCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrCampaignNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// StatusChange identifies a campaign moved by a bulk reconciliation update,
// with enough context to notify the creator afterwards.
type StatusChange struct {
	ID            uuid.UUID
	CreatorUserID uuid.UUID
	Title         string
}

func (r *CampaignRepo) collectChanges(rows pgx.Rows) ([]StatusChange, error) {
	defer rows.Close()
	var changes []StatusChange
	for rows.Next() {
		var ch StatusChange
		if err := rows.Scan(&ch.ID, &ch.CreatorUserID, &ch.Title); err != nil {
			return nil, err
		}
		changes = append(changes, ch)
	}
	return changes, rows.Err()
}

// ActivateDue moves approved campaigns whose start date has arrived to
// active. The status guard in the WHERE clause makes repeat runs no-ops.
func (r *CampaignRepo) ActivateDue(ctx context.Context, today time.Time) ([]StatusChange, error) {
	rows, err := r.pool.Query(ctx, `
		UPDATE campaigns SET status = $1, updated_at = now()
		WHERE status = $2 AND start_date <= $3::date
		RETURNING id, creator_user_id, title
	`, models.CampaignStatusActive, models.CampaignStatusApproved, models.DateOnly(today))
	if err != nil {
		return nil, err
	}
	return r.collectChanges(rows)
}

// CompleteDue closes out ended active campaigns. end_date strictly before
// today keeps a campaign running through the whole of its final day. The
// goalMet flag selects the successful or the failed branch; together the
// two predicates partition ended campaigns by current_amount vs goal_amount
// at this moment.
func (r *CampaignRepo) CompleteDue(ctx context.Context, today time.Time, goalMet bool) ([]StatusChange, error) {
	to := models.CampaignStatusSuccessful
	cmp := ">="
	if !goalMet {
		to = models.CampaignStatusFailed
		cmp = "<"
	}
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		UPDATE campaigns SET status = $1, updated_at = now()
		WHERE status = $2 AND end_date < $3::date AND current_amount %s goal_amount
		RETURNING id, creator_user_id, title
	`, cmp), to, models.CampaignStatusActive, models.DateOnly(today))
	if err != nil {
		return nil, err
	}
	return r.collectChanges(rows)
}

// ListActivationDue is the read-only preview counterpart of ActivateDue.
func (r *CampaignRepo) ListActivationDue(ctx context.Context, today time.Time) ([]StatusChange, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, creator_user_id, title FROM campaigns
		WHERE status = $1 AND start_date <= $2::date
		ORDER BY start_date
	`, models.CampaignStatusApproved, models.DateOnly(today))
	if err != nil {
		return nil, err
	}
	return r.collectChanges(rows)
}

// ListCompletionDue is the read-only preview counterpart of CompleteDue.
func (r *CampaignRepo) ListCompletionDue(ctx context.Context, today time.Time, goalMet bool) ([]StatusChange, error) {
	cmp := ">="
	if !goalMet {
		cmp = "<"
	}
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT id, creator_user_id, title FROM campaigns
		WHERE status = $1 AND end_date < $2::date AND current_amount %s goal_amount
		ORDER BY end_date
	`, cmp), models.CampaignStatusActive, models.DateOnly(today))
	if err != nil {
		return nil, err
	}
	return r.collectChanges(rows)
}

type CampaignFilter struct {
	CreatorUserID *uuid.UUID
	Status        *string
	Category      *string
	Featured      *bool
	Limit         int
	Offset        int
}

func (r *CampaignRepo) List(ctx context.Context, f CampaignFilter) ([]models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.CreatorUserID != nil {
		where = append(where, fmt.Sprintf("creator_user_id = $%d", argIdx))
		args = append(args, *f.CreatorUserID)
		argIdx++
	}
	if f.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *f.Status)
		argIdx++
	}
	if f.Category != nil {
		where = append(where, fmt.Sprintf("category = $%d", argIdx))
		args = append(args, *f.Category)
		argIdx++
	}
	if f.Featured != nil {
		where = append(where, fmt.Sprintf("is_featured = $%d", argIdx))
		args = append(args, *f.Featured)
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

	var campaigns []models.Campaign
	for rows.Next() {
		var c models.Campaign
		if err := scanCampaign(rows, &c); err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}
