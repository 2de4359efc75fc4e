package repositories

import (
	"context"
	"errors"

	"github.com/fundhive/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type QuestionRepo struct {
	pool *pgxpool.Pool
}

func NewQuestionRepo(pool *pgxpool.Pool) *QuestionRepo {
	return &QuestionRepo{pool: pool}
}

func (r *QuestionRepo) Create(ctx context.Context, q *models.CampaignQuestion) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO campaign_questions (campaign_id, user_id, question)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, q.CampaignID, q.UserID, q.Question).Scan(&q.ID, &q.CreatedAt)
}

func (r *QuestionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.CampaignQuestion, error) {
	var q models.CampaignQuestion
	err := r.pool.QueryRow(ctx, `
		SELECT id, campaign_id, user_id, question, answer, answered_at, created_at
		FROM campaign_questions WHERE id = $1
	`, id).Scan(&q.ID, &q.CampaignID, &q.UserID, &q.Question, &q.Answer, &q.AnsweredAt, &q.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrQuestionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// Answer records the creator's reply. Only unanswered questions accept one.
func (r *QuestionRepo) Answer(ctx context.Context, id uuid.UUID, answer string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE campaign_questions SET answer = $1, answered_at = now()
		WHERE id = $2 AND answer IS NULL
	`, answer, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *QuestionRepo) ListByCampaign(ctx context.Context, campaignID uuid.UUID, limit, offset int) ([]models.CampaignQuestion, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, campaign_id, user_id, question, answer, answered_at, created_at
		FROM campaign_questions WHERE campaign_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, campaignID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []models.CampaignQuestion
	for rows.Next() {
		var q models.CampaignQuestion
		if err := rows.Scan(&q.ID, &q.CampaignID, &q.UserID, &q.Question, &q.Answer, &q.AnsweredAt, &q.CreatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
