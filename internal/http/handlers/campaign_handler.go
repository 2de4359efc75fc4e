package handlers

import (
	"strconv"
	"time"

	"github.com/fundhive/backend/internal/http/dto"
	"github.com/fundhive/backend/internal/middleware"
	"github.com/fundhive/backend/internal/models"
	"github.com/fundhive/backend/internal/repositories"
	"github.com/fundhive/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CampaignHandler struct {
	campaignService *services.CampaignService
	donationService *services.DonationService
	log             *zap.Logger
}

func NewCampaignHandler(campaignService *services.CampaignService, donationService *services.DonationService, log *zap.Logger) *CampaignHandler {
	return &CampaignHandler{campaignService: campaignService, donationService: donationService, log: log}
}

func parseCampaignInput(req dto.SubmitCampaignRequest) (services.SubmitCampaignInput, error) {
	goal, err := decimal.NewFromString(req.Goal)
	if err != nil {
		return services.SubmitCampaignInput{}, models.Validation("goal must be a decimal number")
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return services.SubmitCampaignInput{}, models.Validation("start_date must be YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return services.SubmitCampaignInput{}, models.Validation("end_date must be YYYY-MM-DD")
	}
	return services.SubmitCampaignInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		VideoURL:    req.VideoURL,
		GoalAmount:  goal,
		StartDate:   start,
		EndDate:     end,
	}, nil
}

func (h *CampaignHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitCampaignRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	in, err := parseCampaignInput(req)
	if err != nil {
		return respondError(c, h.log, err)
	}

	campaign, err := h.campaignService.Submit(c.Context(), middleware.GetUserID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: campaign})
}

func (h *CampaignHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid campaign id")
	}

	var req dto.UpdateCampaignRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	in, err := parseCampaignInput(dto.SubmitCampaignRequest(req))
	if err != nil {
		return respondError(c, h.log, err)
	}

	campaign, err := h.campaignService.UpdateContent(c.Context(), id, middleware.GetUserID(c), services.UpdateCampaignInput(in))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: campaign})
}

func (h *CampaignHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid campaign id")
	}

	campaign, err := h.campaignService.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: campaign})
}

func (h *CampaignHandler) List(c *fiber.Ctx) error {
	filter := repositories.CampaignFilter{Limit: 20}

	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}
	if v := c.Query("status"); v != "" {
		filter.Status = &v
	}
	if v := c.Query("category"); v != "" {
		filter.Category = &v
	}
	if v := c.Query("featured"); v != "" {
		featured := v == "true" || v == "1"
		filter.Featured = &featured
	}

	campaigns, err := h.campaignService.List(c.Context(), filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: campaigns})
}

// ListMine returns the authenticated creator's campaigns in every status.
func (h *CampaignHandler) ListMine(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	filter := repositories.CampaignFilter{CreatorUserID: &userID, Limit: 50}

	campaigns, err := h.campaignService.List(c.Context(), filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: campaigns})
}

func (h *CampaignHandler) Cancel(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid campaign id")
	}

	campaign, err := h.campaignService.Cancel(c.Context(), id, middleware.GetUserID(c), middleware.GetRole(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: campaign})
}

// Events returns the campaign's audit trail, newest first.
func (h *CampaignHandler) Events(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid campaign id")
	}

	entries, err := h.campaignService.GetEvents(c.Context(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: entries})
}

// ListDonations returns a campaign's completed donations, anonymized where
// the donor asked for it.
func (h *CampaignHandler) ListDonations(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid campaign id")
	}

	limit, offset := pagination(c, 20)
	donations, err := h.donationService.ListByCampaign(c.Context(), id, limit, offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.NewDonationViews(donations)})
}

func (h *CampaignHandler) AskQuestion(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid campaign id")
	}

	var req dto.AskQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	q, err := h.campaignService.AskQuestion(c.Context(), id, middleware.GetUserID(c), req.Question)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: q})
}

func (h *CampaignHandler) AnswerQuestion(c *fiber.Ctx) error {
	questionID, err := uuid.Parse(c.Params("question_id"))
	if err != nil {
		return badRequest(c, "invalid question id")
	}

	var req dto.AnswerQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	q, err := h.campaignService.AnswerQuestion(c.Context(), questionID, middleware.GetUserID(c), req.Answer)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: q})
}

func (h *CampaignHandler) ListQuestions(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid campaign id")
	}

	limit, offset := pagination(c, 20)
	questions, err := h.campaignService.ListQuestions(c.Context(), id, limit, offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: questions})
}

func pagination(c *fiber.Ctx, defaultLimit int) (int, int) {
	limit, offset := defaultLimit, 0
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
