package handlers

import (
	"time"

	"github.com/fundhive/backend/internal/http/dto"
	"github.com/fundhive/backend/internal/middleware"
	"github.com/fundhive/backend/internal/models"
	"github.com/fundhive/backend/internal/repositories"
	"github.com/fundhive/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AdminHandler struct {
	campaignService  *services.CampaignService
	reconcileService *services.ReconcileService
	log              *zap.Logger
}

func NewAdminHandler(campaignService *services.CampaignService, reconcileService *services.ReconcileService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{campaignService: campaignService, reconcileService: reconcileService, log: log}
}

// ListPending returns the review queue, oldest submissions first.
func (h *AdminHandler) ListPending(c *fiber.Ctx) error {
	status := models.CampaignStatusPending
	limit, offset := pagination(c, 50)

	campaigns, err := h.campaignService.List(c.Context(), repositories.CampaignFilter{
		Status: &status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: campaigns})
}

func (h *AdminHandler) Decide(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid campaign id")
	}

	var req dto.DecideCampaignRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	decision := models.CampaignStatusRejected
	if req.Approve {
		decision = models.CampaignStatusApproved
	}
	reason := ""
	if req.Reason != nil {
		reason = *req.Reason
	}

	campaign, err := h.campaignService.Decide(c.Context(), id, middleware.GetUserID(c), decision, reason)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: campaign})
}

func (h *AdminHandler) Feature(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid campaign id")
	}

	if err := h.campaignService.Feature(c.Context(), id, middleware.GetUserID(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *AdminHandler) Unfeature(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid campaign id")
	}

	if err := h.campaignService.Unfeature(c.Context(), id, middleware.GetUserID(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

// RunReconciliation triggers the daily lifecycle pass on demand.
func (h *AdminHandler) RunReconciliation(c *fiber.Ctx) error {
	result, err := h.reconcileService.RunPass(c.Context(), time.Now())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.ReconcileRunResponse{
		Activated:  result.Activated,
		Successful: result.Successful,
		Failed:     result.Failed,
	}})
}

// PreviewReconciliation reports what the next pass would transition
// without writing anything.
func (h *AdminHandler) PreviewReconciliation(c *fiber.Ctx) error {
	preview, err := h.reconcileService.Preview(c.Context(), time.Now())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: preview})
}
