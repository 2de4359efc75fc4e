package handlers

import (
	"github.com/fundhive/backend/internal/http/dto"
	"github.com/fundhive/backend/internal/middleware"
	"github.com/fundhive/backend/internal/models"
	"github.com/fundhive/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type DonationHandler struct {
	donationService *services.DonationService
	log             *zap.Logger
}

func NewDonationHandler(donationService *services.DonationService, log *zap.Logger) *DonationHandler {
	return &DonationHandler{donationService: donationService, log: log}
}

func (h *DonationHandler) Donate(c *fiber.Ctx) error {
	campaignID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid campaign id")
	}

	var req dto.RecordDonationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return badRequest(c, "amount must be a decimal number")
	}

	result, err := h.donationService.Record(c.Context(), services.RecordDonationInput{
		CampaignID:    campaignID,
		UserID:        middleware.GetUserID(c),
		Amount:        amount,
		Message:       req.Message,
		Anonymous:     req.Anonymous,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: result})
}

func (h *DonationHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid donation id")
	}

	donation, err := h.donationService.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}

	// Only the donor and admins see a donation directly.
	if donation.UserID != middleware.GetUserID(c) && middleware.GetRole(c) != models.RoleAdmin {
		return respondError(c, h.log, models.ErrDonationNotFound)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: donation})
}

func (h *DonationHandler) ListMine(c *fiber.Ctx) error {
	limit, offset := pagination(c, 20)
	donations, err := h.donationService.ListByUser(c.Context(), middleware.GetUserID(c), limit, offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: donations})
}

// PaymentCallback handles the payment gateway webhook. Duplicate
// deliveries come back 200 so the gateway stops retrying.
func (h *DonationHandler) PaymentCallback(c *fiber.Ctx) error {
	var req dto.PaymentCallbackRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	donationID, err := uuid.Parse(req.DonationID)
	if err != nil {
		return badRequest(c, "invalid donation_id")
	}

	switch req.Status {
	case models.PaymentStatusCompleted:
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			return badRequest(c, "amount must be a decimal number")
		}
		if _, err := h.donationService.ConfirmPayment(c.Context(), donationID, amount); err != nil {
			return respondError(c, h.log, err)
		}
	case models.PaymentStatusFailed:
		if err := h.donationService.FailPayment(c.Context(), donationID); err != nil {
			return respondError(c, h.log, err)
		}
	default:
		return badRequest(c, "status must be completed or failed")
	}

	return c.JSON(dto.SuccessResponse{OK: true})
}
