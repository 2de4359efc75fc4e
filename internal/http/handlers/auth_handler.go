package handlers

import (
	"errors"
	"strings"

	"github.com/fundhive/backend/internal/auth"
	"github.com/fundhive/backend/internal/config"
	"github.com/fundhive/backend/internal/http/dto"
	"github.com/fundhive/backend/internal/models"
	"github.com/fundhive/backend/internal/repositories"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthHandler struct {
	userRepo *repositories.UserRepo
	cfg      *config.Config
	log      *zap.Logger
}

func NewAuthHandler(userRepo *repositories.UserRepo, cfg *config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{userRepo: userRepo, cfg: cfg, log: log}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return badRequest(c, "a valid email is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return badRequest(c, "name is required")
	}

	role := req.Role
	if role == "" {
		role = models.RoleDonor
	}
	if role != models.RoleDonor && role != models.RoleCreator {
		return badRequest(c, "role must be donor or creator")
	}

	if _, err := h.userRepo.GetByEmail(c.Context(), email); err == nil {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: "email already registered"})
	} else if !errors.Is(err, models.ErrUserNotFound) {
		return respondError(c, h.log, err)
	}

	hash, err := auth.HashPassword(req.Password, h.cfg.BcryptCost)
	if err != nil {
		return badRequest(c, err.Error())
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         role,
		Status:       models.UserStatusActive,
	}
	if err := h.userRepo.Create(c.Context(), user); err != nil {
		return respondError(c, h.log, err)
	}

	token, err := auth.GenerateJWT(h.cfg.JWTSecret, user.ID, user.Role, h.cfg.JWTExpiration)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.AuthResponse{Token: token, User: user})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.userRepo.GetByEmail(c.Context(), email)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		// Same response for unknown email and wrong password.
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "invalid credentials"})
	}

	token, err := auth.GenerateJWT(h.cfg.JWTSecret, user.ID, user.Role, h.cfg.JWTExpiration)
	if err != nil {
		return respondError(c, h.log, err)
	}

	if err := h.userRepo.UpdateLastActive(c.Context(), user.ID); err != nil {
		h.log.Warn("update last active failed", zap.Error(err))
	}

	return c.JSON(dto.AuthResponse{Token: token, User: user})
}
