package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/relayline/sms-assistant/internal/model"
	"github.com/relayline/sms-assistant/internal/phone"
	"github.com/relayline/sms-assistant/internal/repository"
	"github.com/relayline/sms-assistant/internal/service"
)

// AdminHandler exposes the operator surface: membership stats, manual
// whitelist add/remove and profile inspection. All routes sit behind
// JWTAuth + RequireRole("ADMIN").
type AdminHandler struct {
	Ledger   *service.Ledger
	Profiles *repository.ProfileRepo
	Messages *repository.MessageRepo
}

func NewAdminHandler(l *service.Ledger, p *repository.ProfileRepo, m *repository.MessageRepo) *AdminHandler {
	return &AdminHandler{Ledger: l, Profiles: p, Messages: m}
}

// Stats handles GET /v1/admin/stats.
func (h *AdminHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stats, err := h.Ledger.Stats(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stats query failed"})
	}
	return c.JSON(http.StatusOK, stats)
}

type whitelistReq struct {
	Phone  string `json:"phone"`
	Notify bool   `json:"notify"`
}

// AddWhitelist handles POST /v1/admin/whitelist. Manual adds carry the
// admin source tag and optionally trigger the welcome prompt.
func (h *AdminHandler) AddWhitelist(c echo.Context) error {
	var req whitelistReq
	if err := c.Bind(&req); err != nil || req.Phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "phone required"})
	}
	key := phone.Normalize(req.Phone)
	if key == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid phone"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 20*time.Second)
	defer cancel()

	if !h.Ledger.Add(ctx, key, model.SourceAdmin, req.Notify) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "add failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"phone": key, "active": true})
}

// RemoveWhitelist handles DELETE /v1/admin/whitelist/:phone.
func (h *AdminHandler) RemoveWhitelist(c echo.Context) error {
	key := phone.Normalize(c.Param("phone"))
	if key == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid phone"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 20*time.Second)
	defer cancel()

	removed := h.Ledger.Remove(ctx, key, model.SourceAdmin, false)
	return c.JSON(http.StatusOK, echo.Map{"phone": key, "removed": removed})
}

type profileResp struct {
	Phone               string     `json:"phone"`
	FirstName           *string    `json:"first_name"`
	Location            *string    `json:"location"`
	OnboardingStep      int        `json:"onboarding_step"`
	OnboardingCompleted bool       `json:"onboarding_completed"`
	SubscriptionStatus  string     `json:"subscription_status"`
	TrialEnd            *time.Time `json:"trial_end,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// GetUser handles GET /v1/admin/users/:phone.
func (h *AdminHandler) GetUser(c echo.Context) error {
	key := phone.Normalize(c.Param("phone"))
	if key == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid phone"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	prof, err := h.Profiles.Get(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no profile"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, profileResp{
		Phone:               prof.Phone,
		FirstName:           prof.FirstName,
		Location:            prof.Location,
		OnboardingStep:      prof.OnboardingStep,
		OnboardingCompleted: prof.OnboardingCompleted,
		SubscriptionStatus:  prof.SubscriptionStatus,
		TrialEnd:            prof.TrialEnd,
		CreatedAt:           prof.CreatedAt,
	})
}

// GetMessages handles GET /v1/admin/users/:phone/messages. It returns
// the newest transcript rows for operator debugging.
func (h *AdminHandler) GetMessages(c echo.Context) error {
	key := phone.Normalize(c.Param("phone"))
	if key == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid phone"})
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	msgs, err := h.Messages.RecentByPhone(ctx, key, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"phone": key, "messages": msgs})
}
