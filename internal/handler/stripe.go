package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/relayline/sms-assistant/internal/service"
)

// StripeHandler receives verified billing webhook events. Signature
// verification happens upstream (provider SDK or edge proxy); the
// handler trusts the payload and only normalizes it into the
// reconciler's event shape.
type StripeHandler struct {
	Billing *service.Billing
}

func NewStripeHandler(b *service.Billing) *StripeHandler { return &StripeHandler{Billing: b} }

type stripeEventReq struct {
	Kind           string `json:"kind"`
	CustomerID     string `json:"customer_id"`
	SubscriptionID string `json:"subscription_id"`
	Status         string `json:"status"`
	MetadataPhone  string `json:"metadata_phone"`
	CustomerPhone  string `json:"customer_phone"`
	TrialEnd       *int64 `json:"trial_end"` // unix seconds
}

// Receive handles POST /v1/webhooks/stripe.
func (h *StripeHandler) Receive(c echo.Context) error {
	var req stripeEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Kind == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "kind required"})
	}

	ev := service.BillingEvent{
		Kind:           req.Kind,
		CustomerID:     req.CustomerID,
		SubscriptionID: req.SubscriptionID,
		Status:         req.Status,
		MetadataPhone:  req.MetadataPhone,
		CustomerPhone:  req.CustomerPhone,
	}
	if req.TrialEnd != nil {
		t := time.Unix(*req.TrialEnd, 0).UTC()
		ev.TrialEnd = &t
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	outcome := h.Billing.HandleEvent(ctx, ev)
	return c.JSON(http.StatusOK, echo.Map{"outcome": outcome})
}
