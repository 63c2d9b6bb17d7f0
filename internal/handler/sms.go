package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/relayline/sms-assistant/internal/service"
)

// SMSHandler receives inbound message callbacks from the SMS provider
// and hands them to the router. The webhook is always answered with a
// 2xx once the payload parses; the router converts every internal
// failure into a terminal outcome so the provider never retries.
type SMSHandler struct {
	Router *service.Inbound
}

func NewSMSHandler(r *service.Inbound) *SMSHandler { return &SMSHandler{Router: r} }

type inboundReq struct {
	From string `json:"from"`
	Body string `json:"body"`
}

// Receive handles POST /v1/webhooks/sms.
func (h *SMSHandler) Receive(c echo.Context) error {
	var req inboundReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.From == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from required"})
	}

	// The router may call the resolver and the gateway, both bounded
	// by 15s timeouts, so give the whole request a generous ceiling.
	ctx, cancel := context.WithTimeout(c.Request().Context(), 40*time.Second)
	defer cancel()

	res := h.Router.Handle(ctx, req.From, req.Body)
	return c.JSON(http.StatusOK, res)
}
