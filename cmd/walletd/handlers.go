package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/dagbolade/checkout-wallet/internal/wallet"
)

// Handlers are thin wrappers that marshal/unmarshal JSON and call
// straight into wallet.Pipeline; no policy or business logic lives
// here.
type Handlers struct {
	pipeline *wallet.Pipeline
}

type requestCredentialBody struct {
	CredentialName string         `json:"credential_name"`
	AgentID        string         `json:"agent_id"`
	SkillID        string         `json:"skill_id,omitempty"`
	Purpose        string         `json:"purpose"`
	Amount         *float64       `json:"amount,omitempty"`
	Currency       string         `json:"currency,omitempty"`
	Action         string         `json:"action,omitempty"`
	Context        map[string]any `json:"context,omitempty"`
}

func (h *Handlers) RequestCredential(c echo.Context) error {
	var body requestCredentialBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"status": "error", "reason": "invalid request body"})
	}

	resp, err := h.pipeline.RequestCredential(c.Request().Context(), wallet.CredentialRequest{
		CredentialName: body.CredentialName,
		AgentID:        body.AgentID,
		SkillID:        body.SkillID,
		Purpose:        body.Purpose,
		Amount:         body.Amount,
		Currency:       body.Currency,
		Action:         body.Action,
		Context:        body.Context,
	})
	if err != nil {
		log.Error().Err(err).Msg("request_credential failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"status": "error", "reason": "internal error"})
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *Handlers) ListPolicies(c echo.Context) error {
	agentID := c.QueryParam("agent_id")
	var skillPtr *string
	if skillID := c.QueryParam("skill_id"); skillID != "" {
		skillPtr = &skillID
	}

	summaries := h.pipeline.ListAvailablePolicies(agentID, skillPtr)
	return c.JSON(http.StatusOK, map[string]any{"policies": summaries})
}

func (h *Handlers) CheckBudget(c echo.Context) error {
	credential := c.Param("credential")
	policyName := c.QueryParam("policy")

	status, err := h.pipeline.CheckBudget(c.Request().Context(), credential, policyName)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"status": "error", "reason": "no matching policy"})
	}
	return c.JSON(http.StatusOK, status)
}

type reportUsageBody struct {
	TokenID  string   `json:"token_id"`
	Amount   *float64 `json:"amount,omitempty"`
	Currency string   `json:"currency,omitempty"`
	Outcome  string   `json:"outcome,omitempty"`
	Details  string   `json:"details,omitempty"`
}

func (h *Handlers) ReportUsage(c echo.Context) error {
	var body reportUsageBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"status": "error"})
	}

	status, err := h.pipeline.ReportUsage(c.Request().Context(), body.TokenID, body.Amount, body.Currency, body.Outcome, body.Details)
	if err != nil {
		log.Error().Err(err).Msg("report_usage failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"status": "error"})
	}
	return c.JSON(http.StatusOK, status)
}
