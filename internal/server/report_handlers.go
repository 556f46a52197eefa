package server

import (
	"strings"

	"wayfarer/internal/models"
	"wayfarer/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SubmitReportRequest is the body for flagging content or users.
type SubmitReportRequest struct {
	TargetType string `json:"target_type"`
	TargetID   uint   `json:"target_id"`
	Reason     string `json:"reason"`
	Details    string `json:"details"`
}

// SubmitReport godoc
// @Summary Report content or a user for moderation
// @Tags reports
// @Accept json
// @Produce json
// @Param request body SubmitReportRequest true "Report payload"
// @Success 201 {object} models.Report
// @Failure 409 {object} models.ErrorResponse
// @Router /api/reports [post]
func (s *Server) SubmitReport(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req SubmitReportRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	report, err := s.moderationService.SubmitReport(c.Context(), service.SubmitReportInput{
		ReporterID: userID,
		TargetType: models.ReportTarget(strings.TrimSpace(req.TargetType)),
		TargetID:   req.TargetID,
		Reason:     strings.TrimSpace(req.Reason),
		Details:    req.Details,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}
