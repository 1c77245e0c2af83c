package handlers

import (
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/smart-hospital-client/internal/api/dto"
	"github.com/spec-kit/smart-hospital-client/internal/service"
	apperrors "github.com/spec-kit/smart-hospital-client/pkg/util"
)

// RecordsHandler exposes verification and review of cleaning records.
type RecordsHandler struct {
	records *service.RecordService
}

// NewRecordsHandler constructs handler.
func NewRecordsHandler(records *service.RecordService) *RecordsHandler {
	return &RecordsHandler{records: records}
}

// Verify handles POST /verify_room.
func (h *RecordsHandler) Verify(c *fiber.Ctx) error {
	header, err := c.FormFile("after_photo")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "No 'after_photo' file part in the request.")
	}
	file, err := header.Open()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	defer file.Close()
	photo, err := io.ReadAll(file)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	record, err := h.records.Verify(c.UserContext(), c.FormValue("room_id"), c.FormValue("cleaner_id"), header.Filename, photo)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Record saved.",
		"data":    record,
	})
}

// Dashboard handles GET /dashboard.
func (h *RecordsHandler) Dashboard(c *fiber.Ctx) error {
	records, err := h.records.Pending(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.DashboardResponse{Success: true, Data: records})
}

// Approve handles POST /approve.
func (h *RecordsHandler) Approve(c *fiber.Ctx) error {
	var req dto.ApproveRequest
	if err := c.BodyParser(&req); err != nil || req.RecordID == 0 || req.NewStatus == "" {
		return fiber.NewError(http.StatusBadRequest, "Missing 'record_id' or 'new_status'.")
	}

	record, err := h.records.Review(c.UserContext(), req.RecordID, req.NewStatus)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Status updated.",
		"data":    record,
	})
}

// WeeklyReport handles GET /report/weekly.
func (h *RecordsHandler) WeeklyReport(c *fiber.Ctx) error {
	report, err := h.records.WeeklyReport(c.UserContext())
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, report.ContentType)
	c.Set(fiber.HeaderContentDisposition, "attachment;filename="+report.Filename)
	return c.Send(report.Content)
}
