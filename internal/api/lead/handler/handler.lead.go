// Package leadhdl - Handler API lead.
package leadhdl

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basehdl "noithat_leads/internal/api/base/handler"
	leaddto "noithat_leads/internal/api/lead/dto"
	leadsvc "noithat_leads/internal/api/lead/service"
	"noithat_leads/internal/common"
	"noithat_leads/internal/global"
	"noithat_leads/internal/logger"
)

// LeadHandler xử lý API lead.
type LeadHandler struct {
	LeadService *leadsvc.LeadService
}

// NewLeadHandler tạo LeadHandler mới.
func NewLeadHandler() (*LeadHandler, error) {
	svc, err := leadsvc.NewLeadService()
	if err != nil {
		return nil, fmt.Errorf("tạo LeadService: %w", err)
	}
	return &LeadHandler{LeadService: svc}, nil
}

// HandleCreateLead xử lý POST /leads — nhận submission mới từ form.
func (h *LeadHandler) HandleCreateLead(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input leaddto.LeadCreateInput
		if err := c.Bind().Body(&input); err != nil {
			return basehdl.JSONResponse(c, common.StatusBadRequest, fiber.Map{
				"code": common.ErrCodeValidationFormat.Code, "message": "Dữ liệu gửi lên không đúng định dạng JSON", "status": "error",
			})
		}
		if err := global.Validate.Struct(&input); err != nil {
			return basehdl.JSONResponse(c, common.StatusBadRequest, fiber.Map{
				"code": common.ErrCodeValidationInput.Code, "message": "Dữ liệu không hợp lệ: " + err.Error(), "status": "error",
			})
		}

		result, err := h.LeadService.CreateLead(c.Context(), &input)
		basehdl.HandleResponse(c, result, err)
		return nil
	})
}

// HandleListLeads xử lý GET /leads — danh sách lead có phân trang.
// Query: page, limit, source, status, phone, includeMerged.
func (h *LeadHandler) HandleListLeads(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
		limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)
		includeMerged := c.Query("includeMerged") == "true"

		result, err := h.LeadService.FindLeads(c.Context(), page, limit,
			c.Query("source"), c.Query("status"), c.Query("phone"), includeMerged)
		basehdl.HandleResponse(c, result, err)
		return nil
	})
}

// HandleGetLead xử lý GET /leads/:id.
func (h *LeadHandler) HandleGetLead(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		id, err := primitive.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return basehdl.JSONResponse(c, common.StatusBadRequest, fiber.Map{
				"code": common.ErrCodeValidationInput.Code, "message": "id không hợp lệ", "status": "error",
			})
		}

		lead, err := h.LeadService.GetLead(c.Context(), id)
		basehdl.HandleResponse(c, lead, err)
		return nil
	})
}

// HandleUpdateStatus xử lý PATCH /leads/:id/status — chuyển trạng thái lead.
func (h *LeadHandler) HandleUpdateStatus(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		id, err := primitive.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return basehdl.JSONResponse(c, common.StatusBadRequest, fiber.Map{
				"code": common.ErrCodeValidationInput.Code, "message": "id không hợp lệ", "status": "error",
			})
		}

		var input leaddto.LeadStatusUpdateInput
		if err := c.Bind().Body(&input); err != nil {
			return basehdl.JSONResponse(c, common.StatusBadRequest, fiber.Map{
				"code": common.ErrCodeValidationFormat.Code, "message": "Dữ liệu gửi lên không đúng định dạng JSON", "status": "error",
			})
		}
		if err := global.Validate.Struct(&input); err != nil {
			return basehdl.JSONResponse(c, common.StatusBadRequest, fiber.Map{
				"code": common.ErrCodeValidationInput.Code, "message": "Dữ liệu không hợp lệ: " + err.Error(), "status": "error",
			})
		}

		lead, err := h.LeadService.UpdateStatus(c.Context(), id, &input)
		if err == nil {
			logger.LogCRUD("update_status", "lead", id.Hex(), c, map[string]interface{}{
				"status": input.Status,
			})
		}
		basehdl.HandleResponse(c, lead, err)
		return nil
	})
}

// HandleMergeLeads xử lý POST /leads/merge — gộp lead thủ công.
func (h *LeadHandler) HandleMergeLeads(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input leaddto.LeadMergeInput
		if err := c.Bind().Body(&input); err != nil {
			return basehdl.JSONResponse(c, common.StatusBadRequest, fiber.Map{
				"code": common.ErrCodeValidationFormat.Code, "message": "Dữ liệu gửi lên không đúng định dạng JSON", "status": "error",
			})
		}
		if err := global.Validate.Struct(&input); err != nil {
			return basehdl.JSONResponse(c, common.StatusBadRequest, fiber.Map{
				"code": common.ErrCodeValidationInput.Code, "message": "Dữ liệu không hợp lệ: " + err.Error(), "status": "error",
			})
		}

		primaryID, err := primitive.ObjectIDFromHex(input.PrimaryID)
		if err != nil {
			return basehdl.JSONResponse(c, common.StatusBadRequest, fiber.Map{
				"code": common.ErrCodeValidationInput.Code, "message": "primaryId không hợp lệ", "status": "error",
			})
		}
		secondaryIDs := make([]primitive.ObjectID, 0, len(input.SecondaryIDs))
		for _, hex := range input.SecondaryIDs {
			id, err := primitive.ObjectIDFromHex(hex)
			if err != nil {
				return basehdl.JSONResponse(c, common.StatusBadRequest, fiber.Map{
					"code": common.ErrCodeValidationInput.Code, "message": "secondaryIds chứa id không hợp lệ: " + hex, "status": "error",
				})
			}
			secondaryIDs = append(secondaryIDs, id)
		}

		result, err := h.LeadService.MergeLeads(c.Context(), primaryID, secondaryIDs)
		if err == nil {
			logger.LogMerge(input.PrimaryID, input.SecondaryIDs, c)
		}
		basehdl.HandleResponse(c, result, err)
		return nil
	})
}

// HandleBackfill xử lý POST /admin/leads/backfill — chạy job sửa dữ liệu.
func (h *LeadHandler) HandleBackfill(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		report, err := h.LeadService.Backfill(c.Context())
		if err != nil {
			// Trả report một phần kèm lỗi để thấy tiến độ các batch đã commit
			return basehdl.JSONResponse(c, common.StatusInternalServerError, fiber.Map{
				"code":    common.ErrCodeDatabase.Code,
				"message": "Backfill dừng giữa chừng: " + err.Error(),
				"data":    report,
				"status":  "error",
			})
		}
		basehdl.HandleResponse(c, report, nil)
		return nil
	})
}

// HandleDeleteLead xử lý DELETE /admin/leads/:id — xóa vật lý một lead.
func (h *LeadHandler) HandleDeleteLead(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		id, err := primitive.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return basehdl.JSONResponse(c, common.StatusBadRequest, fiber.Map{
				"code": common.ErrCodeValidationInput.Code, "message": "id không hợp lệ", "status": "error",
			})
		}

		err = h.LeadService.DeleteLead(c.Context(), id)
		if err == nil {
			logger.LogCRUD("delete", "lead", id.Hex(), c, nil)
		}
		basehdl.HandleResponse(c, fiber.Map{"deleted": err == nil}, err)
		return nil
	})
}
