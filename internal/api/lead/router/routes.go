// Package router đăng ký các route thuộc domain lead: nhận form, tra cứu, gộp, backfill.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	leadhdl "noithat_leads/internal/api/lead/handler"
	apirouter "noithat_leads/internal/api/router"
)

// Register đăng ký tất cả route lead lên v1.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	leadHandler, err := leadhdl.NewLeadHandler()
	if err != nil {
		return fmt.Errorf("tạo LeadHandler: %w", err)
	}

	// POST /leads — nhận submission từ form báo giá / liên hệ
	apirouter.RegisterRouteWithMiddleware(v1, "/leads", "POST", "", nil, leadHandler.HandleCreateLead)

	// GET /leads — danh sách lead. Query: page, limit, source, status, phone, includeMerged
	apirouter.RegisterRouteWithMiddleware(v1, "/leads", "GET", "", nil, leadHandler.HandleListLeads)

	// POST /leads/merge — gộp thủ công nhiều lead vào một lead chính
	apirouter.RegisterRouteWithMiddleware(v1, "/leads", "POST", "/merge", nil, leadHandler.HandleMergeLeads)

	// GET /leads/:id
	apirouter.RegisterRouteWithMiddleware(v1, "/leads", "GET", "/:id", nil, leadHandler.HandleGetLead)

	// PATCH /leads/:id/status — chuyển trạng thái lead
	apirouter.RegisterRouteWithMiddleware(v1, "/leads", "PATCH", "/:id/status", nil, leadHandler.HandleUpdateStatus)

	// POST /admin/leads/backfill — chạy job chuẩn hóa số điện thoại và tính lại cờ trùng
	apirouter.RegisterRouteWithMiddleware(v1, "/admin/leads", "POST", "/backfill", nil, leadHandler.HandleBackfill)

	// DELETE /admin/leads/:id — xóa vật lý (chỉ dùng cho quản trị)
	apirouter.RegisterRouteWithMiddleware(v1, "/admin/leads", "DELETE", "/:id", nil, leadHandler.HandleDeleteLead)

	return nil
}
