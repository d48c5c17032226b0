package audit

import (
	"tedarik-backend/internal/auth"
	"tedarik-backend/internal/database"
	"tedarik-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GET /api/audit-logs
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}

		q := database.DB.Model(&models.AuditLog{}).Order("created_at DESC").Limit(200)

		// Gemi personeli sadece kendi gemisinin loglarını görür
		if p.Role != models.RoleSuperAdmin {
			if p.VesselID == nil {
				return fiber.NewError(fiber.StatusForbidden, "Gemi bilgisi bulunamadı")
			}
			q = q.Where("vessel_id = ?", *p.VesselID)
		}

		if entityType := c.Query("entity_type"); entityType != "" {
			q = q.Where("entity_type = ?", entityType)
		}

		var logs []models.AuditLog
		if err := q.Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Loglar listelenemedi")
		}

		return c.JSON(logs)
	}
}
