package catalog

import (
	"tedarik-backend/internal/auth"
	"tedarik-backend/internal/database"
	"tedarik-backend/internal/models"
	"tedarik-backend/internal/policy"

	"github.com/gofiber/fiber/v2"
)

type TagRequest struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Color string `json:"color"`
}

// GET /api/tags
func ListTagsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var tags []models.Tag
		if err := database.DB.Order("name").Find(&tags).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Etiketler listelenemedi")
		}
		return c.JSON(tags)
	}
}

// POST /api/tags
func CreateTagHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}
		if !policy.CanGlobal(p.Role, policy.OpManageCatalog) {
			return fiber.NewError(fiber.StatusForbidden, "Bu işlem için yetkiniz yok")
		}

		var body TagRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Name == "" || body.Slug == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name ve slug zorunlu")
		}

		tag := models.Tag{Name: body.Name, Slug: body.Slug, Color: body.Color}
		if tag.Color == "" {
			tag.Color = "#6b7280"
		}
		if err := database.DB.Create(&tag).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Etiket oluşturulamadı")
		}
		return c.Status(fiber.StatusCreated).JSON(tag)
	}
}

// DELETE /api/tags/:id
func DeleteTagHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}
		if !policy.CanGlobal(p.Role, policy.OpManageCatalog) {
			return fiber.NewError(fiber.StatusForbidden, "Bu işlem için yetkiniz yok")
		}

		var tag models.Tag
		if err := database.DB.First(&tag, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Etiket bulunamadı")
		}

		// Önce join tablosundaki bağları temizle
		if err := database.DB.Exec("DELETE FROM item_tags WHERE tag_id = ?", tag.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Etiket bağları silinemedi")
		}
		if err := database.DB.Delete(&tag).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Etiket silinemedi")
		}
		return c.JSON(fiber.Map{"message": "Etiket silindi"})
	}
}
