package admin

import (
	"tedarik-backend/internal/database"
	"tedarik-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CompanyRequest struct {
	Name           string `json:"name"`
	Website        string `json:"website"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Comments       string `json:"comments"`
	IsManufacturer bool   `json:"is_manufacturer"`
	IsSupplier     bool   `json:"is_supplier"`
}

// POST /api/companies
func CreateCompanyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CompanyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name zorunlu")
		}

		company := models.Company{
			Name:           body.Name,
			Website:        body.Website,
			Email:          body.Email,
			Phone:          body.Phone,
			Comments:       body.Comments,
			IsManufacturer: body.IsManufacturer,
			IsSupplier:     body.IsSupplier,
		}
		if err := database.DB.Create(&company).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Firma oluşturulamadı")
		}
		return c.Status(fiber.StatusCreated).JSON(company)
	}
}

// GET /api/companies
func ListCompaniesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Order("name")

		// ?role=supplier veya ?role=manufacturer filtresi
		switch c.Query("role") {
		case "supplier":
			q = q.Where("is_supplier = ?", true)
		case "manufacturer":
			q = q.Where("is_manufacturer = ?", true)
		}

		var companies []models.Company
		if err := q.Find(&companies).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Firmalar listelenemedi")
		}
		return c.JSON(companies)
	}
}

// GET /api/companies/:id
func GetCompanyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var company models.Company
		if err := database.DB.First(&company, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Firma bulunamadı")
		}
		return c.JSON(company)
	}
}

// PUT /api/companies/:id
func UpdateCompanyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var company models.Company
		if err := database.DB.First(&company, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Firma bulunamadı")
		}

		var body CompanyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name zorunlu")
		}

		if err := database.DB.Model(&company).Updates(map[string]any{
			"name":            body.Name,
			"website":         body.Website,
			"email":           body.Email,
			"phone":           body.Phone,
			"comments":        body.Comments,
			"is_manufacturer": body.IsManufacturer,
			"is_supplier":     body.IsSupplier,
		}).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Firma güncellenemedi")
		}
		return c.JSON(company)
	}
}
