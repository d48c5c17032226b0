package admin

import (
	"strings"

	"tedarik-backend/internal/auth"
	"tedarik-backend/internal/database"
	"tedarik-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type VesselRequest struct {
	Name       string `json:"name"`
	IMONumber  string `json:"imo_number"`
	Flag       string `json:"flag"`
	VesselType string `json:"vessel_type"`
	Email      string `json:"email"`
}

type CreateVesselUserRequest struct {
	Username string          `json:"username"`
	FullName string          `json:"full_name"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"` // captain veya crew
}

// POST /api/admin/vessels
func CreateVesselHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body VesselRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name zorunlu")
		}

		vessel := models.Vessel{
			Name:       body.Name,
			IMONumber:  body.IMONumber,
			Flag:       body.Flag,
			VesselType: body.VesselType,
			Email:      body.Email,
			IsActive:   true,
		}
		if err := database.DB.Create(&vessel).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gemi oluşturulamadı")
		}
		return c.Status(fiber.StatusCreated).JSON(vessel)
	}
}

// GET /api/admin/vessels
func ListVesselsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var vessels []models.Vessel
		if err := database.DB.Order("name").Find(&vessels).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gemiler listelenemedi")
		}
		return c.JSON(vessels)
	}
}

// GET /api/admin/vessels/:id
func GetVesselHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var vessel models.Vessel
		if err := database.DB.Preload("Users").First(&vessel, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Gemi bulunamadı")
		}
		return c.JSON(vessel)
	}
}

// PUT /api/admin/vessels/:id
func UpdateVesselHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var vessel models.Vessel
		if err := database.DB.First(&vessel, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Gemi bulunamadı")
		}

		var body VesselRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		updates := map[string]any{}
		if body.Name != "" {
			updates["name"] = body.Name
		}
		if body.IMONumber != "" {
			updates["imo_number"] = body.IMONumber
		}
		if body.Flag != "" {
			updates["flag"] = body.Flag
		}
		if body.VesselType != "" {
			updates["vessel_type"] = body.VesselType
		}
		if body.Email != "" {
			updates["email"] = body.Email
		}

		if len(updates) > 0 {
			if err := database.DB.Model(&vessel).Updates(updates).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Gemi güncellenemedi")
			}
		}
		return c.JSON(vessel)
	}
}

// POST /api/admin/vessels/:id/users
// Super admin bir gemiye kaptan veya mürettebat kullanıcısı açar.
func CreateVesselUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var vessel models.Vessel
		if err := database.DB.First(&vessel, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Gemi bulunamadı")
		}

		var body CreateVesselUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Username = strings.TrimSpace(strings.ToLower(body.Username))
		if body.Username == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Kullanıcı adı ve şifre zorunlu")
		}
		if body.Role != models.RoleCaptain && body.Role != models.RoleCrew {
			return fiber.NewError(fiber.StatusBadRequest, "Rol captain veya crew olmalı")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre hashlenemedi")
		}

		user := models.User{
			ID:           uuid.New(),
			VesselID:     &vessel.ID,
			Username:     body.Username,
			FullName:     body.FullName,
			PasswordHash: string(hash),
			Role:         body.Role,
			IsActive:     true,
		}
		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":        user.ID,
			"username":  user.Username,
			"role":      user.Role,
			"vessel_id": user.VesselID,
		})
	}
}

// POST /api/crew/:id/reset-password
// Kaptan kendi gemisindeki bir kullanıcının şifresini sıfırlar.
func ResetCrewPasswordHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}
		if p.VesselID == nil {
			return fiber.NewError(fiber.StatusForbidden, "Gemi bilgisi bulunamadı")
		}

		var user models.User
		if err := database.DB.
			Where("id = ? AND vessel_id = ?", c.Params("id"), *p.VesselID).
			First(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kullanıcı bulunamadı")
		}

		var body struct {
			Password string `json:"password"`
		}
		if err := c.BodyParser(&body); err != nil || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Yeni şifre zorunlu")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre hashlenemedi")
		}

		if err := database.DB.Model(&user).Update("password_hash", string(hash)).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre güncellenemedi")
		}
		return c.JSON(fiber.Map{"message": "Şifre sıfırlandı"})
	}
}

// POST /api/crew
// Kaptan kendi gemisine mürettebat kullanıcısı açar.
func CreateCrewHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}
		if p.VesselID == nil {
			return fiber.NewError(fiber.StatusForbidden, "Gemi bilgisi bulunamadı")
		}

		var body CreateVesselUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Username = strings.TrimSpace(strings.ToLower(body.Username))
		if body.Username == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Kullanıcı adı ve şifre zorunlu")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre hashlenemedi")
		}

		user := models.User{
			ID:           uuid.New(),
			VesselID:     p.VesselID,
			Username:     body.Username,
			FullName:     body.FullName,
			PasswordHash: string(hash),
			Role:         models.RoleCrew, // kaptan sadece mürettebat açabilir
			IsActive:     true,
		}
		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":        user.ID,
			"username":  user.Username,
			"role":      user.Role,
			"vessel_id": user.VesselID,
		})
	}
}
