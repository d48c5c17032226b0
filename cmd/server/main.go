package main

import (
	"log"
	"strings"

	"tedarik-backend/internal/admin"
	"tedarik-backend/internal/audit"
	"tedarik-backend/internal/auth"
	"tedarik-backend/internal/catalog"
	"tedarik-backend/internal/config"
	"tedarik-backend/internal/database"
	"tedarik-backend/internal/export"
	"tedarik-backend/internal/models"
	"tedarik-backend/internal/requisition"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-super-admin", auth.RegisterSuperAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Super admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleSuperAdmin))

	// Gemi yönetimi
	adminRoutes.Post("/vessels", admin.CreateVesselHandler())
	adminRoutes.Get("/vessels", admin.ListVesselsHandler())
	adminRoutes.Get("/vessels/:id", admin.GetVesselHandler())
	adminRoutes.Put("/vessels/:id", admin.UpdateVesselHandler())
	adminRoutes.Post("/vessels/:id/users", admin.CreateVesselUserHandler())

	// Global katalog kill-switch
	adminRoutes.Patch("/items/:id/active", catalog.SetItemGlobalActiveHandler())

	// Katalog
	protected.Get("/items/recently-ordered", catalog.RecentlyOrderedHandler())
	protected.Get("/items", catalog.ListItemsHandler())
	protected.Get("/items/:id", catalog.GetItemHandler())
	protected.Post("/items", catalog.CreateItemHandler())
	protected.Put("/items/:id", catalog.UpdateItemHandler())
	protected.Patch("/items/:id/vessel-active", catalog.SetItemVesselActiveHandler())

	// Referans veriler
	protected.Get("/categories", catalog.ListCategoriesHandler())
	protected.Post("/categories", catalog.CreateCategoryHandler())
	protected.Put("/categories/:id", catalog.UpdateCategoryHandler())
	protected.Get("/tags", catalog.ListTagsHandler())
	protected.Post("/tags", catalog.CreateTagHandler())
	protected.Delete("/tags/:id", catalog.DeleteTagHandler())
	protected.Get("/companies", admin.ListCompaniesHandler())
	protected.Get("/companies/:id", admin.GetCompanyHandler())
	protected.Post("/companies", admin.CreateCompanyHandler())
	protected.Put("/companies/:id", admin.UpdateCompanyHandler())

	// Mürettebat yönetimi (kaptan)
	protected.Post("/crew", auth.RequireRole(models.RoleCaptain), admin.CreateCrewHandler())
	protected.Post("/crew/:id/reset-password", auth.RequireRole(models.RoleCaptain), admin.ResetCrewPasswordHandler())

	// Talepler
	protected.Post("/requisitions", requisition.CreateRequisitionHandler())
	protected.Get("/requisitions", requisition.ListRequisitionsHandler())
	protected.Get("/requisitions/:id", requisition.GetRequisitionHandler())
	protected.Put("/requisitions/:id", requisition.UpdateRequisitionHandler())
	protected.Delete("/requisitions/:id", requisition.DeleteRequisitionHandler())
	protected.Post("/requisitions/:id/status", requisition.TransitionHandler())
	protected.Post("/requisitions/:id/items", requisition.AddLineHandler())
	protected.Post("/requisitions/:id/items/:lineId/receive", requisition.ReceiveHandler())
	protected.Get("/requisitions/:id/export", export.ExportRequisitionHandler())

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
