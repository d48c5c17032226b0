package catalog

import (
	"fmt"
	"math"
	"strconv"

	"tedarik-backend/internal/apperr"
	"tedarik-backend/internal/audit"
	"tedarik-backend/internal/auth"
	"tedarik-backend/internal/database"
	"tedarik-backend/internal/models"
	"tedarik-backend/internal/policy"

	"github.com/gofiber/fiber/v2"
)

type CreateItemRequest struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Unit           string `json:"unit"`
	CatalogueNr    string `json:"catalogue_nr"`
	CategoryID     uint   `json:"category_id"`
	ManufacturerID *uint  `json:"manufacturer_id"`
	SupplierID     *uint  `json:"supplier_id"`
	TagIDs         []uint `json:"tag_ids"`
}

type UpdateItemRequest struct {
	Name           *string `json:"name"`
	Description    *string `json:"description"`
	Unit           *string `json:"unit"`
	CatalogueNr    *string `json:"catalogue_nr"`
	CategoryID     *uint   `json:"category_id"`
	ManufacturerID *uint   `json:"manufacturer_id"`
	SupplierID     *uint   `json:"supplier_id"`
	TagIDs         []uint  `json:"tag_ids"`
}

type ActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// ItemResponse: Kalem yanıtı; vessel_active çağıranın gemisi için çözülmüş
// etkin görünürlüktür.
type ItemResponse struct {
	ID           uint         `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Unit         string       `json:"unit"`
	CatalogueNr  string       `json:"catalogue_nr"`
	CategoryID   uint         `json:"category_id"`
	CategoryName string       `json:"category_name"`
	IsActive     bool         `json:"is_active"`
	VesselActive bool         `json:"vessel_active"`
	Tags         []models.Tag `json:"tags"`
}

func toItemResponse(item *models.Item, vesselActive bool) ItemResponse {
	return ItemResponse{
		ID:           item.ID,
		Name:         item.Name,
		Description:  item.Description,
		Unit:         item.Unit,
		CatalogueNr:  item.CatalogueNr,
		CategoryID:   item.CategoryID,
		CategoryName: item.Category.Name,
		IsActive:     item.IsActive,
		VesselActive: vesselActive,
		Tags:         item.Tags,
	}
}

// GET /api/items
// Sayfalı katalog listesi. Gemi bazlı görünürlük, aday kalem kümesi için tek
// override sorgusuyla eklenir.
func ListItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}

		page, _ := strconv.Atoi(c.Query("page", "1"))
		if page < 1 {
			page = 1
		}
		pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))
		if pageSize < 1 || pageSize > 100 {
			pageSize = 20
		}

		q := database.DB.Model(&models.Item{}).
			Preload("Category").
			Preload("Tags")

		// Global pasif kalemleri sadece super admin isteyerek görür
		if p.Role != models.RoleSuperAdmin || c.Query("show_inactive") != "true" {
			q = q.Where("is_active = ?", true)
		}

		if search := c.Query("search"); search != "" {
			term := "%" + search + "%"
			q = q.Where("name ILIKE ? OR catalogue_nr ILIKE ?", term, term)
		}
		if s := c.Query("category_id"); s != "" {
			q = q.Where("category_id = ?", s)
		}
		if s := c.Query("supplier_id"); s != "" {
			q = q.Where("supplier_id = ?", s)
		}

		var total int64
		if err := q.Count(&total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kalemler sayılamadı")
		}

		var items []models.Item
		if err := q.Order("name").
			Offset((page - 1) * pageSize).
			Limit(pageSize).
			Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kalemler listelenemedi")
		}

		// Gemi bazlı görünürlüğü toplu çöz
		overrides := map[uint]bool{}
		if p.VesselID != nil {
			itemIDs := make([]uint, 0, len(items))
			for _, it := range items {
				itemIDs = append(itemIDs, it.ID)
			}
			overrides, err = ResolveOverrides(database.DB, *p.VesselID, itemIDs)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Görünürlük çözümlenemedi")
			}
		}

		showVesselInactive := c.Query("show_vessel_inactive") == "true"
		resp := make([]ItemResponse, 0, len(items))
		for i := range items {
			vesselActive := items[i].IsActive
			if p.VesselID != nil {
				if ov, ok := overrides[items[i].ID]; ok {
					vesselActive = EffectiveActive(items[i].IsActive, &ov)
				}
			}
			if p.VesselID != nil && !vesselActive && !showVesselInactive {
				continue
			}
			resp = append(resp, toItemResponse(&items[i], vesselActive))
		}

		return c.JSON(fiber.Map{
			"items":     resp,
			"total":     total,
			"page":      page,
			"page_size": pageSize,
			"pages":     int(math.Ceil(float64(total) / float64(pageSize))),
		})
	}
}

// GET /api/items/:id
func GetItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}

		var item models.Item
		if err := database.DB.
			Preload("Category").
			Preload("Manufacturer").
			Preload("Supplier").
			Preload("Tags").
			First(&item, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kalem bulunamadı")
		}

		vesselActive := item.IsActive
		if p.VesselID != nil {
			vesselActive, err = EffectiveActiveFor(database.DB, *p.VesselID, item.ID)
			if err != nil {
				return apperr.ToFiber(err)
			}
		}

		return c.JSON(toItemResponse(&item, vesselActive))
	}
}

// POST /api/items
func CreateItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}
		if !policy.CanGlobal(p.Role, policy.OpManageCatalog) {
			return fiber.NewError(fiber.StatusForbidden, "Bu işlem için yetkiniz yok")
		}

		var body CreateItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Name == "" || body.Unit == "" || body.CategoryID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "name, unit ve category_id zorunlu")
		}

		var category models.Category
		if err := database.DB.First(&category, body.CategoryID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz category_id")
		}

		item := models.Item{
			Name:           body.Name,
			Description:    body.Description,
			Unit:           body.Unit,
			CatalogueNr:    body.CatalogueNr,
			CategoryID:     body.CategoryID,
			ManufacturerID: body.ManufacturerID,
			SupplierID:     body.SupplierID,
			IsActive:       true,
			CreatedBy:      p.UserID,
		}

		if len(body.TagIDs) > 0 {
			var tags []models.Tag
			database.DB.Where("id IN ?", body.TagIDs).Find(&tags)
			item.Tags = tags
		}

		if err := database.DB.Create(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kalem oluşturulamadı")
		}

		_ = audit.WriteLog(audit.LogOptions{
			VesselID:    p.VesselID,
			UserID:      p.UserID,
			UserName:    p.UserName,
			EntityType:  "item",
			EntityID:    item.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Kalem eklendi: %s", item.Name),
			After:       item,
		})

		database.DB.Preload("Category").Preload("Tags").First(&item, item.ID)
		return c.Status(fiber.StatusCreated).JSON(toItemResponse(&item, true))
	}
}

// PUT /api/items/:id
func UpdateItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}
		if !policy.CanGlobal(p.Role, policy.OpManageCatalog) {
			return fiber.NewError(fiber.StatusForbidden, "Bu işlem için yetkiniz yok")
		}

		var item models.Item
		if err := database.DB.First(&item, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kalem bulunamadı")
		}

		var body UpdateItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		updates := map[string]any{}
		if body.Name != nil {
			updates["name"] = *body.Name
		}
		if body.Description != nil {
			updates["description"] = *body.Description
		}
		if body.Unit != nil {
			updates["unit"] = *body.Unit
		}
		if body.CatalogueNr != nil {
			updates["catalogue_nr"] = *body.CatalogueNr
		}
		if body.CategoryID != nil {
			var category models.Category
			if err := database.DB.First(&category, *body.CategoryID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz category_id")
			}
			updates["category_id"] = *body.CategoryID
		}
		if body.ManufacturerID != nil {
			updates["manufacturer_id"] = *body.ManufacturerID
		}
		if body.SupplierID != nil {
			updates["supplier_id"] = *body.SupplierID
		}

		if len(updates) > 0 {
			if err := database.DB.Model(&item).Updates(updates).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Kalem güncellenemedi")
			}
		}

		if body.TagIDs != nil {
			var tags []models.Tag
			database.DB.Where("id IN ?", body.TagIDs).Find(&tags)
			if err := database.DB.Model(&item).Association("Tags").Replace(tags); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Etiketler güncellenemedi")
			}
		}

		database.DB.Preload("Category").Preload("Tags").First(&item, item.ID)

		vesselActive := item.IsActive
		if p.VesselID != nil {
			vesselActive, _ = EffectiveActiveFor(database.DB, *p.VesselID, item.ID)
		}
		return c.JSON(toItemResponse(&item, vesselActive))
	}
}

// PATCH /api/items/:id/active
// Global kill-switch; sadece super admin.
func SetItemGlobalActiveHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}
		if !policy.CanGlobal(p.Role, policy.OpSetGlobalActive) {
			return fiber.NewError(fiber.StatusForbidden, "Bu işlem için yetkiniz yok")
		}

		var item models.Item
		if err := database.DB.First(&item, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kalem bulunamadı")
		}

		var body ActiveRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if err := database.DB.Model(&item).Update("is_active", body.IsActive).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kalem güncellenemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      p.UserID,
			UserName:    p.UserName,
			EntityType:  "item",
			EntityID:    item.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Global aktiflik: %t", body.IsActive),
		})

		return c.JSON(fiber.Map{"id": item.ID, "is_active": body.IsActive})
	}
}

// PATCH /api/items/:id/vessel-active
// Gemi bazlı görünürlük override'ı; sadece kaptan, kendi gemisi için.
func SetItemVesselActiveHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}

		id, err := strconv.ParseUint(c.Params("id"), 10, 32)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz id")
		}

		var body ActiveRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		override, err := SetOverride(database.DB, p, uint(id), body.IsActive)
		if err != nil {
			return apperr.ToFiber(err)
		}

		_ = audit.WriteLog(audit.LogOptions{
			VesselID:    p.VesselID,
			UserID:      p.UserID,
			UserName:    p.UserName,
			EntityType:  "vessel_item",
			EntityID:    override.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Gemi görünürlüğü: kalem %d -> %t", id, body.IsActive),
			After:       override,
		})

		return c.JSON(fiber.Map{"id": id, "vessel_active": override.IsActive})
	}
}

// GET /api/items/recently-ordered
// Çağıranın gemisi için son sipariş edilen kalemler; kalem başına en yeni
// talep tarihi, en yeniden eskiye.
func RecentlyOrderedHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}
		if p.VesselID == nil {
			return c.JSON([]ItemResponse{})
		}

		limit, _ := strconv.Atoi(c.Query("limit", "10"))
		if limit < 1 || limit > 30 {
			limit = 10
		}

		var itemIDs []uint
		if err := database.DB.Model(&models.RequisitionItem{}).
			Select("requisition_items.item_id").
			Joins("JOIN requisitions ON requisitions.id = requisition_items.requisition_id").
			Where("requisitions.vessel_id = ?", *p.VesselID).
			Group("requisition_items.item_id").
			Order("MAX(requisitions.created_at) DESC").
			Limit(limit).
			Pluck("requisition_items.item_id", &itemIDs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kalemler listelenemedi")
		}

		if len(itemIDs) == 0 {
			return c.JSON([]ItemResponse{})
		}

		var items []models.Item
		if err := database.DB.
			Preload("Category").
			Preload("Tags").
			Where("id IN ? AND is_active = ?", itemIDs, true).
			Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kalemler listelenemedi")
		}

		overrides, err := ResolveOverrides(database.DB, *p.VesselID, itemIDs)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Görünürlük çözümlenemedi")
		}

		// Sipariş sırasını koru
		byID := make(map[uint]*models.Item, len(items))
		for i := range items {
			byID[items[i].ID] = &items[i]
		}
		resp := make([]ItemResponse, 0, len(items))
		for _, id := range itemIDs {
			item, ok := byID[id]
			if !ok {
				continue
			}
			vesselActive := item.IsActive
			if ov, exists := overrides[id]; exists {
				vesselActive = EffectiveActive(item.IsActive, &ov)
			}
			resp = append(resp, toItemResponse(item, vesselActive))
		}

		return c.JSON(resp)
	}
}
