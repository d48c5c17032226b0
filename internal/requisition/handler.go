package requisition

import (
	"fmt"
	"strconv"

	"tedarik-backend/internal/apperr"
	"tedarik-backend/internal/audit"
	"tedarik-backend/internal/auth"
	"tedarik-backend/internal/database"
	"tedarik-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateRequisitionRequest: Yeni talep oluşturma
type CreateRequisitionRequest struct {
	SupplierID *uint              `json:"supplier_id"`
	Notes      string             `json:"notes"`
	Items      []LineItemRequest  `json:"items"`
}

type LineItemRequest struct {
	ItemID     uint  `json:"item_id"`
	Quantity   int   `json:"quantity"`
	SupplierID *uint `json:"supplier_id"`
}

type UpdateRequisitionRequest struct {
	SupplierID *uint             `json:"supplier_id"`
	Notes      *string           `json:"notes"`
	Items      []LineItemRequest `json:"items"`
}

type TransitionRequest struct {
	Status models.RequisitionStatus `json:"status"`
}

type AddLineRequest struct {
	ItemID   uint `json:"item_id"`
	Quantity int  `json:"quantity"`
}

type ReceiveRequest struct {
	Quantity int `json:"quantity"`
}

// RequisitionResponse: Talep yanıtı
type RequisitionResponse struct {
	ID         uint                      `json:"id"`
	VesselID   uint                      `json:"vessel_id"`
	SupplierID *uint                     `json:"supplier_id"`
	Status     models.RequisitionStatus  `json:"status"`
	OrderedAt  *string                   `json:"ordered_at"`
	Notes      string                    `json:"notes"`
	Items      []RequisitionItemResponse `json:"items"`
	CreatedAt  string                    `json:"created_at"`
}

type RequisitionItemResponse struct {
	ID          uint   `json:"id"`
	ItemID      uint   `json:"item_id"`
	ItemName    string `json:"item_name"`
	Unit        string `json:"unit"`
	SupplierID  *uint  `json:"supplier_id"`
	Quantity    int    `json:"quantity"`
	ReceivedQty int    `json:"received_qty"`
	Remaining   int    `json:"remaining"`
}

func toResponse(req *models.Requisition) RequisitionResponse {
	itemsResp := make([]RequisitionItemResponse, 0, len(req.Items))
	for _, line := range req.Items {
		itemsResp = append(itemsResp, RequisitionItemResponse{
			ID:          line.ID,
			ItemID:      line.ItemID,
			ItemName:    line.Item.Name,
			Unit:        line.Item.Unit,
			SupplierID:  line.SupplierID,
			Quantity:    line.Quantity,
			ReceivedQty: line.ReceivedQty,
			Remaining:   line.Quantity - line.ReceivedQty,
		})
	}

	var orderedAt *string
	if req.OrderedAt != nil {
		s := req.OrderedAt.Format("2006-01-02 15:04:05")
		orderedAt = &s
	}

	return RequisitionResponse{
		ID:         req.ID,
		VesselID:   req.VesselID,
		SupplierID: req.SupplierID,
		Status:     req.Status,
		OrderedAt:  orderedAt,
		Notes:      req.Notes,
		Items:      itemsResp,
		CreatedAt:  req.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func toLineInputs(items []LineItemRequest) []LineInput {
	lines := make([]LineInput, 0, len(items))
	for _, it := range items {
		lines = append(lines, LineInput{
			ItemID:     it.ItemID,
			Quantity:   it.Quantity,
			SupplierID: it.SupplierID,
		})
	}
	return lines
}

func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Geçersiz id")
	}
	return uint(id), nil
}

// POST /api/requisitions
func CreateRequisitionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}

		var body CreateRequisitionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		req, err := Create(database.DB, p, CreateInput{
			SupplierID: body.SupplierID,
			Notes:      body.Notes,
			Lines:      toLineInputs(body.Items),
		})
		if err != nil {
			return apperr.ToFiber(err)
		}

		_ = audit.WriteLog(audit.LogOptions{
			VesselID:    p.VesselID,
			UserID:      p.UserID,
			UserName:    p.UserName,
			EntityType:  "requisition",
			EntityID:    req.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Talep oluşturuldu: %d kalem", len(req.Items)),
			After:       req,
		})

		return c.Status(fiber.StatusCreated).JSON(toResponse(req))
	}
}

// GET /api/requisitions
func ListRequisitionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}

		filter := ListFilter{
			Status: models.RequisitionStatus(c.Query("status")),
		}
		if s := c.Query("supplier_id"); s != "" {
			if id, err := strconv.ParseUint(s, 10, 32); err == nil {
				sid := uint(id)
				filter.SupplierID = &sid
			}
		}

		reqs, err := List(database.DB, p, filter)
		if err != nil {
			return apperr.ToFiber(err)
		}

		resp := make([]RequisitionResponse, 0, len(reqs))
		for i := range reqs {
			resp = append(resp, toResponse(&reqs[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/requisitions/:id
func GetRequisitionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}

		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		req, err := Get(database.DB, p, id)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(toResponse(req))
	}
}

// POST /api/requisitions/:id/status
func TransitionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}

		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		var body TransitionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Status == "" {
			return fiber.NewError(fiber.StatusBadRequest, "status zorunlu")
		}

		req, err := Transition(database.DB, p, id, body.Status)
		if err != nil {
			return apperr.ToFiber(err)
		}

		_ = audit.WriteLog(audit.LogOptions{
			VesselID:    p.VesselID,
			UserID:      p.UserID,
			UserName:    p.UserName,
			EntityType:  "requisition",
			EntityID:    req.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Durum değişti: %s", req.Status),
			After:       req,
		})

		return c.JSON(toResponse(req))
	}
}

// PUT /api/requisitions/:id
func UpdateRequisitionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}

		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		var body UpdateRequisitionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		in := EditInput{
			SupplierID: body.SupplierID,
			Notes:      body.Notes,
		}
		if body.Items != nil {
			in.Lines = toLineInputs(body.Items)
		}

		before, _ := Get(database.DB, p, id)

		req, err := Edit(database.DB, p, id, in)
		if err != nil {
			return apperr.ToFiber(err)
		}

		_ = audit.WriteLog(audit.LogOptions{
			VesselID:    p.VesselID,
			UserID:      p.UserID,
			UserName:    p.UserName,
			EntityType:  "requisition",
			EntityID:    req.ID,
			Action:      models.AuditActionUpdate,
			Description: "Talep düzenlendi",
			Before:      before,
			After:       req,
		})

		return c.JSON(toResponse(req))
	}
}

// POST /api/requisitions/:id/items
func AddLineHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}

		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		var body AddLineRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.ItemID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "item_id zorunlu")
		}

		req, err := AddLine(database.DB, p, id, body.ItemID, body.Quantity)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(toResponse(req))
	}
}

// POST /api/requisitions/:id/items/:lineId/receive
func ReceiveHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}

		id, err := parseID(c, "id")
		if err != nil {
			return err
		}
		lineID, err := parseID(c, "lineId")
		if err != nil {
			return err
		}

		var body ReceiveRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		req, err := Receive(database.DB, p, id, lineID, body.Quantity)
		if err != nil {
			return apperr.ToFiber(err)
		}

		_ = audit.WriteLog(audit.LogOptions{
			VesselID:    p.VesselID,
			UserID:      p.UserID,
			UserName:    p.UserName,
			EntityType:  "requisition",
			EntityID:    req.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Teslim alındı: satır %d, miktar %d", lineID, body.Quantity),
			After:       req,
		})

		return c.JSON(toResponse(req))
	}
}

// DELETE /api/requisitions/:id
func DeleteRequisitionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}

		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		before, _ := Get(database.DB, p, id)

		if err := Delete(database.DB, p, id); err != nil {
			return apperr.ToFiber(err)
		}

		_ = audit.WriteLog(audit.LogOptions{
			VesselID:    p.VesselID,
			UserID:      p.UserID,
			UserName:    p.UserName,
			EntityType:  "requisition",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: "Talep silindi",
			Before:      before,
		})

		return c.JSON(fiber.Map{"message": "Talep silindi"})
	}
}
