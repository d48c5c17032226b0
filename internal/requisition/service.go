package requisition

import (
	"errors"
	"fmt"
	"time"

	"tedarik-backend/internal/apperr"
	"tedarik-backend/internal/models"
	"tedarik-backend/internal/policy"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LineInput struct {
	ItemID     uint
	Quantity   int
	SupplierID *uint
}

type CreateInput struct {
	SupplierID *uint
	Notes      string
	Lines      []LineInput
}

type EditInput struct {
	SupplierID *uint
	Notes      *string
	// Lines nil ise satırlar dokunulmadan kalır. Nil değilse önceki satır
	// kümesi tamamen atılır ve yenisiyle değiştirilir (atomik swap).
	Lines []LineInput
}

type ListFilter struct {
	Status     models.RequisitionStatus
	SupplierID *uint
}

// Create: Yeni talep, taslak olarak doğar. Başlık ve satırlar tek
// transaction'da yazılır; satırsız başlık asla commit edilmez.
func Create(db *gorm.DB, p policy.Principal, in CreateInput) (*models.Requisition, error) {
	if !policy.CanGlobal(p.Role, policy.OpCreateRequisition) {
		return nil, apperr.ErrForbidden
	}
	if p.VesselID == nil {
		return nil, apperr.ErrForbidden
	}
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: talep en az bir kalem içermeli", apperr.ErrInvalidOperation)
	}

	var req *models.Requisition
	err := db.Transaction(func(tx *gorm.DB) error {
		lines, err := buildLines(tx, in.Lines)
		if err != nil {
			return err
		}

		req = &models.Requisition{
			VesselID:   *p.VesselID,
			SupplierID: in.SupplierID,
			Status:     models.StatusDraft,
			Notes:      in.Notes,
			IsActive:   true,
			CreatedBy:  p.UserID,
			Items:      lines,
		}
		return tx.Create(req).Error
	})
	if err != nil {
		return nil, err
	}

	return Get(db, p, req.ID)
}

// buildLines: Kalem girdilerini doğrular ve satır kayıtlarına çevirir.
func buildLines(tx *gorm.DB, inputs []LineInput) ([]models.RequisitionItem, error) {
	itemIDs := make([]uint, 0, len(inputs))
	for _, in := range inputs {
		if in.Quantity <= 0 {
			return nil, fmt.Errorf("%w: kalem miktarı 0'dan büyük olmalı", apperr.ErrInvalidOperation)
		}
		itemIDs = append(itemIDs, in.ItemID)
	}

	// Kalemler tek sorguda doğrulanır
	var count int64
	if err := tx.Model(&models.Item{}).Where("id IN ?", itemIDs).Count(&count).Error; err != nil {
		return nil, err
	}
	if count != int64(len(uniqueIDs(itemIDs))) {
		return nil, fmt.Errorf("%w: kalem bulunamadı", apperr.ErrNotFound)
	}

	lines := make([]models.RequisitionItem, 0, len(inputs))
	for _, in := range inputs {
		lines = append(lines, models.RequisitionItem{
			ItemID:      in.ItemID,
			SupplierID:  in.SupplierID,
			Quantity:    in.Quantity,
			ReceivedQty: 0,
		})
	}
	return lines, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// Get: Talebi satırları ve referanslarıyla birlikte okur. Gemi personeli
// sadece kendi gemisinin taleplerini görür; kapsam dışı talep NotFound'dur.
func Get(db *gorm.DB, p policy.Principal, id uint) (*models.Requisition, error) {
	var req models.Requisition
	q := db.
		Preload("Supplier").
		Preload("Items.Item").
		Preload("Items.Supplier")
	q = scopeToVessel(q, p)

	if err := q.First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: talep bulunamadı", apperr.ErrNotFound)
		}
		return nil, err
	}
	return &req, nil
}

func List(db *gorm.DB, p policy.Principal, f ListFilter) ([]models.Requisition, error) {
	q := db.
		Preload("Supplier").
		Preload("Items.Item").
		Order("created_at DESC")
	q = scopeToVessel(q, p)

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.SupplierID != nil {
		q = q.Where("supplier_id = ?", *f.SupplierID)
	}

	var reqs []models.Requisition
	if err := q.Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

// Transition: Operatör güdümlü durum geçişi. ordered'a girişte ordered_at
// bir kez damgalanır. Geçiş ve yan etkileri tek transaction'da commit olur.
func Transition(db *gorm.DB, p policy.Principal, id uint, target models.RequisitionStatus) (*models.Requisition, error) {
	if !ValidStatus(target) {
		return nil, fmt.Errorf("%w: bilinmeyen durum %q", apperr.ErrInvalidOperation, target)
	}

	unlock := lockRequisition(id)
	defer unlock()

	err := db.Transaction(func(tx *gorm.DB) error {
		req, err := loadForUpdate(tx, p, id)
		if err != nil {
			return err
		}

		if !policy.Can(p.Role, policy.OpTransition, req.Status) {
			return apperr.ErrForbidden
		}
		if !CanTransition(req.Status, target) {
			return fmt.Errorf("%w: %s -> %s", apperr.ErrIllegalTransition, req.Status, target)
		}

		updates := map[string]any{"status": target}
		if target == models.StatusOrdered && req.OrderedAt == nil {
			updates["ordered_at"] = time.Now().UTC()
		}
		return tx.Model(req).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	return Get(db, p, id)
}

// Edit: Başlık alanlarını günceller; satır listesi verildiyse önceki küme
// tamamen silinir ve yenisi yazılır. Kısmi birleştirme yoktur.
func Edit(db *gorm.DB, p policy.Principal, id uint, in EditInput) (*models.Requisition, error) {
	if in.Lines != nil && len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: talep en az bir kalem içermeli", apperr.ErrInvalidOperation)
	}

	unlock := lockRequisition(id)
	defer unlock()

	err := db.Transaction(func(tx *gorm.DB) error {
		req, err := loadForUpdate(tx, p, id)
		if err != nil {
			return err
		}

		if !policy.Can(p.Role, policy.OpEdit, req.Status) {
			return apperr.ErrForbidden
		}

		updates := map[string]any{}
		if in.SupplierID != nil {
			updates["supplier_id"] = *in.SupplierID
		}
		if in.Notes != nil {
			updates["notes"] = *in.Notes
		}
		if len(updates) > 0 {
			if err := tx.Model(req).Updates(updates).Error; err != nil {
				return err
			}
		}

		if in.Lines != nil {
			lines, err := buildLines(tx, in.Lines)
			if err != nil {
				return err
			}
			if err := tx.Where("requisition_id = ?", req.ID).
				Delete(&models.RequisitionItem{}).Error; err != nil {
				return err
			}
			for i := range lines {
				lines[i].RequisitionID = req.ID
			}
			if err := tx.Create(&lines).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return Get(db, p, id)
}

// AddLine: Taslaktaki talebe kalem ekler. Kalem zaten satır olarak varsa
// yeni satır açmak yerine miktar artırılır.
func AddLine(db *gorm.DB, p policy.Principal, id uint, itemID uint, qty int) (*models.Requisition, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: miktar 0'dan büyük olmalı", apperr.ErrInvalidOperation)
	}

	unlock := lockRequisition(id)
	defer unlock()

	err := db.Transaction(func(tx *gorm.DB) error {
		req, err := loadForUpdate(tx, p, id)
		if err != nil {
			return err
		}

		if !policy.Can(p.Role, policy.OpAddLine, req.Status) {
			return apperr.ErrForbidden
		}

		var item models.Item
		if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: kalem bulunamadı", apperr.ErrNotFound)
			}
			return err
		}

		var line models.RequisitionItem
		err = tx.Where("requisition_id = ? AND item_id = ?", req.ID, itemID).First(&line).Error
		switch {
		case err == nil:
			return tx.Model(&line).Update("quantity", line.Quantity+qty).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			line = models.RequisitionItem{
				RequisitionID: req.ID,
				ItemID:        itemID,
				Quantity:      qty,
				ReceivedQty:   0,
			}
			return tx.Create(&line).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	return Get(db, p, id)
}

// Receive: Bir satır için kısmi teslim kaydı. Satır güncellemesi ve toplam
// durumun yeniden hesabı tek atomik birimdir; talep kilidi altında koşar.
func Receive(db *gorm.DB, p policy.Principal, id, lineID uint, qty int) (*models.Requisition, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: miktar 0'dan büyük olmalı", apperr.ErrQuantityExceeded)
	}

	unlock := lockRequisition(id)
	defer unlock()

	err := db.Transaction(func(tx *gorm.DB) error {
		req, err := loadForUpdate(tx, p, id)
		if err != nil {
			return err
		}

		if !policy.Can(p.Role, policy.OpReceive, req.Status) {
			return apperr.ErrForbidden
		}

		var lines []models.RequisitionItem
		if err := tx.Where("requisition_id = ?", req.ID).Find(&lines).Error; err != nil {
			return err
		}

		var line *models.RequisitionItem
		for i := range lines {
			if lines[i].ID == lineID {
				line = &lines[i]
				break
			}
		}
		if line == nil {
			return fmt.Errorf("%w: talep satırı bulunamadı", apperr.ErrNotFound)
		}

		remaining := line.Quantity - line.ReceivedQty
		if qty > remaining {
			return fmt.Errorf("%w: kalan miktar %d", apperr.ErrQuantityExceeded, remaining)
		}

		line.ReceivedQty += qty
		if err := tx.Model(&models.RequisitionItem{}).
			Where("id = ?", line.ID).
			Update("received_qty", line.ReceivedQty).Error; err != nil {
			return err
		}

		// Toplam durum, yazım sonrası satır kümesinden türetilir. Bu,
		// received/partially_received'a otomatik girişin tek yoludur.
		total, received := 0, 0
		for _, l := range lines {
			total += l.Quantity
			received += l.ReceivedQty
		}

		newStatus := models.StatusReceived
		if received < total {
			newStatus = models.StatusPartiallyReceived
		}
		return tx.Model(req).Update("status", newStatus).Error
	})
	if err != nil {
		return nil, err
	}

	return Get(db, p, id)
}

// Delete: Satırlarla birlikte kalıcı silme. Sadece taslak ve iptal edilmiş
// taleplerde, sadece kaptan.
func Delete(db *gorm.DB, p policy.Principal, id uint) error {
	unlock := lockRequisition(id)
	defer unlock()

	return db.Transaction(func(tx *gorm.DB) error {
		req, err := loadForUpdate(tx, p, id)
		if err != nil {
			return err
		}

		if !policy.Can(p.Role, policy.OpDelete, req.Status) {
			return apperr.ErrForbidden
		}

		if err := tx.Where("requisition_id = ?", req.ID).
			Delete(&models.RequisitionItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(req).Error
	})
}

// loadForUpdate: Talebi gemi kapsamında, yazma kilidiyle okur.
func loadForUpdate(tx *gorm.DB, p policy.Principal, id uint) (*models.Requisition, error) {
	q := scopeToVessel(tx, p)
	if tx.Dialector.Name() == "postgres" {
		// sqlite tek yazarlıdır, FOR UPDATE cümlesini tanımaz
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var req models.Requisition
	if err := q.First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: talep bulunamadı", apperr.ErrNotFound)
		}
		return nil, err
	}
	return &req, nil
}

// scopeToVessel: Gemi personeli için sorguyu kendi gemisine daraltır.
// Kapsam dışı kayıtlar Forbidden değil NotFound görünür.
func scopeToVessel(q *gorm.DB, p policy.Principal) *gorm.DB {
	if p.Role == models.RoleSuperAdmin {
		return q.Model(&models.Requisition{})
	}
	vesselID := uint(0)
	if p.VesselID != nil {
		vesselID = *p.VesselID
	}
	return q.Model(&models.Requisition{}).Where("vessel_id = ?", vesselID)
}
