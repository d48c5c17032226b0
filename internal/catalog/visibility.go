package catalog

import (
	"errors"
	"fmt"

	"tedarik-backend/internal/apperr"
	"tedarik-backend/internal/models"
	"tedarik-backend/internal/policy"

	"gorm.io/gorm"
)

// Görünürlük çözümü üç değerlidir: override yok / override aktif / override
// pasif. Override yokluğu "global görünürlüğü miras al" demektir; nullable
// boolean taşımak yerine bu ayrım burada, tek noktada çözülür.

// EffectiveActive: Bir kalemin bir gemi için etkin aktifliği. Override
// geminin kararıdır ama global olarak kapatılmış bir kalemi diriltemez.
func EffectiveActive(globalActive bool, override *bool) bool {
	if override == nil {
		return globalActive
	}
	return *override && globalActive
}

// ResolveOverrides: Aday kalem kümesi için tüm override'ları tek sorguda
// çeker. Listeleme maliyeti O(kalem + override) kalır.
func ResolveOverrides(db *gorm.DB, vesselID uint, itemIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool, len(itemIDs))
	if len(itemIDs) == 0 {
		return result, nil
	}

	var overrides []models.VesselItem
	if err := db.
		Where("vessel_id = ? AND item_id IN ?", vesselID, itemIDs).
		Find(&overrides).Error; err != nil {
		return nil, err
	}

	for _, o := range overrides {
		result[o.ItemID] = o.IsActive
	}
	return result, nil
}

// EffectiveActiveFor: Tek kalem için etkin aktiflik.
func EffectiveActiveFor(db *gorm.DB, vesselID, itemID uint) (bool, error) {
	var item models.Item
	if err := db.First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("%w: kalem bulunamadı", apperr.ErrNotFound)
		}
		return false, err
	}

	var override models.VesselItem
	err := db.Where("vessel_id = ? AND item_id = ?", vesselID, itemID).First(&override).Error
	switch {
	case err == nil:
		return EffectiveActive(item.IsActive, &override.IsActive), nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return EffectiveActive(item.IsActive, nil), nil
	default:
		return false, err
	}
}

// SetOverride: Gemi bazlı görünürlük kaydını oluşturur ya da yerinde
// günceller. Satır ilk değişiklikte tembel oluşur; (vessel, item) başına en
// fazla bir satır unique index ile garanti edilir. Global olarak kapatılmış
// bir kaleme geri opt-in yapılamaz.
func SetOverride(db *gorm.DB, p policy.Principal, itemID uint, desiredActive bool) (*models.VesselItem, error) {
	if !policy.CanGlobal(p.Role, policy.OpSetVesselOverride) {
		return nil, apperr.ErrForbidden
	}
	if p.VesselID == nil {
		return nil, apperr.ErrForbidden
	}
	vesselID := *p.VesselID

	var item models.Item
	if err := db.First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: kalem bulunamadı", apperr.ErrNotFound)
		}
		return nil, err
	}

	if desiredActive && !item.IsActive {
		return nil, fmt.Errorf("%w: global olarak pasif bir kaleme opt-in yapılamaz", apperr.ErrInvalidOperation)
	}

	var override models.VesselItem
	err := db.Where("vessel_id = ? AND item_id = ?", vesselID, itemID).First(&override).Error
	switch {
	case err == nil:
		// Aynı (vessel, item) üzerindeki eşzamanlı yazımlarda son yazan
		// kazanır; override idempotent bir boolean olduğu için yeterli.
		if err := db.Model(&override).Update("is_active", desiredActive).Error; err != nil {
			return nil, err
		}
		override.IsActive = desiredActive
		return &override, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		override = models.VesselItem{
			VesselID: vesselID,
			ItemID:   itemID,
			IsActive: desiredActive,
		}
		if err := db.Create(&override).Error; err != nil {
			return nil, err
		}
		return &override, nil
	default:
		return nil, err
	}
}
