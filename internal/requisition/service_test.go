package requisition

import (
	"errors"
	"sync"
	"testing"

	"tedarik-backend/internal/apperr"
	"tedarik-backend/internal/database"
	"tedarik-backend/internal/models"
	"tedarik-backend/internal/policy"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func seedVessel(t *testing.T, db *gorm.DB) models.Vessel {
	t.Helper()
	vessel := models.Vessel{Name: "MV Karadeniz", IsActive: true}
	if err := db.Create(&vessel).Error; err != nil {
		t.Fatalf("gemi oluşturulamadı: %v", err)
	}
	return vessel
}

func seedItem(t *testing.T, db *gorm.DB, name string) models.Item {
	t.Helper()
	category := models.Category{Name: "Güverte-" + name, IsActive: true}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("kategori oluşturulamadı: %v", err)
	}
	item := models.Item{
		Name:       name,
		Unit:       "adet",
		CategoryID: category.ID,
		IsActive:   true,
		CreatedBy:  uuid.New(),
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("kalem oluşturulamadı: %v", err)
	}
	return item
}

func principalFor(role models.UserRole, vesselID uint) policy.Principal {
	p := policy.Principal{UserID: uuid.New(), UserName: "test", Role: role}
	if role != models.RoleSuperAdmin {
		p.VesselID = &vesselID
	}
	return p
}

func mustCreate(t *testing.T, db *gorm.DB, p policy.Principal, lines []LineInput) *models.Requisition {
	t.Helper()
	req, err := Create(db, p, CreateInput{Lines: lines})
	if err != nil {
		t.Fatalf("talep oluşturulamadı: %v", err)
	}
	return req
}

func mustTransition(t *testing.T, db *gorm.DB, p policy.Principal, id uint, target models.RequisitionStatus) *models.Requisition {
	t.Helper()
	req, err := Transition(db, p, id, target)
	if err != nil {
		t.Fatalf("geçiş %s başarısız: %v", target, err)
	}
	return req
}

func TestCreateRoundTrip(t *testing.T) {
	db := database.NewTestDB(t)
	vessel := seedVessel(t, db)
	captain := principalFor(models.RoleCaptain, vessel.ID)

	itemA := seedItem(t, db, "Halat")
	itemB := seedItem(t, db, "Boya")

	req := mustCreate(t, db, captain, []LineInput{
		{ItemID: itemA.ID, Quantity: 3},
		{ItemID: itemB.ID, Quantity: 7},
	})

	got, err := Get(db, captain, req.ID)
	if err != nil {
		t.Fatalf("talep okunamadı: %v", err)
	}
	if got.Status != models.StatusDraft {
		t.Errorf("yeni talep draft olmalı, %s geldi", got.Status)
	}
	if len(got.Items) != 2 {
		t.Fatalf("2 satır bekleniyordu, %d geldi", len(got.Items))
	}
	for _, line := range got.Items {
		if line.ReceivedQty != 0 {
			t.Errorf("yeni satırda received_qty 0 olmalı, %d geldi", line.ReceivedQty)
		}
	}
}

func TestCreateRejectsEmptyLines(t *testing.T) {
	db := database.NewTestDB(t)
	vessel := seedVessel(t, db)
	captain := principalFor(models.RoleCaptain, vessel.ID)

	if _, err := Create(db, captain, CreateInput{}); !errors.Is(err, apperr.ErrInvalidOperation) {
		t.Errorf("boş kalem listesi InvalidOperation vermeli, %v geldi", err)
	}

	// Başarısız oluşturma başlık da bırakmamalı
	var count int64
	db.Model(&models.Requisition{}).Count(&count)
	if count != 0 {
		t.Errorf("rollback sonrası talep kalmamalıydı, %d var", count)
	}
}

func TestCreateUnknownItem(t *testing.T) {
	db := database.NewTestDB(t)
	vessel := seedVessel(t, db)
	captain := principalFor(models.RoleCaptain, vessel.ID)

	_, err := Create(db, captain, CreateInput{Lines: []LineInput{{ItemID: 999, Quantity: 1}}})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("bilinmeyen kalem NotFound vermeli, %v geldi", err)
	}
}

// Senaryo A: tek satır quantity=10; 4 teslim -> partially_received, kalan 6;
// 6 teslim -> received; sonraki teslim denemeleri QuantityExceeded.
func TestReceiveLifecycle(t *testing.T) {
	db := database.NewTestDB(t)
	vessel := seedVessel(t, db)
	captain := principalFor(models.RoleCaptain, vessel.ID)

	item := seedItem(t, db, "Filtre")
	req := mustCreate(t, db, captain, []LineInput{{ItemID: item.ID, Quantity: 10}})

	mustTransition(t, db, captain, req.ID, models.StatusRFQSent)
	mustTransition(t, db, captain, req.ID, models.StatusOrdered)

	req, _ = Get(db, captain, req.ID)
	lineID := req.Items[0].ID

	req, err := Receive(db, captain, req.ID, lineID, 4)
	if err != nil {
		t.Fatalf("teslim alınamadı: %v", err)
	}
	if req.Status != models.StatusPartiallyReceived {
		t.Errorf("durum partially_received olmalı, %s geldi", req.Status)
	}
	if remaining := req.Items[0].Quantity - req.Items[0].ReceivedQty; remaining != 6 {
		t.Errorf("kalan 6 olmalı, %d geldi", remaining)
	}

	req, err = Receive(db, captain, req.ID, lineID, 6)
	if err != nil {
		t.Fatalf("teslim alınamadı: %v", err)
	}
	if req.Status != models.StatusReceived {
		t.Errorf("durum received olmalı, %s geldi", req.Status)
	}

	// Kapanmış talepte teslim denemesi artık rol/durum kapısına takılır
	if _, err := Receive(db, captain, req.ID, lineID, 1); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("kapanmış talepte teslim Forbidden vermeli, %v geldi", err)
	}
}

func TestReceiveQuantityExceeded(t *testing.T) {
	db := database.NewTestDB(t)
	vessel := seedVessel(t, db)
	captain := principalFor(models.RoleCaptain, vessel.ID)

	item := seedItem(t, db, "Yağ")
	req := mustCreate(t, db, captain, []LineInput{{ItemID: item.ID, Quantity: 5}})
	mustTransition(t, db, captain, req.ID, models.StatusRFQSent)
	mustTransition(t, db, captain, req.ID, models.StatusOrdered)

	req, _ = Get(db, captain, req.ID)
	lineID := req.Items[0].ID

	if _, err := Receive(db, captain, req.ID, lineID, 6); !errors.Is(err, apperr.ErrQuantityExceeded) {
		t.Errorf("fazla miktar QuantityExceeded vermeli, %v geldi", err)
	}
	if _, err := Receive(db, captain, req.ID, lineID, 0); !errors.Is(err, apperr.ErrQuantityExceeded) {
		t.Errorf("sıfır miktar QuantityExceeded vermeli, %v geldi", err)
	}
	if _, err := Receive(db, captain, req.ID, lineID, -3); !errors.Is(err, apperr.ErrQuantityExceeded) {
		t.Errorf("negatif miktar QuantityExceeded vermeli, %v geldi", err)
	}

	// Başarısız denemeler satırı değiştirmemiş olmalı
	req, _ = Get(db, captain, req.ID)
	if req.Items[0].ReceivedQty != 0 {
		t.Errorf("received_qty 0 kalmalıydı, %d geldi", req.Items[0].ReceivedQty)
	}
	if req.Status != models.StatusOrdered {
		t.Errorf("durum ordered kalmalıydı, %s geldi", req.Status)
	}
}

// Senaryo B: rfq_sent'ten draft'a geri dönüş yok.
func TestIllegalTransitionBackwards(t *testing.T) {
	db := database.NewTestDB(t)
	vessel := seedVessel(t, db)
	captain := principalFor(models.RoleCaptain, vessel.ID)

	item := seedItem(t, db, "Cıvata")
	req := mustCreate(t, db, captain, []LineInput{{ItemID: item.ID, Quantity: 1}})
	mustTransition(t, db, captain, req.ID, models.StatusRFQSent)

	if _, err := Transition(db, captain, req.ID, models.StatusDraft); !errors.Is(err, apperr.ErrIllegalTransition) {
		t.Errorf("geri geçiş IllegalTransition vermeli, %v geldi", err)
	}
}

// Senaryo C: crew hiçbir durumda geçiş süremez.
func TestCrewCannotTransition(t *testing.T) {
	db := database.NewTestDB(t)
	vessel := seedVessel(t, db)
	captain := principalFor(models.RoleCaptain, vessel.ID)
	crew := principalFor(models.RoleCrew, vessel.ID)

	item := seedItem(t, db, "Eldiven")
	req := mustCreate(t, db, crew, []LineInput{{ItemID: item.ID, Quantity: 2}})

	if _, err := Transition(db, crew, req.ID, models.StatusRFQSent); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("crew geçişi Forbidden vermeli, %v geldi", err)
	}

	mustTransition(t, db, captain, req.ID, models.StatusRFQSent)
	if _, err := Transition(db, crew, req.ID, models.StatusOrdered); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("crew geçişi Forbidden vermeli, %v geldi", err)
	}
}

func TestOrderedAtStampedOnce(t *testing.T) {
	db := database.NewTestDB(t)
	vessel := seedVessel(t, db)
	captain := principalFor(models.RoleCaptain, vessel.ID)

	item := seedItem(t, db, "Pompa")
	req := mustCreate(t, db, captain, []LineInput{{ItemID: item.ID, Quantity: 1}})

	req, _ = Get(db, captain, req.ID)
	if req.OrderedAt != nil {
		t.Fatal("ordered_at sipariş öncesi boş olmalı")
	}

	mustTransition(t, db, captain, req.ID, models.StatusRFQSent)
	req, _ = Get(db, captain, req.ID)
	if req.OrderedAt != nil {
		t.Fatal("ordered_at rfq_sent'te boş olmalı")
	}

	req = mustTransition(t, db, captain, req.ID, models.StatusOrdered)
	if req.OrderedAt == nil {
		t.Fatal("ordered_at ordered geçişinde damgalanmalı")
	}
}

// Senaryo E: cancelled'da edit herkes için kapalı; delete sadece kaptan.
func TestCancelledEditAndDelete(t *testing.T) {
	db := database.NewTestDB(t)
	vessel := seedVessel(t, db)
	captain := principalFor(models.RoleCaptain, vessel.ID)
	crew := principalFor(models.RoleCrew, vessel.ID)

	item := seedItem(t, db, "Fener")
	req := mustCreate(t, db, captain, []LineInput{{ItemID: item.ID, Quantity: 1}})
	mustTransition(t, db, captain, req.ID, models.StatusCancelled)

	notes := "değişiklik"
	if _, err := Edit(db, captain, req.ID, EditInput{Notes: &notes}); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("kaptan iptal edilmiş talebi düzenleyememeli, %v geldi", err)
	}
	if _, err := Edit(db, crew, req.ID, EditInput{Notes: &notes}); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("crew iptal edilmiş talebi düzenleyememeli, %v geldi", err)
	}

	if err := Delete(db, crew, req.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("crew silemez, %v geldi", err)
	}
	if err := Delete(db, captain, req.ID); err != nil {
		t.Fatalf("kaptan iptal edilmiş talebi silebilmeli: %v", err)
	}

	// Satırlar da gitmiş olmalı
	var lineCount int64
	db.Model(&models.RequisitionItem{}).Where("requisition_id = ?", req.ID).Count(&lineCount)
	if lineCount != 0 {
		t.Errorf("silme satırlara kaskat uygulanmalı, %d satır kaldı", lineCount)
	}
}

func TestDeleteForbiddenForOpenStates(t *testing.T) {
	db := database.NewTestDB(t)
	vessel := seedVessel(t, db)
	captain := principalFor(models.RoleCaptain, vessel.ID)

	item := seedItem(t, db, "Zincir")
	req := mustCreate(t, db, captain, []LineInput{{ItemID: item.ID, Quantity: 1}})
	mustTransition(t, db, captain, req.ID, models.StatusRFQSent)

	if err := Delete(db, captain, req.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("rfq_sent durumunda silme Forbidden vermeli, %v geldi", err)
	}
}

func TestAddLineMergesByItem(t *testing.T) {
	db := database.NewTestDB(t)
	vessel := seedVessel(t, db)
	captain := principalFor(models.RoleCaptain, vessel.ID)

	item := seedItem(t, db, "Kaynak Teli")
	req := mustCreate(t, db, captain, []LineInput{{ItemID: item.ID, Quantity: 3}})

	req, err := AddLine(db, captain, req.ID, item.ID, 2)
	if err != nil {
		t.Fatalf("kalem eklenemedi: %v", err)
	}
	if len(req.Items) != 1 {
		t.Fatalf("aynı kalem yeni satır açmamalı, %d satır var", len(req.Items))
	}
	if req.Items[0].Quantity != 5 {
		t.Errorf("miktar 5 olmalı, %d geldi", req.Items[0].Quantity)
	}

	other := seedItem(t, db, "Conta")
	req, err = AddLine(db, captain, req.ID, other.ID, 1)
	if err != nil {
		t.Fatalf("kalem eklenemedi: %v", err)
	}
	if len(req.Items) != 2 {
		t.Fatalf("farklı kalem yeni satır açmalı, %d satır var", len(req.Items))
	}
}

func TestAddLineRejectsNonPositiveQuantity(t *testing.T) {
	db := database.NewTestDB(t)
	vessel := seedVessel(t, db)
	captain := principalFor(models.RoleCaptain, vessel.ID)

	item := seedItem(t, db, "Şamandıra")
	req := mustCreate(t, db, captain, []LineInput{{ItemID: item.ID, Quantity: 1}})

	if _, err := AddLine(db, captain, req.ID, item.ID, 0); !errors.Is(err, apperr.ErrInvalidOperation) {
		t.Errorf("sıfır miktar InvalidOperation vermeli, %v geldi", err)
	}
	if _, err := AddLine(db, captain, req.ID, item.ID, -4); !errors.Is(err, apperr.ErrInvalidOperation) {
		t.Errorf("negatif miktar InvalidOperation vermeli, %v geldi", err)
	}

	// Başarısız denemeler mevcut satırı değiştirmemeli
	got, _ := Get(db, captain, req.ID)
	if len(got.Items) != 1 || got.Items[0].Quantity != 1 {
		t.Error("geçersiz ekleme denemesi satır kümesini bozmamalı")
	}
}

func TestAddLineOnlyInDraft(t *testing.T) {
	db := database.NewTestDB(t)
	vessel := seedVessel(t, db)
	captain := principalFor(models.RoleCaptain, vessel.ID)

	item := seedItem(t, db, "Vana")
	req := mustCreate(t, db, captain, []LineInput{{ItemID: item.ID, Quantity: 1}})
	mustTransition(t, db, captain, req.ID, models.StatusRFQSent)

	if _, err := AddLine(db, captain, req.ID, item.ID, 1); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("taslak dışı kalem ekleme Forbidden vermeli, %v geldi", err)
	}
}

func TestEditReplacesLineSetAtomically(t *testing.T) {
	db := database.NewTestDB(t)
	vessel := seedVessel(t, db)
	captain := principalFor(models.RoleCaptain, vessel.ID)

	itemA := seedItem(t, db, "Halat-E")
	itemB := seedItem(t, db, "Boya-E")
	itemC := seedItem(t, db, "Fırça-E")

	req := mustCreate(t, db, captain, []LineInput{
		{ItemID: itemA.ID, Quantity: 2},
		{ItemID: itemB.ID, Quantity: 4},
	})

	req, err := Edit(db, captain, req.ID, EditInput{
		Lines: []LineInput{{ItemID: itemC.ID, Quantity: 9}},
	})
	if err != nil {
		t.Fatalf("düzenlenemedi: %v", err)
	}
	if len(req.Items) != 1 {
		t.Fatalf("satır kümesi tamamen değişmeliydi, %d satır var", len(req.Items))
	}
	if req.Items[0].ItemID != itemC.ID || req.Items[0].Quantity != 9 {
		t.Errorf("yeni satır kümesi yanlış: %+v", req.Items[0])
	}
	if req.Items[0].ReceivedQty != 0 {
		t.Errorf("yeni satırlar received_qty=0 ile başlamalı, %d geldi", req.Items[0].ReceivedQty)
	}

	// Geçersiz kalemle swap tamamen geri alınmalı, eski küme korunmalı
	if _, err := Edit(db, captain, req.ID, EditInput{
		Lines: []LineInput{{ItemID: 9999, Quantity: 1}},
	}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("geçersiz kalem NotFound vermeli, %v geldi", err)
	}
	req, _ = Get(db, captain, req.ID)
	if len(req.Items) != 1 || req.Items[0].ItemID != itemC.ID {
		t.Error("başarısız swap önceki satır kümesini bozmamalı")
	}
}

func TestEditRejectsEmptyLineSet(t *testing.T) {
	db := database.NewTestDB(t)
	vessel := seedVessel(t, db)
	captain := principalFor(models.RoleCaptain, vessel.ID)

	item := seedItem(t, db, "Makara")
	req := mustCreate(t, db, captain, []LineInput{{ItemID: item.ID, Quantity: 1}})

	if _, err := Edit(db, captain, req.ID, EditInput{Lines: []LineInput{}}); !errors.Is(err, apperr.ErrInvalidOperation) {
		t.Errorf("boş satır kümesi InvalidOperation vermeli, %v geldi", err)
	}
}

func TestSuperAdminCanEditDraft(t *testing.T) {
	db := database.NewTestDB(t)
	vessel := seedVessel(t, db)
	captain := principalFor(models.RoleCaptain, vessel.ID)
	superAdmin := principalFor(models.RoleSuperAdmin, 0)

	item := seedItem(t, db, "Jeneratör")
	req := mustCreate(t, db, captain, []LineInput{{ItemID: item.ID, Quantity: 2}})

	notes := "tedarikçi teklifi bekleniyor"
	req, err := Edit(db, superAdmin, req.ID, EditInput{Notes: &notes})
	if err != nil {
		t.Fatalf("super_admin taslağı düzenleyebilmeli: %v", err)
	}
	if req.Notes != notes {
		t.Errorf("notlar güncellenmeli, %q geldi", req.Notes)
	}

	// Taslaktan çıkınca super_admin için de kapanır
	mustTransition(t, db, captain, req.ID, models.StatusRFQSent)
	if _, err := Edit(db, superAdmin, req.ID, EditInput{Notes: &notes}); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("super_admin açık durumda düzenleyememeli, %v geldi", err)
	}
}

func TestVesselScoping(t *testing.T) {
	db := database.NewTestDB(t)
	vesselA := seedVessel(t, db)
	vesselB := models.Vessel{Name: "MV Ege", IsActive: true}
	if err := db.Create(&vesselB).Error; err != nil {
		t.Fatalf("gemi oluşturulamadı: %v", err)
	}

	captainA := principalFor(models.RoleCaptain, vesselA.ID)
	captainB := principalFor(models.RoleCaptain, vesselB.ID)
	superAdmin := principalFor(models.RoleSuperAdmin, 0)

	item := seedItem(t, db, "Radar")
	req := mustCreate(t, db, captainA, []LineInput{{ItemID: item.ID, Quantity: 1}})

	// Başka geminin kaptanı için kapsam dışı talep NotFound'dur
	if _, err := Get(db, captainB, req.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("kapsam dışı talep NotFound vermeli, %v geldi", err)
	}
	if _, err := Transition(db, captainB, req.ID, models.StatusRFQSent); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("kapsam dışı geçiş NotFound vermeli, %v geldi", err)
	}

	// Super admin tüm talepleri görür
	if _, err := Get(db, superAdmin, req.ID); err != nil {
		t.Errorf("super_admin talebi görebilmeli: %v", err)
	}

	reqsA, _ := List(db, captainA, ListFilter{})
	reqsB, _ := List(db, captainB, ListFilter{})
	if len(reqsA) != 1 || len(reqsB) != 0 {
		t.Errorf("liste gemiye göre daralmalı: A=%d B=%d", len(reqsA), len(reqsB))
	}
}

// Senaryo F: Aynı talebin iki farklı satırına eşzamanlı teslim; toplam tam
// karşılanıyorsa ikisi de commit olur ve sonuç received'dır.
func TestConcurrentReceivesOnDifferentLines(t *testing.T) {
	db := database.NewTestDB(t)
	vessel := seedVessel(t, db)
	captain := principalFor(models.RoleCaptain, vessel.ID)
	crew := principalFor(models.RoleCrew, vessel.ID)

	itemA := seedItem(t, db, "Halat-C")
	itemB := seedItem(t, db, "Boya-C")

	req := mustCreate(t, db, captain, []LineInput{
		{ItemID: itemA.ID, Quantity: 5},
		{ItemID: itemB.ID, Quantity: 5},
	})
	mustTransition(t, db, captain, req.ID, models.StatusRFQSent)
	mustTransition(t, db, captain, req.ID, models.StatusOrdered)

	req, _ = Get(db, captain, req.ID)
	line1 := req.Items[0].ID
	line2 := req.Items[1].ID

	var wg sync.WaitGroup
	errs := make([]error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = Receive(db, captain, req.ID, line1, 5)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = Receive(db, crew, req.ID, line2, 5)
	}()
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("teslim %d başarısız: %v", i, err)
		}
	}

	final, err := Get(db, captain, req.ID)
	if err != nil {
		t.Fatalf("talep okunamadı: %v", err)
	}
	if final.Status != models.StatusReceived {
		t.Errorf("toplam tam karşılandı, durum received olmalı, %s geldi", final.Status)
	}
	for _, line := range final.Items {
		if line.ReceivedQty != line.Quantity {
			t.Errorf("satır %d tam teslim edilmiş olmalı: %d/%d", line.ID, line.ReceivedQty, line.Quantity)
		}
	}
}
