package policy

import (
	"github.com/google/uuid"

	"tedarik-backend/internal/models"
)

// Principal: Doğrulanmış çağıran. Auth katmanı üretir, çekirdek buna güvenir.
type Principal struct {
	UserID   uuid.UUID
	UserName string
	Role     models.UserRole
	VesselID *uint
}

// Operation: Yetki tablosundaki işlem anahtarları.
type Operation string

const (
	OpCreateRequisition Operation = "requisition.create"
	OpTransition        Operation = "requisition.transition"
	OpEdit              Operation = "requisition.edit"
	OpDelete            Operation = "requisition.delete"
	OpAddLine           Operation = "requisition.add_line"
	OpReceive           Operation = "requisition.receive"
	OpManageCatalog     Operation = "catalog.manage"
	OpSetGlobalActive   Operation = "catalog.set_global_active"
	OpSetVesselOverride Operation = "catalog.set_vessel_override"
	OpManageVessels     Operation = "vessel.manage"
	OpManageCrew        Operation = "vessel.manage_crew"
)

// anyStatus: Kuralın talep durumundan bağımsız olduğunu belirtir.
var anyStatus []models.RequisitionStatus = nil

// rule: (rol × işlem × durum) -> izin. Durum kümesi nil ise her durumda
// geçerli. Roller kapalı bir enum; yeni rol eklendiğinde bu tablo ve
// AllRoles birlikte güncellenmelidir.
type rule struct {
	op       Operation
	roles    []models.UserRole
	statuses []models.RequisitionStatus
}

var AllRoles = []models.UserRole{
	models.RoleSuperAdmin,
	models.RoleCaptain,
	models.RoleCrew,
}

var rules = []rule{
	// Talep oluşturma: gemi personeli (taslak olarak doğar)
	{OpCreateRequisition, []models.UserRole{models.RoleCaptain, models.RoleCrew}, anyStatus},

	// Durum geçişleri: sadece kaptan sürer. Super admin katalog/platform
	// rolüdür, gemi operasyonu yürütmez. Durum meşruiyeti burada değil,
	// geçiş tablosunda denetlenir; o yüzden kural durumdan bağımsız.
	{OpTransition, []models.UserRole{models.RoleCaptain}, anyStatus},

	// Düzenleme: taslakta tüm roller, açık durumlarda sadece kaptan.
	// Kapalı durumlar (received/cancelled) hiçbir kurala girmez -> deny.
	{OpEdit, AllRoles,
		[]models.RequisitionStatus{models.StatusDraft}},
	{OpEdit, []models.UserRole{models.RoleCaptain},
		[]models.RequisitionStatus{models.StatusRFQSent, models.StatusOrdered, models.StatusPartiallyReceived}},

	// Silme: sadece kaptan, sadece taslak veya iptal edilmiş taleplerde.
	{OpDelete, []models.UserRole{models.RoleCaptain},
		[]models.RequisitionStatus{models.StatusDraft, models.StatusCancelled}},

	// Kalem ekleme: sadece taslakta.
	{OpAddLine, []models.UserRole{models.RoleCaptain, models.RoleCrew},
		[]models.RequisitionStatus{models.StatusDraft}},

	// Teslim alma: kaptan ve mürettebat, sipariş edilmiş taleplerde.
	{OpReceive, []models.UserRole{models.RoleCaptain, models.RoleCrew},
		[]models.RequisitionStatus{models.StatusOrdered, models.StatusPartiallyReceived}},

	// Katalog yönetimi
	{OpManageCatalog, []models.UserRole{models.RoleSuperAdmin, models.RoleCaptain}, anyStatus},
	{OpSetGlobalActive, []models.UserRole{models.RoleSuperAdmin}, anyStatus},
	{OpSetVesselOverride, []models.UserRole{models.RoleCaptain}, anyStatus},

	// Platform yönetimi
	{OpManageVessels, []models.UserRole{models.RoleSuperAdmin}, anyStatus},
	{OpManageCrew, []models.UserRole{models.RoleSuperAdmin, models.RoleCaptain}, anyStatus},
}

// Can: Talep durumuna bağlı işlemler için yetki kontrolü.
func Can(role models.UserRole, op Operation, status models.RequisitionStatus) bool {
	for _, r := range rules {
		if r.op != op {
			continue
		}
		if !roleAllowed(r.roles, role) {
			continue
		}
		if r.statuses == nil || statusAllowed(r.statuses, status) {
			return true
		}
	}
	return false
}

// CanGlobal: Durumdan bağımsız işlemler (katalog, gemi yönetimi) için
// yetki kontrolü.
func CanGlobal(role models.UserRole, op Operation) bool {
	for _, r := range rules {
		if r.op == op && r.statuses == nil && roleAllowed(r.roles, role) {
			return true
		}
	}
	return false
}

func roleAllowed(roles []models.UserRole, role models.UserRole) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func statusAllowed(statuses []models.RequisitionStatus, status models.RequisitionStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
