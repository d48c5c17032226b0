package requisition

import "tedarik-backend/internal/models"

// allowedTransitions: durum -> izinli hedef durumlar. received ve cancelled
// terminaldir, çıkışı yoktur. partially_received ve received durumlarına
// otomatik giriş sadece teslim alma yolundan olur; tablo yine de
// ordered -> received geçişine izin verir (operatör tek seferde kapatabilir).
var allowedTransitions = map[models.RequisitionStatus][]models.RequisitionStatus{
	models.StatusDraft:             {models.StatusRFQSent, models.StatusCancelled},
	models.StatusRFQSent:           {models.StatusOrdered, models.StatusCancelled},
	models.StatusOrdered:           {models.StatusPartiallyReceived, models.StatusReceived, models.StatusCancelled},
	models.StatusPartiallyReceived: {models.StatusReceived},
	models.StatusReceived:          {},
	models.StatusCancelled:         {},
}

func CanTransition(from, to models.RequisitionStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsClosed: Terminal durumlar; hiçbir mutasyona izin verilmez.
func IsClosed(status models.RequisitionStatus) bool {
	return status == models.StatusReceived || status == models.StatusCancelled
}

// ValidStatus: Dışarıdan gelen durum string'inin tanınan bir durum olup
// olmadığını kontrol eder.
func ValidStatus(status models.RequisitionStatus) bool {
	_, ok := allowedTransitions[status]
	return ok
}
