package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Çekirdek hata sınıflandırması. Servis katmanı sadece bu sentinel'ları
// (fmt.Errorf %w ile sarılmış olarak) döndürür; HTTP koduna çeviri handler
// sınırında yapılır.
var (
	ErrNotFound          = errors.New("kayıt bulunamadı")
	ErrForbidden         = errors.New("bu işlem için yetkiniz yok")
	ErrIllegalTransition = errors.New("geçersiz durum geçişi")
	ErrQuantityExceeded  = errors.New("miktar kalan miktarı aşıyor")
	ErrInvalidOperation  = errors.New("geçersiz işlem")
)

// ToFiber: Servis hatasını fiber hatasına çevirir. Sınıflandırma dışındaki
// hatalar 500 olarak döner, mesaj sızdırılmaz.
func ToFiber(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, ErrIllegalTransition):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrQuantityExceeded):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidOperation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "Beklenmeyen sunucu hatası")
	}
}
