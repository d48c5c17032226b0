package export

import (
	"fmt"
	"strconv"

	"tedarik-backend/internal/apperr"
	"tedarik-backend/internal/auth"
	"tedarik-backend/internal/database"
	"tedarik-backend/internal/requisition"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// GET /api/requisitions/:id/export
// Talebin o anki tutarlı görünümünü (durum, satırlar, miktarlar) XLSX olarak
// indirir. Dosya salt okunur bir anlık görüntüdür, talep üzerinde yan etkisi
// yoktur.
func ExportRequisitionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}

		id, err := strconv.ParseUint(c.Params("id"), 10, 32)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz id")
		}

		req, err := requisition.Get(database.DB, p, uint(id))
		if err != nil {
			return apperr.ToFiber(err)
		}

		f := excelize.NewFile()
		defer f.Close()

		sheet := f.GetSheetName(0)

		// Başlık bloğu
		f.SetCellValue(sheet, "A1", "Talep No")
		f.SetCellValue(sheet, "B1", req.ID)
		f.SetCellValue(sheet, "A2", "Durum")
		f.SetCellValue(sheet, "B2", string(req.Status))
		f.SetCellValue(sheet, "A3", "Oluşturulma")
		f.SetCellValue(sheet, "B3", req.CreatedAt.Format("2006-01-02 15:04:05"))
		if req.OrderedAt != nil {
			f.SetCellValue(sheet, "A4", "Sipariş Tarihi")
			f.SetCellValue(sheet, "B4", req.OrderedAt.Format("2006-01-02 15:04:05"))
		}
		if req.Notes != "" {
			f.SetCellValue(sheet, "A5", "Not")
			f.SetCellValue(sheet, "B5", req.Notes)
		}

		// Satır tablosu
		headers := []string{"Kalem", "Katalog No", "Birim", "Sipariş Miktarı", "Teslim Alınan", "Kalan"}
		headerRow := 7
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
			f.SetCellValue(sheet, cell, h)
		}

		totalQty, totalReceived := 0, 0
		for i, line := range req.Items {
			row := headerRow + 1 + i
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), line.Item.Name)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), line.Item.CatalogueNr)
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), line.Item.Unit)
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), line.Quantity)
			f.SetCellValue(sheet, fmt.Sprintf("E%d", row), line.ReceivedQty)
			f.SetCellValue(sheet, fmt.Sprintf("F%d", row), line.Quantity-line.ReceivedQty)
			totalQty += line.Quantity
			totalReceived += line.ReceivedQty
		}

		totalRow := headerRow + 1 + len(req.Items)
		f.SetCellValue(sheet, fmt.Sprintf("A%d", totalRow), "TOPLAM")
		f.SetCellValue(sheet, fmt.Sprintf("D%d", totalRow), totalQty)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", totalRow), totalReceived)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", totalRow), totalQty-totalReceived)

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Dosya oluşturulamadı")
		}

		c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="talep-%d.xlsx"`, req.ID))
		return c.Send(buf.Bytes())
	}
}
