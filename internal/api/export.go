package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// Export writes an xlsx workbook with one sheet of tracked products and
// one of recent alerts, for offline review.
func (h *APIHandler) Export(c *gin.Context) {
	file := excelize.NewFile()
	defer file.Close()

	if err := h.writeProductsSheet(file); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.writeAlertsSheet(file); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	file.DeleteSheet("Sheet1")

	filename := fmt.Sprintf("radar-export-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := file.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *APIHandler) writeProductsSheet(file *excelize.File) error {
	const sheet = "Products"
	if _, err := file.NewSheet(sheet); err != nil {
		return err
	}

	headers := []interface{}{"Slug", "Name", "Threshold %", "Last Price", "Reference Price", "Discount %", "Created"}
	if err := file.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}

	products, err := h.products.All()
	if err != nil {
		return err
	}

	for i, product := range products {
		item, err := h.enrich(product)
		if err != nil {
			return err
		}

		row := []interface{}{
			product.Slug,
			product.Name,
			deref(product.DipThreshold),
			deref(item.LastPrice),
			deref(item.DisplayReference),
			deref(item.DiscountPct),
			product.CreatedAt.Format("2006-01-02 15:04"),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := file.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func (h *APIHandler) writeAlertsSheet(file *excelize.File) error {
	const sheet = "Alerts"
	if _, err := file.NewSheet(sheet); err != nil {
		return err
	}

	headers := []interface{}{"Product", "Slug", "Alert Price", "30d Median", "Discount %", "Triggered"}
	if err := file.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}

	alerts, err := h.alerts.Recent(50)
	if err != nil {
		return err
	}

	for i, alert := range alerts {
		row := []interface{}{
			alert.ProductName,
			alert.Slug,
			alert.AlertPrice,
			alert.ReferencePrice,
			alert.DiscountPct,
			alert.TriggeredAt.Format("2006-01-02 15:04"),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := file.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func deref(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
