package services

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/Govind-619/DishDash/models"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// RenderReceipt draws a one-page PDF receipt for order. p is nil while the order is unpaid.
func RenderReceipt(order *models.Order, p *models.Payment) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(100, 10, "DishDash")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(100, 8, "Restaurant order receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(100, 10, "RECEIPT")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(50, 8, "Order ID: "+strconv.FormatUint(uint64(order.ID), 10))
	pdf.Cell(80, 8, "Order Date: "+order.OrderDate.Format("2006-01-02 15:04:05"))
	pdf.Ln(8)
	pdf.Cell(50, 8, "Status: "+order.Status)
	pdf.Ln(8)
	pdf.Cell(100, 8, tr("Customer: "+order.CustomerName))
	pdf.Ln(12)

	unit := order.TotalAmount
	if order.Quantity > 0 {
		unit = order.TotalAmount.Div(decimal.NewFromInt(int64(order.Quantity)))
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(80, 8, "Dish", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, "Price", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, "Total", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(80, 8, tr(order.DishName), "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, strconv.Itoa(order.Quantity), "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, unit.StringFixed(2), "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, order.TotalAmount.StringFixed(2), "1", 0, "R", false, 0, "")
	pdf.Ln(12)

	if order.SpecialInstructions != "" {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(100, 8, "Special instructions:")
		pdf.Ln(7)
		pdf.SetFont("Arial", "", 12)
		pdf.MultiCell(0, 6, tr(order.SpecialInstructions), "", "L", false)
		pdf.Ln(6)
	}

	pdf.SetFont("Arial", "B", 12)
	if p != nil {
		pdf.Cell(100, 8, fmt.Sprintf("Paid: %s %s", p.Amount.StringFixed(2), p.Currency))
		pdf.Ln(7)
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(100, 8, "Payment reference: "+p.PaymentIntentID)
	} else {
		pdf.Cell(100, 8, "Amount due: "+order.TotalAmount.StringFixed(2)+" "+Currency)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
