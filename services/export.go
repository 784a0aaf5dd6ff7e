package services

import (
	"fmt"
	"io"

	"github.com/Govind-619/DishDash/models"
	"github.com/tealeg/xlsx"
)

var exportHeaders = []string{"Order ID", "Date", "Customer", "Dish", "Quantity", "Total", "Status", "Special Instructions"}

// ExportOrders writes orders as a single-sheet workbook to w
func ExportOrders(orders []models.Order, w io.Writer) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	bold := xlsx.NewStyle()
	font := xlsx.DefaultFont()
	font.Bold = true
	bold.Font = *font

	headerRow := sheet.AddRow()
	for _, h := range exportHeaders {
		cell := headerRow.AddCell()
		cell.SetString(h)
		cell.SetStyle(bold)
	}

	for _, order := range orders {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(order.ID))
		row.AddCell().SetString(order.OrderDate.Format("2006-01-02 15:04"))
		row.AddCell().SetString(order.CustomerName)
		row.AddCell().SetString(order.DishName)
		row.AddCell().SetInt(order.Quantity)
		row.AddCell().SetString(order.TotalAmount.StringFixed(2))
		row.AddCell().SetString(order.Status)
		row.AddCell().SetString(order.SpecialInstructions)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
