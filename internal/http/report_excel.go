package httpapi

import (
	"bytes"
	"fmt"
	"time"

	"owl-crm/internal/service"

	"github.com/xuri/excelize/v2"
)

const excelTimeLayout = "2006-01-02 15:04:05"

type sheetSpec struct {
	name   string
	header []string
	widths []float64
	rows   [][]any
}

// GenerateCRMWorkbook 生成 CRM 导出工作簿：Summary / Customers / Products / Orders
func GenerateCRMWorkbook(snap *service.Snapshot) ([]byte, error) {
	sheets := []sheetSpec{
		{
			name:   "Summary",
			header: []string{"Customers", "Orders", "Revenue"},
			widths: []float64{15, 15, 20},
			rows:   [][]any{{snap.Summary.Customers, snap.Summary.Orders, snap.Summary.Revenue.StringFixed(2)}},
		},
		{
			name:   "Customers",
			header: []string{"ID", "Name", "Email", "Phone", "Created At"},
			widths: []float64{10, 25, 35, 20, 22},
		},
		{
			name:   "Products",
			header: []string{"ID", "Name", "Price", "Stock", "Created At"},
			widths: []float64{10, 30, 15, 10, 22},
		},
		{
			name:   "Orders",
			header: []string{"ID", "Customer", "Email", "Products", "Total Amount", "Order Date"},
			widths: []float64{10, 25, 35, 40, 15, 22},
		},
	}
	for _, c := range snap.Customers {
		phone := ""
		if c.Phone != nil {
			phone = *c.Phone
		}
		sheets[1].rows = append(sheets[1].rows, []any{c.ID, c.Name, c.Email, phone, formatTime(c.CreatedAt)})
	}
	for _, p := range snap.Products {
		sheets[2].rows = append(sheets[2].rows, []any{p.ID, p.Name, p.Price.StringFixed(2), p.Stock, formatTime(p.CreatedAt)})
	}
	for _, o := range snap.Orders {
		names := ""
		for i, p := range o.Products {
			if i > 0 {
				names += ", "
			}
			names += p.Name
		}
		sheets[3].rows = append(sheets[3].rows, []any{
			o.ID, o.Customer.Name, o.Customer.Email, names, o.TotalAmount.StringFixed(2), formatTime(o.OrderDate),
		})
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return nil, fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", s.name, err)
		}
		if err := writeSheet(f, s, headerStyle); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, s sheetSpec, headerStyle int) error {
	for col, header := range s.header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(s.name, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(s.name, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if col < len(s.widths) {
			if err := f.SetColWidth(s.name, name, name, s.widths[col]); err != nil {
				return fmt.Errorf("failed to set column width: %w", err)
			}
		}
	}

	// 数据从第2行开始
	for r, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		values := row
		if err := f.SetSheetRow(s.name, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", r+2, s.name, err)
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(excelTimeLayout)
}
