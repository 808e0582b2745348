// Package sheet reads cart lines from and writes carts to XLSX workbooks.
package sheet

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ikkim/cart-backend/internal/app/service"
	"github.com/xuri/excelize/v2"
)

const (
	CartSheet    = "Cart"
	SummarySheet = "Summary"
)

// Row is one line request read from a workbook. Line is the 1-based
// spreadsheet row. Values are not validated here.
type Row struct {
	Line     int
	Name     string
	Price    float64
	Quantity float64
}

// RowError describes a row whose cells could not be parsed.
type RowError struct {
	Line   int
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Line, e.Reason)
}

// ReadItems parses the first sheet as Name | Price | Quantity. The first
// row is a header. A blank quantity means 1. Empty rows are ignored.
func ReadItems(r io.Reader) ([]Row, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows: %w", err)
	}

	var items []Row
	var rowErrors []RowError
	for i, row := range rows {
		if i == 0 || isBlank(row) {
			continue
		}
		line := i + 1

		item, reason := parseRow(row)
		if reason != "" {
			rowErrors = append(rowErrors, RowError{Line: line, Reason: reason})
			continue
		}
		item.Line = line
		items = append(items, item)
	}

	return items, rowErrors, nil
}

func parseRow(row []string) (Row, string) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	price, err := strconv.ParseFloat(cell(1), 64)
	if err != nil {
		return Row{}, fmt.Sprintf("price %q is not a number", cell(1))
	}

	quantity := 1.0
	if q := cell(2); q != "" {
		quantity, err = strconv.ParseFloat(q, 64)
		if err != nil {
			return Row{}, fmt.Sprintf("quantity %q is not a number", q)
		}
	}

	// name is kept untrimmed; the cart normalises it
	name := ""
	if len(row) > 0 {
		name = row[0]
	}
	return Row{Name: name, Price: price, Quantity: quantity}, ""
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// WriteCart renders the cart lines on the first sheet and the summary on
// a second one, then writes the workbook to w.
func WriteCart(w io.Writer, view *service.CartView) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), CartSheet); err != nil {
		return err
	}

	header := []interface{}{"Name", "Price", "Quantity", "Item Total"}
	if err := f.SetSheetRow(CartSheet, "A1", &header); err != nil {
		return err
	}
	for i, line := range view.Items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{line.Name, line.Price, line.Quantity, line.ItemTotal}
		if err := f.SetSheetRow(CartSheet, cell, &values); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}
	summary := [][]interface{}{{"Line", "Amount", "Display"}}
	if view.Summary != nil {
		s := view.Summary
		summary = append(summary,
			[]interface{}{"Subtotal", s.Subtotal, s.Formatted.Subtotal},
			[]interface{}{"Discount", s.Discount, s.Formatted.Discount},
			[]interface{}{"Tax", s.Tax, s.Formatted.Tax},
			[]interface{}{"Total", s.Total, s.Formatted.Total},
		)
	}
	for i, values := range summary {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := values
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return err
		}
	}

	return f.Write(w)
}
