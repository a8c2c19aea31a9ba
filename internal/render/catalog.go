package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"medstore/m/domain"
)

// CatalogHeader is the header row of catalog exports and imports.
var CatalogHeader = []string{"Name", "Company", "Category", "Purchase Price", "Sale Price", "Quantity", "Expiry Date"}

const catalogSheet = "Medicines"

func catalogRow(m domain.Medicine) []string {
	return []string{
		m.Name,
		m.Company,
		m.Category,
		Number(m.PurchasePrice),
		Number(m.SalePrice),
		strconv.FormatInt(m.Quantity, 10),
		m.ExpiryDate,
	}
}

// CatalogCSV writes the catalog as CSV, one medicine per row in the given order.
func CatalogCSV(w io.Writer, medicines []domain.Medicine) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CatalogHeader); err != nil {
		return fmt.Errorf("unable to write csv header: %w", err)
	}
	for _, m := range medicines {
		if err := cw.Write(catalogRow(m)); err != nil {
			return fmt.Errorf("unable to write csv row for %s: %w", m.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CatalogXLSX writes the catalog as an Excel workbook with a single sheet.
func CatalogXLSX(w io.Writer, medicines []domain.Medicine) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", catalogSheet); err != nil {
		return fmt.Errorf("unable to name sheet: %w", err)
	}

	for i, h := range CatalogHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(catalogSheet, cell, h); err != nil {
			return err
		}
	}

	for i, m := range medicines {
		row := i + 2
		values := []interface{}{
			m.Name,
			m.Company,
			m.Category,
			m.PurchasePrice.InexactFloat64(),
			m.SalePrice.InexactFloat64(),
			m.Quantity,
			m.ExpiryDate,
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			if err := f.SetCellValue(catalogSheet, cell, v); err != nil {
				return fmt.Errorf("unable to write row for %s: %w", m.Name, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("unable to write workbook: %w", err)
	}
	return nil
}
