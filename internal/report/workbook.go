// =============================================================================
// File Processing Engine - Report Workbook Export
// =============================================================================
//
// This module tabulates processed-file reports into an XLSX workbook for
// operators who review daily results in a spreadsheet. One row per report.
//
// SHEET LAYOUT:
//   A: Report file | B: Clients | C: Sellers | D: Biggest sale | E: Least active seller
//
// =============================================================================

package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// SheetName is the name of the single worksheet in the export.
const SheetName = "Reports"

// workbookHeader is the first row of the sheet.
var workbookHeader = []interface{}{"Report", "Clients", "Sellers", "Biggest Sale", "Least Active Seller"}

// WriteWorkbook writes entries as an XLSX workbook to w.
//
// PARAMETERS:
//   - w: The destination of the workbook bytes.
//   - entries: The reports to export, in row order.
//
// RETURNS:
//   - An error if the workbook cannot be built or written.
func WriteWorkbook(w io.Writer, entries []Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := workbookHeader
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		top, least := None, None
		if e.Summary.HasSales {
			top, least = e.Summary.TopSaleID, e.Summary.LeastActiveSeller
		}

		row := []interface{}{e.File, e.Summary.ClientCount, e.Summary.SellerCount, top, least}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
