package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"go.uber.org/multierr"

	"StockScreener/internal/model"
)

const (
	ResultsSheet = "Matching Stocks"
	DebugSheet   = "Debug Stocks"
	DumpSheet    = "Dump"
)

// ResultHeader is the column layout of the results report.
var ResultHeader = []string{"Symbol", "Name", "Current Price", "200-Period EMA", "MACD", "Signal"}

// DebugHeader extends ResultHeader with the rule predicates.
var DebugHeader = append(append([]string{}, ResultHeader...),
	"Price Above EMA", "MACD Below Signal (Prev)", "MACD Above Signal (Last)", "MACD And Signal Negative")

var columnWidths = []float64{10, 25, 15, 20, 10, 10}

// Sink persists the outcome of a scan.
type Sink interface {
	WriteResults(results []model.SignalResult) (string, error)
	WriteDebug(diags []model.Diagnostic) (string, error)
	Dump(name string, header []string, rows [][]any) (string, error)
}

// ExcelSink writes xlsx workbooks into Dir.
type ExcelSink struct {
	Dir string
	Now func() time.Time
}

// NewExcelSink creates a sink writing into dir.
func NewExcelSink(dir string) *ExcelSink {
	return &ExcelSink{Dir: dir, Now: time.Now}
}

// ResultsPath is the results workbook path for the given day.
func (s *ExcelSink) ResultsPath(day time.Time) string {
	return filepath.Join(s.Dir, "matching_stocks-"+day.Format("2006-01-02")+".xlsx")
}

// DebugPath is the debug workbook path for the given day.
func (s *ExcelSink) DebugPath(day time.Time) string {
	return filepath.Join(s.Dir, "debug-report--"+day.Format("2006-01-02")+".xlsx")
}

func (s *ExcelSink) WriteResults(results []model.SignalResult) (string, error) {
	rows := make([][]any, 0, len(results))
	for _, r := range results {
		rows = append(rows, resultRow(r))
	}
	path := s.ResultsPath(s.now())
	if err := s.write(path, ResultsSheet, ResultHeader, rows, true); err != nil {
		return "", err
	}
	log.Infof("exported %d results to %s", len(results), path)
	return path, nil
}

func (s *ExcelSink) WriteDebug(diags []model.Diagnostic) (string, error) {
	rows := make([][]any, 0, len(diags))
	for _, d := range diags {
		row := resultRow(d.SignalResult)
		row = append(row, d.PriceAboveEMA, d.MACDBelowSignalPrev, d.MACDAboveSignalLast, d.MACDAndSignalNegative)
		rows = append(rows, row)
	}
	path := s.DebugPath(s.now())
	if err := s.write(path, DebugSheet, DebugHeader, rows, true); err != nil {
		return "", err
	}
	log.Infof("exported %d diagnostics to %s", len(diags), path)
	return path, nil
}

// Dump writes arbitrary rows to {Dir}/{name}.xlsx without styling.
func (s *ExcelSink) Dump(name string, header []string, rows [][]any) (string, error) {
	path := filepath.Join(s.Dir, name+".xlsx")
	if err := s.write(path, DumpSheet, header, rows, false); err != nil {
		return "", err
	}
	return path, nil
}

func resultRow(r model.SignalResult) []any {
	return []any{r.Symbol, r.Name, r.CurrentPrice, r.EMA200, r.MACD.MACD, r.MACD.Signal}
}

func (s *ExcelSink) write(path, sheet string, header []string, rows [][]any, styled bool) (err error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if styled {
		if err := applyLayout(f, sheet, len(header), len(rows)); err != nil {
			return fmt.Errorf("format sheet: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// applyLayout styles the header row and first column, formats the price and
// indicator columns and sets the column widths.
func applyLayout(f *excelize.File, sheet string, cols, rows int) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFFFCC"}},
	})
	if err != nil {
		return err
	}
	currency := "$#,##0.00"
	currencyStyle, err := f.NewStyle(&excelize.Style{
		CustomNumFmt: &currency,
		Alignment:    &excelize.Alignment{Horizontal: "right", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	number := "#,##0.00"
	numberStyle, err := f.NewStyle(&excelize.Style{
		CustomNumFmt: &number,
		Alignment:    &excelize.Alignment{Horizontal: "right", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	lastCol, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}

	if rows > 0 {
		last := rows + 1
		ranges := []struct {
			from, to string
			style    int
		}{
			{"A", "A", headerStyle},
			{"C", "D", currencyStyle},
			{"E", "F", numberStyle},
		}
		for _, r := range ranges {
			if err := f.SetCellStyle(sheet, fmt.Sprintf("%s2", r.from), fmt.Sprintf("%s%d", r.to, last), r.style); err != nil {
				return err
			}
		}
	}

	for i, w := range columnWidths {
		if i >= cols {
			break
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, w); err != nil {
			return err
		}
	}
	return nil
}

func (s *ExcelSink) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
