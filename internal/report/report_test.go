package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"StockScreener/internal/model"
)

var fixedDay = time.Date(2024, 5, 17, 18, 0, 0, 0, time.UTC)

func newTestSink(t *testing.T) *ExcelSink {
	t.Helper()
	s := NewExcelSink(filepath.Join(t.TempDir(), "output"))
	s.Now = func() time.Time { return fixedDay }
	return s
}

func readSheet(t *testing.T, path, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheet}, f.GetSheetList())
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return rows
}

var sample = []model.SignalResult{
	{Symbol: "ACME", Name: "Acme Corp", CurrentPrice: 65.8, EMA200: 63.03, MACD: model.MACDPoint{MACD: -1.72, Signal: -1.8}},
	{Symbol: "ZETA", Name: "Zeta Ltd", CurrentPrice: 12.5, EMA200: 11.9, MACD: model.MACDPoint{MACD: -0.1, Signal: -0.2}},
}

func TestWriteResults(t *testing.T) {
	s := newTestSink(t)
	path, err := s.WriteResults(sample)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir, "matching_stocks-2024-05-17.xlsx"), path)

	rows := readSheet(t, path, ResultsSheet)
	require.Len(t, rows, 3)
	assert.Equal(t, ResultHeader, rows[0])
	assert.Equal(t, "ACME", rows[1][0])
	assert.Equal(t, "Acme Corp", rows[1][1])
	assert.Equal(t, "65.8", rows[1][2])
	assert.Equal(t, "ZETA", rows[2][0])
}

func TestWriteResults_Formatting(t *testing.T) {
	s := newTestSink(t)
	path, err := s.WriteResults(sample)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	price, err := f.GetCellValue(ResultsSheet, "C2")
	require.NoError(t, err)
	assert.Equal(t, "$65.80", price)

	macd, err := f.GetCellValue(ResultsSheet, "E2")
	require.NoError(t, err)
	assert.Equal(t, "-1.72", macd)

	width, err := f.GetColWidth(ResultsSheet, "B")
	require.NoError(t, err)
	assert.Equal(t, 25.0, width)

	styleID, err := f.GetCellStyle(ResultsSheet, "A2")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
}

func TestWriteResults_Empty(t *testing.T) {
	s := newTestSink(t)
	path, err := s.WriteResults(nil)
	require.NoError(t, err)

	rows := readSheet(t, path, ResultsSheet)
	require.Len(t, rows, 1)
	assert.Equal(t, ResultHeader, rows[0])
}

func TestWriteDebug(t *testing.T) {
	s := newTestSink(t)
	diags := []model.Diagnostic{
		{SignalResult: sample[0], PriceAboveEMA: true, MACDBelowSignalPrev: true, MACDAboveSignalLast: true, MACDAndSignalNegative: true, Qualified: true},
		{SignalResult: sample[1], PriceAboveEMA: true},
	}
	path, err := s.WriteDebug(diags)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir, "debug-report--2024-05-17.xlsx"), path)

	rows := readSheet(t, path, DebugSheet)
	require.Len(t, rows, 3)
	assert.Equal(t, DebugHeader, rows[0])
	assert.Len(t, rows[0], 10)
	assert.Equal(t, "ZETA", rows[2][0])
	assert.Len(t, rows[2], 10)
}

func TestDump(t *testing.T) {
	s := newTestSink(t)
	path, err := s.Dump("ACME", []string{"t", "c"}, [][]any{{"2024-05-16", 1.5}, {"2024-05-17", 2.5}})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir, "ACME.xlsx"), path)

	rows := readSheet(t, path, DumpSheet)
	assert.Equal(t, [][]string{{"t", "c"}, {"2024-05-16", "1.5"}, {"2024-05-17", "2.5"}}, rows)
}

func TestWrite_UnwritableDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	s := NewExcelSink(filepath.Join(blocker, "output"))
	_, err := s.WriteResults(sample)
	assert.Error(t, err)
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	RenderTable(&buf, sample)

	out := buf.String()
	assert.Contains(t, out, "ACME")
	assert.Contains(t, out, "Acme Corp")
	assert.Contains(t, out, "$65.80")
	assert.Contains(t, out, "-1.72")
	assert.Contains(t, out, "ZETA")
}
