package grid

import (
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// Text layouts for date-formatted numeric cells. Millisecond precision survives
// even when the workbook's display format hides it.
const (
	xlsxDateTimeLayout = "2006-01-02 15:04:05.000"
	xlsxClockLayout    = "15:04:05.000"
)

var (
	excel1900Epoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	excel1904Epoch = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// readXLSXFile reads the active worksheet of the workbook at path.
func readXLSXFile(path string) (*Grid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readWorkbook(f)
}

// ReadXLSX reads the active worksheet of a workbook stream.
func ReadXLSX(r io.Reader) (*Grid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readWorkbook(f)
}

func readWorkbook(f *excelize.File) (*Grid, error) {
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if err := restoreDateCells(f, sheet, rows); err != nil {
		return nil, err
	}
	return &Grid{Sheet: sheet, Rows: rows}, nil
}

// restoreDateCells replaces the display text of date and time formatted numeric
// cells with the full-precision value of their serial number. A timestamp shown
// as "14:00" keeps the milliseconds stored in the cell.
func restoreDateCells(f *excelize.File, sheet string, rows [][]string) error {
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return err
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	dateStyles := make(map[int]bool)
	for r := range min(len(rows), len(raw)) {
		for c := range min(len(rows[r]), len(raw[r])) {
			if raw[r][c] == rows[r][c] {
				continue
			}
			serial, err := strconv.ParseFloat(raw[r][c], 64)
			if err != nil || serial < 0 {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			styleID, err := f.GetCellStyle(sheet, axis)
			if err != nil {
				return err
			}
			isDate, seen := dateStyles[styleID]
			if !seen {
				isDate = dateStyle(f, styleID)
				dateStyles[styleID] = isDate
			}
			if isDate {
				rows[r][c] = serialText(serial, date1904)
			}
		}
	}
	return nil
}

func dateStyle(f *excelize.File, styleID int) bool {
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return dateFormatCode(*style.CustomNumFmt)
	}
	switch {
	case style.NumFmt >= 14 && style.NumFmt <= 22:
		return true
	case style.NumFmt >= 45 && style.NumFmt <= 47:
		return true
	}
	return false
}

// dateFormatCode reports whether a custom number format renders a date or time.
// Quoted literals, escaped characters and bracketed colour or locale tags are
// ignored; elapsed-time brackets such as [h] count.
func dateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	var bracket strings.Builder
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case inQuote:
			inQuote = ch != '"'
		case inBracket:
			if ch == ']' {
				inBracket = false
				if tag := strings.ToLower(bracket.String()); strings.Trim(tag, "hms") == "" {
					b.WriteString(tag)
				}
				bracket.Reset()
			} else {
				bracket.WriteByte(ch)
			}
		case ch == '"':
			inQuote = true
		case ch == '[':
			inBracket = true
		case ch == '\\':
			i++
		default:
			b.WriteByte(ch)
		}
	}
	return strings.ContainsAny(strings.ToLower(b.String()), "ydmhs")
}

// serialText renders an Excel serial date. excelize.ExcelDateToTime rounds to
// whole seconds, so the conversion keeps milliseconds itself. Serials below one
// day are times of day.
func serialText(serial float64, date1904 bool) string {
	epoch := excel1900Epoch
	if date1904 {
		epoch = excel1904Epoch
	}
	ms := time.Duration(math.Round(serial * 24 * 60 * 60 * 1000))
	t := epoch.Add(ms * time.Millisecond)
	if serial < 1 {
		return t.Format(xlsxClockLayout)
	}
	return t.Format(xlsxDateTimeLayout)
}

// WriteXLSX writes the grid as a single-sheet workbook. Cells holding a plain number
// are stored as numeric cells so frame and offset columns stay numeric for
// downstream tools; everything else is stored as text.
func WriteXLSX(w io.Writer, g *Grid) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := defaultSheet
	if g.Sheet != "" && g.Sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, g.Sheet); err != nil {
			return err
		}
		sheet = g.Sheet
	}

	for i, row := range g.Rows {
		if len(row) == 0 {
			continue
		}
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = cellValue(v)
		}
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, axis, &cells); err != nil {
			return err
		}
	}

	return f.Write(w)
}

// cellValue converts canonical decimal text to a float64 and leaves any other
// text (including "1.50" or "007") as a string so it round-trips unchanged.
func cellValue(v string) any {
	if v == "" {
		return nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || strconv.FormatFloat(n, 'f', -1, 64) != v {
		return v
	}
	return n
}
