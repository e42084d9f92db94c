package grid

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ricki-pierce/integrating4Fears/internal/errors"
)

func TestInsertColumn(t *testing.T) {
	t.Parallel()

	g := New([][]string{
		{"Frame", "Time", "X"},
		{"1"},
		{},
		{"2", "0.5", "1.0"},
	})

	g.InsertColumn(0)
	g.InsertColumn(3)

	assert.Equal(t, []string{"", "Frame", "Time", "", "X"}, g.Row(0))
	assert.Equal(t, []string{"", "1"}, g.Row(1), "short rows are not padded")
	assert.Empty(t, g.Row(2))
	assert.Equal(t, []string{"", "2", "0.5", "", "1.0"}, g.Row(3))
}

func TestSetCellPads(t *testing.T) {
	t.Parallel()

	g := New([][]string{{"a"}, {}})
	g.SetCell(1, 3, "x")
	g.SetCell(5, 0, "ignored")

	assert.Equal(t, []string{"", "", "", "x"}, g.Row(1))
	assert.Equal(t, "x", g.Cell(1, 3))
	assert.Empty(t, g.Cell(9, 9))
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, 4, g.Width())
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	g := New([][]string{{"a", "b"}})
	c := g.Clone()
	c.SetCell(0, 0, "z")

	assert.Equal(t, "a", g.Cell(0, 0))
	assert.Equal(t, "z", c.Cell(0, 0))
}

func TestFormatFor(t *testing.T) {
	t.Parallel()

	tests := map[string]Format{
		"Reach_Trial3_S002.xlsx": FormatXLSX,
		"REACH.XLSX":             FormatXLSX,
		"log.csv":                FormatCSV,
		"data.trc":               FormatUnknown,
		"noext":                  FormatUnknown,
	}
	for name, want := range tests {
		assert.Equal(t, want, FormatFor(name), name)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	t.Parallel()

	input := "\xEF\xBB\xBFFrame,Time\n1,0.000\n2,\"0,5\"\nshort\n"
	g, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "Frame", g.Cell(0, 0), "byte order mark is stripped")
	assert.Equal(t, "0,5", g.Cell(2, 1))
	assert.Equal(t, []string{"short"}, g.Row(3))

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, g))
	assert.Equal(t, "Frame,Time\n1,0.000\n2,\"0,5\"\nshort\n", buf.String())
}

func TestXLSXRoundTrip(t *testing.T) {
	t.Parallel()

	g := &Grid{Sheet: "Data", Rows: [][]string{
		{"Event", "Frame", "Time", "Global Time Synced"},
		{},
		{"QTM Start Command Sent", "1", "0", "14:00:00.000"},
		{"", "2", "0.5", "14:00:00.500"},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, g))

	got, err := ReadXLSX(&buf)
	require.NoError(t, err)

	assert.Equal(t, "Data", got.Sheet)
	assert.Equal(t, "Event", got.Cell(0, 0))
	assert.Equal(t, "QTM Start Command Sent", got.Cell(2, 0))
	assert.Equal(t, "0.5", got.Cell(3, 2))
	assert.Equal(t, "14:00:00.500", got.Cell(3, 3))
}

func TestXLSXDateCellsKeepMilliseconds(t *testing.T) {
	t.Parallel()

	stamp := time.Date(2025, time.March, 4, 14, 0, 0, 480*int(time.Millisecond), time.UTC)
	day := float64(24 * time.Hour)
	dateSerial := float64(stamp.Sub(excel1900Epoch)) / day
	clockSerial := float64(14*time.Hour+480*time.Millisecond) / day

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Sheet1"

	dateTime, err := f.NewStyle(&excelize.Style{NumFmt: 22})
	require.NoError(t, err)
	clock, err := f.NewStyle(&excelize.Style{NumFmt: 20})
	require.NoError(t, err)
	customFmt := "yyyy-mm-dd hh:mm"
	custom, err := f.NewStyle(&excelize.Style{CustomNumFmt: &customFmt})
	require.NoError(t, err)
	decimals, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	require.NoError(t, err)

	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Timestamp", "Clock", "Custom", "Offset"}))
	for col, c := range []struct {
		value float64
		style int
	}{{dateSerial, dateTime}, {clockSerial, clock}, {dateSerial, custom}, {0.5, decimals}} {
		axis, err := excelize.CoordinatesToCellName(col+1, 2)
		require.NoError(t, err)
		require.NoError(t, f.SetCellFloat(sheet, axis, c.value, -1, 64))
		require.NoError(t, f.SetCellStyle(sheet, axis, axis, c.style))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	g, err := ReadXLSX(&buf)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-04 14:00:00.480", g.Cell(1, 0))
	assert.Equal(t, "14:00:00.480", g.Cell(1, 1))
	assert.Equal(t, "2025-03-04 14:00:00.480", g.Cell(1, 2))
	assert.Equal(t, "0.50", g.Cell(1, 3), "number formats keep their display text")
}

func TestDateFormatCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code string
		want bool
	}{
		{"yyyy-mm-dd hh:mm", true},
		{"[h]:mm:ss.000", true},
		{"[$-409]h:mm AM/PM", true},
		{"0.000", false},
		{"#,##0.00", false},
		{`0.0 "ms"`, false},
		{`0.00\s`, false},
		{"[Red]0.00", false},
		{"General", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, dateFormatCode(tt.code), tt.code)
	}
}

func TestSerialText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "00:00:01.500", serialText(1.5/86400, false))
	assert.Equal(t, "1900-01-01 12:00:00.000", serialText(2.5, false))
	assert.Equal(t, "1904-01-02 00:00:00.000", serialText(1, true))
}

func TestCellValue(t *testing.T) {
	t.Parallel()

	assert.Nil(t, cellValue(""))
	assert.Equal(t, 0.5, cellValue("0.5"))
	assert.Equal(t, float64(12), cellValue("12"))
	assert.Equal(t, "1.50", cellValue("1.50"))
	assert.Equal(t, "007", cellValue("007"))
	assert.Equal(t, "14:00:00.000", cellValue("14:00:00.000"))
}

func TestLoadAndSave(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "in.csv")
	require.NoError(t, os.WriteFile(src, []byte("a,b\n1,2\n"), 0o600))

	g, err := Load(src)
	require.NoError(t, err)
	g.SetCell(1, 1, "3")

	dst := filepath.Join(dir, "out.csv")
	require.NoError(t, Save(g, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,3\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temporary files are left behind")

	xdst := filepath.Join(dir, "out.xlsx")
	require.NoError(t, Save(g, xdst))
	back, err := Load(xdst)
	require.NoError(t, err)
	assert.Equal(t, g.Rows, back.Rows)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileIO))

	_, err = Load(filepath.Join(dir, "capture.trc"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))

	err = Save(New(nil), filepath.Join(dir, "out.txt"))
	require.Error(t, err)
}
