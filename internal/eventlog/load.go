package eventlog

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ricki-pierce/integrating4Fears/internal/errors"
	"github.com/ricki-pierce/integrating4Fears/internal/grid"
	"github.com/ricki-pierce/integrating4Fears/internal/logger"
	"github.com/ricki-pierce/integrating4Fears/internal/timestamp"
)

var trialCellPattern = regexp.MustCompile(`(?i)^(?:trial\s*)?(\d+)(?:\.0*)?$`)

// Load reads the behavioral log at path (CSV or XLSX) into a store. Timestamps are
// interpreted with parser. A log that cannot be read or lacks required columns is
// an error; individual malformed rows are dropped with a debug diagnostic.
func Load(path string, parser *timestamp.Parser) (*Store, error) {
	g, err := grid.Load(path)
	if err != nil {
		return nil, err
	}
	store, err := FromGrid(g, parser)
	if err != nil {
		return nil, errors.New(err).Component("eventlog").FileContext(path).Build()
	}
	return store, nil
}

// FromGrid builds a store from a log grid whose first non-empty row is the header.
func FromGrid(g *grid.Grid, parser *timestamp.Parser) (*Store, error) {
	if parser == nil {
		parser = timestamp.NewParser(nil)
	}
	log := GetLogger()

	headerRow := -1
	for r := range g.Len() {
		if !blankRow(g.Row(r)) {
			headerRow = r
			break
		}
	}
	if headerRow < 0 {
		return nil, errors.Newf("log contains no header row").
			Component("eventlog").
			Category(errors.CategoryValidation).
			Build()
	}

	cols, err := MapColumns(g.Row(headerRow))
	if err != nil {
		return nil, err
	}

	var records []EventRecord
	dropped := 0
	for r := headerRow + 1; r < g.Len(); r++ {
		row := g.Row(r)
		if blankRow(row) {
			continue
		}
		rec, ok := parseRecord(g, r, cols, parser)
		if !ok {
			dropped++
			log.Debug("dropping log row without a usable trial number",
				logger.Int("row", r+1),
				logger.String("trial", g.Cell(r, cols.Trial)))
			continue
		}
		records = append(records, rec)
	}

	log.Info("loaded event log",
		logger.Int("records", len(records)),
		logger.Int("dropped", dropped))

	return NewStore(records), nil
}

func parseRecord(g *grid.Grid, r int, cols ColumnMap, parser *timestamp.Parser) (EventRecord, bool) {
	trial, ok := ParseTrial(g.Cell(r, cols.Trial))
	if !ok {
		return EventRecord{}, false
	}

	rec := EventRecord{
		Row:          r + 1,
		Subject:      strings.TrimSpace(g.Cell(r, cols.Subject)),
		Task:         strings.TrimSpace(g.Cell(r, cols.Task)),
		Trial:        trial,
		RawTimestamp: g.Cell(r, cols.Timestamp),
		Label:        strings.TrimSpace(g.Cell(r, cols.Event)),
	}
	rec.Timestamp, rec.TimestampErr = parser.ParseInstant(rec.RawTimestamp)

	if cols.Duration >= 0 {
		rec.DurationMs = parseDuration(g.Cell(r, cols.Duration))
	}
	return rec, true
}

// ParseTrial reads a trial cell such as "3", "3.0" or "Trial 3".
func ParseTrial(cell string) (int, bool) {
	m := trialCellPattern.FindStringSubmatch(strings.TrimSpace(cell))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func parseDuration(cell string) *int {
	s := strings.TrimSpace(cell)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	ms := int(math.Round(f))
	return &ms
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
