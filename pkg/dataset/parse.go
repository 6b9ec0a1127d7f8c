package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jengatower/pkg/errors"
)

// Row is one record of a tabular source, keyed by lowercased column name.
type Row map[string]string

// Column names of the two tables.
const (
	ColCountry    = "country"
	ColCode       = "country_iso_code"
	ColRegion     = "macro_region"
	ColCompanies  = "number_of_companies"
	ColCentrality = "mean_betweeness_centrality"
	ColPageRank   = "mean_page_rank"

	ColSource       = "source"
	ColTarget       = "target"
	ColValue        = "value"
	ColSourceRegion = "source_macro_region"
	ColTargetRegion = "target_macro_region"
)

// ReadCSV reads a headed CSV document into rows. Header names are trimmed
// and lowercased; a UTF-8 byte order mark is ignored. Short rows leave the
// missing columns empty.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		row := make(Row, len(header))
		for i, h := range header {
			if i < len(rec) {
				row[h] = rec[i]
			}
		}
		rows = append(rows, row)
	}
}

func normalizeKey(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// rowLogger carries the context every sanitation warning is tagged with.
type rowLogger struct {
	log    *log.Logger
	source string
}

func (l rowLogger) warn(line int, msg string, kv ...any) {
	l.log.Warn(msg, append([]any{"source", l.source, "line", line, "code", errors.ErrCodeInvalidRow}, kv...)...)
}

// parseNumber returns ok=false for empty, unparsable and non-finite input.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseCountries sanitizes metric rows. It returns the kept records and the
// number of rows dropped for a missing or duplicate identity.
func ParseCountries(rows []Row, source string, logger *log.Logger) ([]CountryRecord, int) {
	rl := rowLogger{log: orDiscard(logger), source: source}
	seen := make(map[string]bool, len(rows))
	out := make([]CountryRecord, 0, len(rows))
	dropped := 0

	for i, row := range rows {
		line := i + 2
		code := normalizeKey(row[ColCode])
		if code == "" {
			rl.warn(line, "dropping country row without ISO code", "country", row[ColCountry])
			dropped++
			continue
		}
		if seen[code] {
			rl.warn(line, "dropping duplicate country row", "iso", code)
			dropped++
			continue
		}
		seen[code] = true
		if err := errors.ValidateCountryCode(code); err != nil {
			rl.warn(line, "unusual ISO code", "iso", code, "err", errors.UserMessage(err))
		}

		rec := CountryRecord{
			Code:   code,
			Name:   strings.TrimSpace(row[ColCountry]),
			Region: ParseRegion(row[ColRegion]),
		}
		if rec.Name == "" {
			rl.warn(line, "country row has no display name", "iso", code)
		}
		if rec.Region == RegionUnknown {
			rl.warn(line, "unknown macro region", "iso", code, "region", row[ColRegion])
		}

		companies, ok := parseNumber(row[ColCompanies])
		switch {
		case !ok:
			rl.warn(line, "invalid company count, using 0", "iso", code, "value", row[ColCompanies])
			companies = 0
		case companies < 0:
			rl.warn(line, "negative company count clamped to 0", "iso", code, "value", companies)
			companies = 0
		}
		rec.Companies = int(math.Round(companies))

		centrality, ok := parseNumber(row[ColCentrality])
		switch {
		case !ok:
			rl.warn(line, "invalid centrality, using 0", "iso", code, "value", row[ColCentrality])
			centrality = 0
		case centrality < 0 || centrality > 1:
			rl.warn(line, "centrality clamped to [0,1]", "iso", code, "value", centrality)
			centrality = math.Min(math.Max(centrality, 0), 1)
		}
		rec.Centrality = centrality

		pagerank, ok := parseNumber(row[ColPageRank])
		switch {
		case !ok:
			rl.warn(line, "invalid pagerank, using 0", "iso", code, "value", row[ColPageRank])
			pagerank = 0
		case pagerank < 0:
			rl.warn(line, "negative pagerank clamped to 0", "iso", code, "value", pagerank)
			pagerank = 0
		}
		rec.PageRank = pagerank

		out = append(out, rec)
	}
	return out, dropped
}

// ParseLinks sanitizes link rows. Rows missing either endpoint are dropped.
// A missing or unparsable value defaults to 1; a negative one is clamped
// to 0.
func ParseLinks(rows []Row, source string, logger *log.Logger) ([]LinkRecord, int) {
	rl := rowLogger{log: orDiscard(logger), source: source}
	out := make([]LinkRecord, 0, len(rows))
	dropped := 0

	for i, row := range rows {
		line := i + 2
		l := LinkRecord{
			Source:       normalizeKey(row[ColSource]),
			Target:       normalizeKey(row[ColTarget]),
			SourceRegion: ParseRegion(row[ColSourceRegion]),
			TargetRegion: ParseRegion(row[ColTargetRegion]),
		}
		if l.Source == "" || l.Target == "" {
			rl.warn(line, "dropping link row without both endpoints", "source_iso", l.Source, "target_iso", l.Target)
			dropped++
			continue
		}

		v, ok := parseNumber(row[ColValue])
		switch {
		case !ok:
			if strings.TrimSpace(row[ColValue]) != "" {
				rl.warn(line, "invalid link value, using 1", "value", row[ColValue])
			}
			v = 1
		case v < 0:
			rl.warn(line, "negative link value clamped to 0", "value", v)
			v = 0
		}
		l.Value = v
		out = append(out, l)
	}
	return out, dropped
}
