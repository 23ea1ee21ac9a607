package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"afi/internal/dataset/models"
)

// RequiredColumns must all be present in the header.
var RequiredColumns = []string{"period", "state_canonical", "district_clean", "afi_composite_score"}

// OptionalColumns are read when present.
var OptionalColumns = []string{
	"pincode",
	"enrol_total",
	"demo_total",
	"bio_total",
	"aadhaar_base",
	"age_mismatch_score",
	"cluster_id",
	"cluster_name",
}

// Row is one parsed input row keyed by column name.
type Row map[string]string

// Parse reads CSV with a header row and validates it into records. Quotes
// are read leniently so one stray quote costs at most its own row.
func Parse(r io.Reader) ([]models.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &MissingColumnsError{Columns: append([]string(nil), RequiredColumns...)}
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var rows []Row
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		row := make(Row, len(header))
		for i, name := range header {
			if i < len(fields) {
				row[name] = fields[i]
			}
		}
		rows = append(rows, row)
	}
	return Validate(header, rows)
}

// Validate checks the header and converts rows to records. Rows missing a
// string key are dropped. An unparseable score becomes 0; other unparseable
// numerics become absent.
func Validate(header []string, rows []Row) ([]models.Record, error) {
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	records := make([]models.Record, 0, len(rows))
	for _, row := range rows {
		period, state, district := row["period"], row["state_canonical"], row["district_clean"]
		if period == "" || state == "" || district == "" {
			continue
		}
		records = append(records, models.Record{
			Period:            period,
			StateCanonical:    state,
			DistrictClean:     district,
			Pincode:           optionalString(row["pincode"]),
			AFICompositeScore: parseScore(row["afi_composite_score"]),
			EnrolTotal:        parseCount(row["enrol_total"]),
			DemoTotal:         parseCount(row["demo_total"]),
			BioTotal:          parseCount(row["bio_total"]),
			AadhaarBase:       parseCount(row["aadhaar_base"]),
			AgeMismatchScore:  parseReal(row["age_mismatch_score"]),
			ClusterID:         parseClusterID(row["cluster_id"]),
			ClusterName:       optionalString(row["cluster_name"]),
		})
	}
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}
	return records, nil
}

func checkHeader(header []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, c := range RequiredColumns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Columns: missing}
	}
	return nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// parseScore reads the required score. Unparseable values and negatives
// become 0: the score is a non-negative index.
func parseScore(s string) float64 {
	v, ok := parseFinite(s)
	if !ok || v < 0 {
		return 0
	}
	return v
}

func parseReal(s string) *float64 {
	v, ok := parseFinite(s)
	if !ok {
		return nil
	}
	return &v
}

// parseCount accepts integers and integral-looking floats such as "1234.0".
func parseCount(s string) *int64 {
	v, ok := parseInteger(s)
	if !ok || v < 0 {
		return nil
	}
	return &v
}

func parseClusterID(s string) *int {
	v, ok := parseInteger(s)
	if !ok || v < math.MinInt32 || v > math.MaxInt32 {
		return nil
	}
	id := int(v)
	return &id
}

func parseInteger(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, true
	}
	f, ok := parseFinite(s)
	if !ok || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func parseFinite(s string) (float64, bool) {
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
