// Package models defines the district-month observation and the closed
// typology enumeration shared by the store, ingestion and analytics.
package models

// TableName is the backing table for records.
const TableName = "district_afi_data"

// Record is one district-month observation. Optional fields are nil when
// absent; absent values are excluded from sums and ratios, never coerced.
// Records are treated as immutable once produced by a store or the parser.
type Record struct {
	ID                string   `json:"id"`
	Period            string   `json:"period"`
	StateCanonical    string   `json:"state_canonical"`
	DistrictClean     string   `json:"district_clean"`
	Pincode           *string  `json:"pincode"`
	AFICompositeScore float64  `json:"afi_composite_score"`
	EnrolTotal        *int64   `json:"enrol_total"`
	DemoTotal         *int64   `json:"demo_total"`
	BioTotal          *int64   `json:"bio_total"`
	AadhaarBase       *int64   `json:"aadhaar_base"`
	AgeMismatchScore  *float64 `json:"age_mismatch_score"`
	ClusterID         *int     `json:"cluster_id"`
	ClusterName       *string  `json:"cluster_name"`
}

// DistrictKey is the composite (state, district) grouping key. Keys compare
// by exact string equality.
type DistrictKey struct {
	State    string
	District string
}

// Key returns the record's composite district key.
func (r Record) Key() DistrictKey {
	return DistrictKey{State: r.StateCanonical, District: r.DistrictClean}
}

// Typology returns the cluster label and whether one is present. An empty
// label counts as absent.
func (r Record) Typology() (string, bool) {
	if r.ClusterName == nil || *r.ClusterName == "" {
		return "", false
	}
	return *r.ClusterName, true
}

// NilRecordID is an identifier no stored record can carry.
const NilRecordID = "00000000-0000-0000-0000-000000000000"

// Filter selects rows for deletion as an id inequality.
type Filter struct {
	IDNot string
}

// AllRecords selects every row by excluding an impossible id.
func AllRecords() Filter {
	return Filter{IDNot: NilRecordID}
}

// Matches reports whether r is selected by f.
func (f Filter) Matches(r Record) bool {
	return r.ID != f.IDNot
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
