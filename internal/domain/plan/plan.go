package plan

import (
	"strconv"
	"strings"
	"time"
)

// MachineType classifies which side of the line a plan row targets
type MachineType string

const (
	// MachineTypeMaker - cigarette maker/packer machine (卷包机)
	MachineTypeMaker MachineType = "MAKER"

	// MachineTypeFeeder - tobacco feeder machine (喂丝机)
	MachineTypeFeeder MachineType = "FEEDER"
)

// Quantity is an integer quantity that tolerates sloppy upstream data.
// Spreadsheet extractions deliver quantities as numbers or numeric strings;
// anything non-numeric decodes to zero rather than failing the whole batch.
type Quantity int64

// UnmarshalJSON accepts a JSON number, a numeric string, or null
func (q *Quantity) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*q = 0
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*q = Quantity(n)
		return nil
	}
	// Excel often delivers integers as floats ("200.0")
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*q = Quantity(int64(f))
		return nil
	}
	*q = 0
	return nil
}

// Int64 returns the quantity as a plain integer
func (q Quantity) Int64() int64 { return int64(q) }

// Timestamp wraps time.Time and decodes either ISO-8601 strings or the
// plant's plain "2006-01-02 15:04:05" format. Times are plant-local.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
}

// UnmarshalJSON accepts the supported timestamp layouts or null
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			t.Time = parsed
			return nil
		}
	}
	// Unix epoch seconds as a last resort
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		t.Time = time.Unix(n, 0)
		return nil
	}
	t.Time = time.Time{}
	return nil
}

// PlanRow is a raw ten-day (decade) plan row as extracted from the
// operational spreadsheet. Rows are created by the external importer and
// never mutated by the pipeline.
type PlanRow struct {
	WorkOrderNr   string    `json:"work_order_nr"`
	ArticleNr     string    `json:"article_nr"`
	PackageType   string    `json:"package_type"`
	Specification string    `json:"specification"`
	QuantityTotal Quantity  `json:"quantity_total"`
	FinalQuantity Quantity  `json:"final_quantity"`
	MakerCode     string    `json:"maker_code"`
	FeederCode    string    `json:"feeder_code"`
	PlannedStart  Timestamp `json:"planned_start"`
	PlannedEnd    Timestamp `json:"planned_end"`
}

// IsEmpty reports whether the row carries no usable data: work order,
// article, and quantity simultaneously absent
func (r PlanRow) IsEmpty() bool {
	return strings.TrimSpace(r.WorkOrderNr) == "" &&
		strings.TrimSpace(r.ArticleNr) == "" &&
		r.QuantityTotal == 0
}

// PreprocessedPlan is a PlanRow with derived fields filled in by the
// preprocessor stage
type PreprocessedPlan struct {
	WorkOrderNr    string
	ArticleNr      string
	ProductCode    string
	PackageType    string
	Specification  string
	QuantityTotal  int64
	FinalQuantity  int64
	PlanQuantity   int64
	MakerCode      string
	FeederCode     string
	MachineType    MachineType
	IsMultiMachine bool
	PlannedStart   time.Time
	PlannedEnd     time.Time
}

// MakerCodes splits the maker code list on "," or ";" and trims each entry.
// A single maker yields a one-element slice; an empty code yields nil.
func (p PreprocessedPlan) MakerCodes() []string {
	return SplitMachineCodes(p.MakerCode)
}

// MergedPlan is a PreprocessedPlan or the fusion of several compatible ones
type MergedPlan struct {
	WorkOrderNr   string
	ArticleNr     string
	ProductCode   string
	PackageType   string
	Specification string
	QuantityTotal int64
	FinalQuantity int64
	MakerCode     string
	FeederCode    string
	PlannedStart  time.Time
	PlannedEnd    time.Time

	IsMerged    bool
	MergedFrom  []string
	MergedCount int
}

// MakerCodes splits the maker code list on "," or ";" and trims each entry
func (m MergedPlan) MakerCodes() []string {
	return SplitMachineCodes(m.MakerCode)
}

// SplitMachineCodes splits a machine code list on "," or ";", trimming
// whitespace and dropping empty entries
func SplitMachineCodes(codes string) []string {
	if strings.TrimSpace(codes) == "" {
		return nil
	}
	normalized := strings.ReplaceAll(codes, ";", ",")
	parts := strings.Split(normalized, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
