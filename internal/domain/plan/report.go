package plan

// RowError records why a single input row was rejected or flagged.
// Row errors never abort the pipeline.
type RowError struct {
	RowIndex    int    `json:"row_index"`
	WorkOrderNr string `json:"work_order_nr"`
	Reason      string `json:"reason"`
}

// PreprocessReport is the preprocessor's result: the surviving rows plus
// an account of everything that was dropped or rejected
type PreprocessReport struct {
	Processed []PreprocessedPlan
	Errors    []RowError
	Rejected  int
	Dropped   int
}
