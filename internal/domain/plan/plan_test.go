package plan_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planfab/aps-engine/internal/domain/plan"
)

func TestQuantity_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int64
	}{
		{"plain number", `200`, 200},
		{"numeric string", `"200"`, 200},
		{"float string from spreadsheet", `"200.0"`, 200},
		{"float number", `200.0`, 200},
		{"null", `null`, 0},
		{"empty string", `""`, 0},
		{"garbage coerces to zero", `"n/a"`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q plan.Quantity
			err := json.Unmarshal([]byte(tt.input), &q)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, q.Int64())
		})
	}
}

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	expected := time.Date(2026, 8, 21, 8, 30, 0, 0, time.Local)

	tests := []struct {
		name  string
		input string
	}{
		{"iso with T", `"2026-08-21T08:30:00"`},
		{"plain datetime", `"2026-08-21 08:30:00"`},
		{"datetime without seconds", `"2026-08-21 08:30"`},
		{"slash datetime", `"2026/08/21 08:30:00"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts plan.Timestamp
			err := json.Unmarshal([]byte(tt.input), &ts)

			require.NoError(t, err)
			assert.True(t, expected.Equal(ts.Time), "got %s", ts.Time)
		})
	}
}

func TestTimestamp_UnmarshalJSON_Invalid(t *testing.T) {
	var ts plan.Timestamp
	err := json.Unmarshal([]byte(`"not a date"`), &ts)

	require.NoError(t, err)
	assert.True(t, ts.IsZero())
}

func TestPlanRow_IsEmpty(t *testing.T) {
	assert.True(t, plan.PlanRow{}.IsEmpty())
	assert.True(t, plan.PlanRow{WorkOrderNr: "  "}.IsEmpty())
	assert.False(t, plan.PlanRow{WorkOrderNr: "WO-1"}.IsEmpty())
	assert.False(t, plan.PlanRow{QuantityTotal: 10}.IsEmpty())
	assert.False(t, plan.PlanRow{ArticleNr: "利群（硬）"}.IsEmpty())
}

func TestSplitMachineCodes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"single code", "C11", []string{"C11"}},
		{"comma separated", "C11,C12,C13", []string{"C11", "C12", "C13"}},
		{"semicolon separated", "C11;C12", []string{"C11", "C12"}},
		{"mixed separators with spaces", "C11, C12; C13", []string{"C11", "C12", "C13"}},
		{"trailing separator", "C11,C12,", []string{"C11", "C12"}},
		{"empty", "", nil},
		{"whitespace only", "  ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, plan.SplitMachineCodes(tt.input))
		})
	}
}
