package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/planfab/aps-engine/pkg/utils"
)

func TestSplitShare(t *testing.T) {
	tests := []struct {
		name     string
		total    int64
		k        int64
		expected []int64
	}{
		{"even split", 300, 3, []int64{100, 100, 100}},
		{"remainder to first share", 301, 3, []int64{101, 100, 100}},
		{"remainder two to first share", 200, 3, []int64{68, 66, 66}},
		{"single machine", 200, 1, []int64{200}},
		{"zero total", 0, 3, []int64{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sum int64
			for i, want := range tt.expected {
				got := utils.SplitShare(tt.total, tt.k, i)
				assert.Equal(t, want, got, "share %d", i)
				sum += got
			}
			assert.Equal(t, tt.total, sum, "shares must sum back to the total")
		})
	}
}

func TestSplitShare_InvalidK(t *testing.T) {
	assert.Equal(t, int64(200), utils.SplitShare(200, 0, 0))
}
