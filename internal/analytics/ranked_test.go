package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"trafficlens/internal/analytics"
	"trafficlens/internal/report"
)

func TestProject(t *testing.T) {
	tests := []struct {
		name     string
		input    []report.RankedRow
		expected []analytics.RankedRecord
	}{
		{
			name:  "Keeps service order",
			input: []report.RankedRow{{Label: "ref1", Value: 10}, {Label: "ref2", Value: 3}},
			expected: []analytics.RankedRecord{
				{Label: "ref1", Value: 10},
				{Label: "ref2", Value: 3},
			},
		},
		{
			name:  "Does not re-sort or merge",
			input: []report.RankedRow{{Label: "b", Value: 1}, {Label: "a", Value: 5}, {Label: "b", Value: 1}},
			expected: []analytics.RankedRecord{
				{Label: "b", Value: 1},
				{Label: "a", Value: 5},
				{Label: "b", Value: 1},
			},
		},
		{
			name:     "Absent input",
			input:    nil,
			expected: []analytics.RankedRecord{},
		},
		{
			name:     "Empty input",
			input:    []report.RankedRow{},
			expected: []analytics.RankedRecord{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := analytics.Project(tt.input)
			assert.NotNil(t, result)
			assert.Equal(t, tt.expected, result)
		})
	}
}
