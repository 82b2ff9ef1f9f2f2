package analytics

import "trafficlens/internal/report"

// RankedRecord is one entry of a top referrers or most visited pages list.
type RankedRecord struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Project maps ranked rows into records in the order the service returned them.
// The service already sorted and capped the rows, so nothing is re-sorted,
// merged or filled in.
func Project(rows []report.RankedRow) []RankedRecord {
	records := make([]RankedRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, RankedRecord{
			Label: row.Label,
			Value: row.Value,
		})
	}
	return records
}
