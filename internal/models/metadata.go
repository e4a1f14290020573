package models

import "time"

// CarryForwardMetadata records which months have had their opening balance
// carried forward. A month is processed at most once; removing its entry is a
// deliberate reset, not an automatic retry.
type CarryForwardMetadata struct {
	ProcessedMonths map[string]bool `json:"processedMonths"`
	LastUpdated     time.Time       `json:"lastUpdated"`
}
