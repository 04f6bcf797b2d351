// internal/models/scholarship.go
package models

// Identity is an authenticated principal, e.g. a Keycloak subject or username.
type Identity string

// ApplicationRecord is a scholarship application as persisted in the ledger.
// A record with ID 0 is the "not found" sentinel.
type ApplicationRecord struct {
	ID          uint64   `json:"id"`
	Applicant   Identity `json:"applicant"`
	Score       uint64   `json:"score"`       // GPA x 100, 0..400
	SubmittedAt uint64   `json:"submittedAt"` // chain time, unix seconds
	Approved    bool     `json:"approved"`
	AwardAmount uint64   `json:"awardAmount"` // stroops
}

// Exists reports whether the record is a real application rather than the sentinel.
func (r ApplicationRecord) Exists() bool {
	return r.ID != 0
}

// AggregateStats summarizes every application in the ledger.
type AggregateStats struct {
	TotalApplications uint64 `json:"totalApplications"`
	ApprovedCount     uint64 `json:"approvedCount"`
	PendingCount      uint64 `json:"pendingCount"`
	TotalDisbursed    uint64 `json:"totalDisbursed"`
}
