// internal/workers/scholarship/approve-scholarship-application/models.go
package approvescholarshipapplication

type Input struct {
	ApplicationID uint64 `json:"applicationId"`
	Approver      string `json:"approver"`
	AuthToken     string `json:"authToken"`
}

type Output struct {
	ApplicationID uint64 `json:"applicationId"`
	Approved      bool   `json:"approved"`
	AwardAmount   uint64 `json:"awardAmount"`
	Tier          string `json:"tier"`
	Status        string `json:"status"`
}
