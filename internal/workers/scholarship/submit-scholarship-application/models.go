// internal/workers/scholarship/submit-scholarship-application/models.go
package submitscholarshipapplication

type Input struct {
	Applicant string `json:"applicant"`
	Score     uint64 `json:"score"`
	AuthToken string `json:"authToken"`
}

type Output struct {
	ApplicationID uint64 `json:"applicationId"`
	Status        string `json:"status"`
}
