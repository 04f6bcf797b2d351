// internal/workers/scholarship/get-scholarship-application/models.go
package getscholarshipapplication

import "scholarship-workers/internal/models"

type Input struct {
	ApplicationID uint64 `json:"applicationId"`
}

// Output carries the zero-valued record with Found=false when the id is unknown.
type Output struct {
	Found       bool                     `json:"found"`
	Application models.ApplicationRecord `json:"application"`
}
