// internal/workers/scholarship/get-scholarship-statistics/models.go
package getscholarshipstatistics

import "scholarship-workers/internal/models"

type Output struct {
	Statistics models.AggregateStats `json:"statistics"`
}
