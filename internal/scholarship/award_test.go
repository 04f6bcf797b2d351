package scholarship

import (
	"errors"
	"fmt"
	"testing"

	apperrors "scholarship-workers/internal/common/errors"

	"github.com/stretchr/testify/assert"
)

func TestAwardForScore(t *testing.T) {
	tests := []struct {
		score uint64
		award uint64
		tier  string
		err   error
	}{
		{0, 0, "", ErrBelowMinimum},
		{290, 0, "", ErrBelowMinimum},
		{299, 0, "", ErrBelowMinimum},
		{300, 1000 * StroopsPerUnit, "bronze", nil},
		{349, 1000 * StroopsPerUnit, "bronze", nil},
		{350, 1500 * StroopsPerUnit, "silver", nil},
		{379, 1500 * StroopsPerUnit, "silver", nil},
		{380, 2000 * StroopsPerUnit, "gold", nil},
		{400, 2000 * StroopsPerUnit, "gold", nil},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("score_%d", tt.score), func(t *testing.T) {
			award, err := AwardForScore(tt.score)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.award, award)

			tier, ok := TierForScore(tt.score)
			assert.True(t, ok)
			assert.Equal(t, tt.tier, tier.Name)
		})
	}
}

func TestTiers_OrderedHighToLow(t *testing.T) {
	for i := 1; i < len(Tiers); i++ {
		assert.Greater(t, Tiers[i-1].MinScore, Tiers[i].MinScore)
		assert.Greater(t, Tiers[i-1].Award, Tiers[i].Award)
	}
	assert.Equal(t, MinimumScore, Tiers[len(Tiers)-1].MinScore)
}

func TestCode(t *testing.T) {
	tests := []struct {
		err  error
		code apperrors.ErrorCode
	}{
		{fmt.Errorf("%w: score 401", ErrInvalidScore), apperrors.ErrCodeInvalidScore},
		{fmt.Errorf("%w: id 9", ErrNotFound), apperrors.ErrCodeApplicationNotFound},
		{ErrAlreadyApproved, apperrors.ErrCodeAlreadyApproved},
		{ErrBelowMinimum, apperrors.ErrCodeBelowMinimum},
		{fmt.Errorf("%w: bad token", ErrUnauthorized), apperrors.ErrCodeUnauthorized},
		{storageErr("read", errors.New("eof")), apperrors.ErrCodeStorageFailure},
		{ErrInconsistentState, apperrors.ErrCodeInconsistentState},
		{errors.New("other"), apperrors.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.code, Code(tt.err))
			std := ToStandardError(tt.err)
			assert.Equal(t, tt.code, std.Code)
			assert.Equal(t, tt.err.Error(), std.Details)
		})
	}
	assert.True(t, ToStandardError(storageErr("x", errors.New("y"))).Retryable)
}
