package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ugc-dashboard/reporting/internal/validation"
)

func TestReport_Validate_KeepsFieldErrors(t *testing.T) {
	err := (&Report{}).Validate()

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidReport)

	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	assert.NotEmpty(t, verr.Fields)
	assert.Contains(t, err.Error(), "title is required")
}

func TestReport_Validate_OK(t *testing.T) {
	r := Report{
		Title: "Weekly",
		Period: Period{
			Start: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		},
	}
	assert.NoError(t, r.Validate())
}
