package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityRank(t *testing.T) {
	assert.Equal(t, 0, SeverityError.Rank())
	assert.Equal(t, 1, SeverityWarn.Rank())
	assert.Equal(t, 2, SeverityInfo.Rank())
	assert.Equal(t, 99, Severity("bogus").Rank())
}

func TestSeverityValid(t *testing.T) {
	assert.True(t, SeverityError.Valid())
	assert.True(t, SeverityWarn.Valid())
	assert.True(t, SeverityInfo.Valid())
	assert.False(t, Severity("").Valid())
	assert.False(t, Severity("critical").Valid())
}
