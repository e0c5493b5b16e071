package middleware

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateTenantID(t *testing.T) {
	assert.NoError(t, ValidateTenantID("acme_corp-1"))
	assert.Error(t, ValidateTenantID(""))
	assert.Error(t, ValidateTenantID("acme corp"))
	assert.Error(t, ValidateTenantID(strings.Repeat("a", 65)))
}

func TestValidateMeetingID(t *testing.T) {
	assert.NoError(t, ValidateMeetingID("0b6a3b9e-1f7e-4c1b-9d0a-3c2f1e4d5a6b"))
	assert.Error(t, ValidateMeetingID(""))
	assert.Error(t, ValidateMeetingID("not-a-uuid"))
}

func TestValidateNumbers(t *testing.T) {
	v, err := ValidateVersion("3")
	assert.NoError(t, err)
	assert.Equal(t, 3, v)
	_, err = ValidateVersion("0")
	assert.Error(t, err)

	i, err := ValidateIndex("0")
	assert.NoError(t, err)
	assert.Equal(t, 0, i)
	_, err = ValidateIndex("-1")
	assert.Error(t, err)

	assert.Equal(t, 1, ValidatePage(0))
	assert.Equal(t, 20, ValidateLimit(0))
	assert.Equal(t, 100, ValidateLimit(500))
}

func TestValidateDate(t *testing.T) {
	d, err := ValidateDate("2026-03-01")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = ValidateDate("2026-03-01T10:00:00+02:00")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC), d)

	_, err = ValidateDate("March 1")
	assert.Error(t, err)
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello\tworld\nok", SanitizeString("  hel\x00lo\tworld\n\x07ok  "))
}
