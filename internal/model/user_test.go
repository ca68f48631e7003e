package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidNationalID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"nineteenth century prefix", "29001011234567", true},
		{"twentieth century prefix", "30501011234567", true},
		{"wrong prefix", "19001011234567", false},
		{"too short", "2900101123456", false},
		{"too long", "290010112345678", false},
		{"non numeric", "2900101123456a", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidNationalID(tt.id))
		})
	}
}

func TestDOBFromNationalID(t *testing.T) {
	dob, err := DOBFromNationalID("29001011234567")
	require.NoError(t, err)
	assert.Equal(t, time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), dob)

	dob, err = DOBFromNationalID("30512251234567")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2005, 12, 25, 0, 0, 0, 0, time.UTC), dob)

	_, err = DOBFromNationalID("10001011234567")
	assert.Error(t, err)

	// Valid shape but impossible calendar date.
	_, err = DOBFromNationalID("29013321234567")
	assert.Error(t, err)
}

func TestAgeFromDOB(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 35, AgeFromDOB(time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), now))
	// Birthday later this year has not happened yet.
	assert.Equal(t, 34, AgeFromDOB(time.Date(1990, 6, 16, 0, 0, 0, 0, time.UTC), now))
	// Birthday today counts as completed.
	assert.Equal(t, 35, AgeFromDOB(time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC), now))
	// Future date clamps to zero.
	assert.Equal(t, 0, AgeFromDOB(now.AddDate(1, 0, 0), now))
}

func TestUserFullName(t *testing.T) {
	u := &User{FirstName: "Aya", LastName: "Hassan"}
	assert.Equal(t, "Aya Hassan", u.FullName())

	u.MiddleName = "Mohamed"
	assert.Equal(t, "Aya Mohamed Hassan", u.FullName())
}
