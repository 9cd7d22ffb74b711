package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doctor-booking-api/internal/store"
)

func TestParseDoctors(t *testing.T) {
	in := `[
		{"_id": "d1", "name": "Dr. Adams", "specialization": "Cardiology", "image": "a.png", "availability": false},
		{"name": "Dr. Baker", "specialization": "Dermatology", "image": "b.png", "about": "Skin."}
	]`
	docs, err := parseDoctors(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "d1", docs[0].ID)
	assert.False(t, docs[0].Available)
	assert.Equal(t, store.DefaultAbout, docs[0].About)

	assert.NotEmpty(t, docs[1].ID)
	assert.True(t, docs[1].Available)
	assert.Equal(t, "Skin.", docs[1].About)
}

func TestParseDoctorsRejectsInvalid(t *testing.T) {
	_, err := parseDoctors(strings.NewReader(`[{"name": "Dr. X"}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Please add a specialization")

	_, err = parseDoctors(strings.NewReader(`{"name": "not an array"}`))
	require.Error(t, err)
}
