package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSlug(t *testing.T) {
	assert.Equal(t, "jane-doe", NormalizeSlug("  Jane-Doe "))
	assert.Equal(t, "abc123", NormalizeSlug("ABC123"))
}

func TestValidateSlug(t *testing.T) {
	valid := []string{"a", "jane-doe", "abc-123-def", "42"}
	for _, slug := range valid {
		assert.NoError(t, ValidateSlug(slug), slug)
	}

	invalid := []string{"", "-leading", "trailing-", "double--dash", "has space", "UPPER", "umläut", "dot.com"}
	for _, slug := range invalid {
		assert.ErrorIs(t, ValidateSlug(slug), ErrInvalidSlug, slug)
	}
}

func TestCardValidateRejectsBadSlug(t *testing.T) {
	card := &Card{UserID: 1, Slug: "not valid"}
	require.Error(t, card.Validate())
}

func TestCardValidateInspectsLinks(t *testing.T) {
	card := &Card{UserID: 1, Slug: "jane-doe", Links: []CardLink{
		{Label: "Site", URL: "https://example.com"},
	}}
	require.NoError(t, card.Validate())

	card.Links = append(card.Links, CardLink{Label: "", URL: "not a url"})
	require.Error(t, card.Validate())
}
