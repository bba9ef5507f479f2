package staticmapdal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinProviders(t *testing.T) {
	providers := BuiltinProviders()
	require.NotEmpty(t, providers)

	seenIDs := make(map[string]bool)
	defaultIDFound := false

	for _, provider := range providers {
		assert.False(t, seenIDs[provider.ID], "duplicate provider ID %q", provider.ID)
		seenIDs[provider.ID] = true

		if provider.ID == DefaultProviderID {
			defaultIDFound = true
		}

		assert.NotEmpty(t, provider.Name, "provider %q has no name", provider.ID)
		assert.NotEmpty(t, provider.Attribution, "provider %q has no attribution", provider.ID)
		assert.NotZero(t, provider.MaxZoom, "provider %q has no max zoom", provider.ID)

		for _, placeholder := range []string{"{z}", "{x}", "{y}"} {
			assert.True(t, strings.Contains(provider.URLTemplate, placeholder),
				"provider %q template %q is missing %s", provider.ID, provider.URLTemplate, placeholder)
		}
	}

	assert.True(t, defaultIDFound, "default provider %q is not built in", DefaultProviderID)
}

func TestNewTileProviderSet(t *testing.T) {
	providers := []*TileProvider{
		{ID: "a", Name: "Provider A", URLTemplate: "https://a.example.com/{z}/{x}/{y}.png", MaxZoom: 19},
		{ID: "b", Name: "Provider B", URLTemplate: "https://b.example.com/{z}/{x}/{y}.png", MaxZoom: 18},
	}

	providerSet, err := NewTileProviderSet(providers, "b")
	require.NoError(t, err)

	assert.Equal(t, "b", providerSet.GetDefaultProvider().ID)
	assert.Equal(t, "Provider A", providerSet.GetProviderByID("a").Name)
	assert.Nil(t, providerSet.GetProviderByID("unknown"))
	assert.ElementsMatch(t, []string{"a", "b"}, providerSet.GetAllProviderIDs())
}

func TestNewTileProviderSet_duplicateID(t *testing.T) {
	providers := []*TileProvider{
		{ID: "a", Name: "Provider A"},
		{ID: "a", Name: "Also Provider A"},
	}

	_, err := NewTileProviderSet(providers, "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate provider ID found: "a"`)
}

func TestNewTileProviderSet_defaultNotFound(t *testing.T) {
	providers := []*TileProvider{
		{ID: "a", Name: "Provider A"},
	}

	_, err := NewTileProviderSet(providers, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `default ID "missing" not found`)
}
