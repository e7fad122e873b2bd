package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Storefront: StorefrontConfig{
			Domain:      "shop.example",
			APIVersion:  "2025-01",
			AccessToken: "shpat-secret",
		},
		Cart: CartConfig{
			Profile:       "default",
			LinesPageSize: 50,
		},
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateRequiresCredentials(t *testing.T) {
	missingDomain := validConfig()
	missingDomain.Storefront.Domain = ""
	err := missingDomain.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storefront.domain")

	missingToken := validConfig()
	missingToken.Storefront.AccessToken = ""
	err = missingToken.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storefront.access_token")
	assert.NotContains(t, err.Error(), "shpat-secret", "credential values never appear in errors")
}

func TestValidateRejectsZeroLinesPageSize(t *testing.T) {
	cfg := validConfig()
	cfg.Cart.LinesPageSize = 0
	require.Error(t, cfg.Validate())
}

func TestEndpointURL(t *testing.T) {
	cfg := StorefrontConfig{Domain: "shop.example", APIVersion: "2025-01"}
	assert.Equal(t, "https://shop.example/api/2025-01/graphql.json", cfg.Endpoint())
}
