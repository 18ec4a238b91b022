package secrets_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/infoseceng/releasegate/internal/secrets"
)

func TestEnvironmentProviderGetSecret(testInstance *testing.T) {
	testInstance.Setenv("RELEASEGATE_GITHUB_TOKEN", "github-token-value")

	provider := secrets.NewEnvironmentProvider("RELEASEGATE")

	secretValue, secretError := provider.GetSecret("github-token")
	require.NoError(testInstance, secretError)
	require.Equal(testInstance, "github-token-value", secretValue)
	require.True(testInstance, provider.SecretExists("github-token"))

	_, missingError := provider.GetSecret("absent-secret")
	require.Error(testInstance, missingError)
	require.False(testInstance, provider.SecretExists("absent-secret"))
}

func TestEnvironmentProviderBlankValueIsMissing(testInstance *testing.T) {
	testInstance.Setenv("RELEASEGATE_CI_TOKEN", "   ")

	provider := secrets.NewEnvironmentProvider("RELEASEGATE")
	require.False(testInstance, provider.SecretExists("ci-token"))
}
