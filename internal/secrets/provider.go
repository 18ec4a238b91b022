package secrets

import (
	"fmt"
	"os"
	"strings"
)

const (
	secretNotFoundErrorTemplateConstant = "secret %s not found"
	environmentKeySeparatorConstant     = "_"
)

// Provider supplies named secrets to the application.
type Provider interface {
	GetSecret(secretName string) (string, error)
	SecretExists(secretName string) bool
}

// EnvironmentProvider resolves secrets from process environment variables.
// Secret names are upper-cased, dashes become underscores, and an optional
// prefix is prepended.
type EnvironmentProvider struct {
	prefix string
}

// NewEnvironmentProvider constructs a provider with the given variable prefix.
func NewEnvironmentProvider(prefix string) *EnvironmentProvider {
	return &EnvironmentProvider{prefix: strings.TrimSpace(prefix)}
}

// GetSecret returns the secret value or an error when the variable is unset or blank.
func (provider *EnvironmentProvider) GetSecret(secretName string) (string, error) {
	secretValue, exists := os.LookupEnv(provider.environmentKey(secretName))
	if !exists || len(strings.TrimSpace(secretValue)) == 0 {
		return "", fmt.Errorf(secretNotFoundErrorTemplateConstant, secretName)
	}
	return secretValue, nil
}

// SecretExists reports whether the secret resolves to a non-empty value.
func (provider *EnvironmentProvider) SecretExists(secretName string) bool {
	_, secretError := provider.GetSecret(secretName)
	return secretError == nil
}

func (provider *EnvironmentProvider) environmentKey(secretName string) string {
	normalizedName := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(secretName), "-", environmentKeySeparatorConstant))
	if len(provider.prefix) == 0 {
		return normalizedName
	}
	return provider.prefix + environmentKeySeparatorConstant + normalizedName
}
