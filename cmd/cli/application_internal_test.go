package cli

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

const auditCommandNameConstant = "audit"

func TestNewApplicationRegistersAuditCommand(testInstance *testing.T) {
	application := NewApplication()

	registeredNames := make([]string, 0, len(application.rootCommand.Commands()))
	for _, registeredCommand := range application.rootCommand.Commands() {
		registeredNames = append(registeredNames, registeredCommand.Name())
	}

	require.Contains(testInstance, registeredNames, auditCommandNameConstant)
}

func TestNewApplicationDeclaresPersistentFlags(testInstance *testing.T) {
	application := NewApplication()

	persistentFlags := application.rootCommand.PersistentFlags()
	require.NotNil(testInstance, persistentFlags.Lookup(configFileFlagNameConstant))
	require.NotNil(testInstance, persistentFlags.Lookup(logLevelFlagNameConstant))
	require.NotNil(testInstance, persistentFlags.Lookup(logFormatFlagNameConstant))
}

func TestRootCommandHelpExecutes(testInstance *testing.T) {
	application := NewApplication()
	application.rootCommand.SetOut(io.Discard)
	application.rootCommand.SetErr(io.Discard)
	application.rootCommand.SetArgs([]string{"--help"})

	require.NoError(testInstance, application.rootCommand.Execute())
}

func TestInitializeConfigurationAppliesDefaults(testInstance *testing.T) {
	application := NewApplication()

	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))

	require.Equal(testInstance, "info", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "structured", application.configuration.Common.LogFormat)
	require.Equal(testInstance, []string{"main", "staging", "release"}, application.configuration.Audit.TargetBranches)
	require.Equal(testInstance, "reports", application.configuration.Audit.OutputDirectory)
}
