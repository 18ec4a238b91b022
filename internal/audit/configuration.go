package audit

import "strings"

const (
	defaultGitHubAPIBaseURLConstant = "https://api.github.com"
	defaultCIBaseURLConstant        = "https://dev.azure.com"
	defaultOutputDirectoryConstant  = "reports"
	defaultHTTPTimeoutSeconds       = 30
)

var defaultTargetBranches = []string{"main", "staging", "release"}

// CommandConfiguration captures configuration values for the audit command.
type CommandConfiguration struct {
	Organizations           []string `mapstructure:"organizations"`
	TargetBranches          []string `mapstructure:"branches"`
	Concurrency             int      `mapstructure:"concurrency"`
	OutputDirectory         string   `mapstructure:"output_dir"`
	GitHubAPIBaseURL        string   `mapstructure:"github_api_url"`
	CIBaseURL               string   `mapstructure:"ci_api_url"`
	HTTPTimeoutSeconds      int      `mapstructure:"http_timeout_seconds"`
	StrategicOrganization   string   `mapstructure:"strategic_organization"`
	StrategicProject        string   `mapstructure:"strategic_project"`
	PrimaryPipelinesFile    string   `mapstructure:"primary_pipelines_file"`
	SecondaryPipelinesFile  string   `mapstructure:"secondary_pipelines_file"`
	IgnoredRepositoriesFile string   `mapstructure:"ignored_repositories_file"`
	OwnersDirectory         string   `mapstructure:"owners_dir"`
	StaticAnalysisTaskID    string   `mapstructure:"static_analysis_task_id"`
	StaticAnalysisToolName  string   `mapstructure:"static_analysis_tool_name"`

	Notification NotificationConfiguration `mapstructure:"notification"`
}

// NotificationConfiguration configures the optional SMTP remediation mail.
type NotificationConfiguration struct {
	Enabled     bool     `mapstructure:"enabled"`
	Host        string   `mapstructure:"host"`
	Port        int      `mapstructure:"port"`
	SenderEmail string   `mapstructure:"sender_email"`
	Recipients  []string `mapstructure:"recipients"`
	CarbonCopy  []string `mapstructure:"carbon_copy"`
	Subject     string   `mapstructure:"subject"`
}

// DefaultCommandConfiguration provides baseline configuration values for the audit.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Organizations:      nil,
		TargetBranches:     append([]string{}, defaultTargetBranches...),
		Concurrency:        defaultConcurrencyConstant,
		OutputDirectory:    defaultOutputDirectoryConstant,
		GitHubAPIBaseURL:   defaultGitHubAPIBaseURLConstant,
		CIBaseURL:          defaultCIBaseURLConstant,
		HTTPTimeoutSeconds: defaultHTTPTimeoutSeconds,
	}
}

// DefaultConfigurationValues exposes the defaults as viper keys beneath the
// given configuration prefix.
func DefaultConfigurationValues(configurationPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationPrefix + ".branches":             defaults.TargetBranches,
		configurationPrefix + ".concurrency":          defaults.Concurrency,
		configurationPrefix + ".output_dir":           defaults.OutputDirectory,
		configurationPrefix + ".github_api_url":       defaults.GitHubAPIBaseURL,
		configurationPrefix + ".ci_api_url":           defaults.CIBaseURL,
		configurationPrefix + ".http_timeout_seconds": defaults.HTTPTimeoutSeconds,
	}
}

// sanitize trims configuration values and restores defaults for blank fields.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	defaults := DefaultCommandConfiguration()

	sanitized.Organizations = sanitizeList(configuration.Organizations)
	sanitized.TargetBranches = sanitizeList(configuration.TargetBranches)
	if len(sanitized.TargetBranches) == 0 {
		sanitized.TargetBranches = defaults.TargetBranches
	}
	if sanitized.Concurrency <= 0 {
		sanitized.Concurrency = defaults.Concurrency
	}
	sanitized.OutputDirectory = valueOrDefault(configuration.OutputDirectory, defaults.OutputDirectory)
	sanitized.GitHubAPIBaseURL = valueOrDefault(configuration.GitHubAPIBaseURL, defaults.GitHubAPIBaseURL)
	sanitized.CIBaseURL = valueOrDefault(configuration.CIBaseURL, defaults.CIBaseURL)
	if sanitized.HTTPTimeoutSeconds <= 0 {
		sanitized.HTTPTimeoutSeconds = defaults.HTTPTimeoutSeconds
	}
	sanitized.StrategicOrganization = strings.TrimSpace(configuration.StrategicOrganization)
	sanitized.StrategicProject = strings.TrimSpace(configuration.StrategicProject)
	sanitized.PrimaryPipelinesFile = strings.TrimSpace(configuration.PrimaryPipelinesFile)
	sanitized.SecondaryPipelinesFile = strings.TrimSpace(configuration.SecondaryPipelinesFile)
	sanitized.IgnoredRepositoriesFile = strings.TrimSpace(configuration.IgnoredRepositoriesFile)
	sanitized.OwnersDirectory = strings.TrimSpace(configuration.OwnersDirectory)
	sanitized.StaticAnalysisTaskID = strings.TrimSpace(configuration.StaticAnalysisTaskID)
	sanitized.StaticAnalysisToolName = strings.TrimSpace(configuration.StaticAnalysisToolName)
	sanitized.Notification.Recipients = sanitizeList(configuration.Notification.Recipients)
	sanitized.Notification.CarbonCopy = sanitizeList(configuration.Notification.CarbonCopy)

	return sanitized
}

func valueOrDefault(value string, defaultValue string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return defaultValue
	}
	return trimmed
}

func sanitizeList(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	for _, candidate := range raw {
		trimmed := strings.TrimSpace(candidate)
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}
