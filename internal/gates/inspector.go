package gates

import (
	"context"
	"errors"
	"strings"

	"github.com/infoseceng/releasegate/internal/azdo"
	"github.com/infoseceng/releasegate/internal/githubapi"
	"github.com/infoseceng/releasegate/internal/refdata"
)

const (
	defaultToolNameConstant        = "checkmarx"
	defaultToolTaskIDConstant      = "5261ca4e-09a2-4eb9-b269-36ef5dfd13ef"
	pullRequestWebhookEventName    = "pull_request"
	headsReferencePrefixConstant   = "refs/heads/"
	repositorySegmentCountConstant = 2
)

// Settings configures the inspector: one CI credential per reference
// environment, plus the identity of the static-analysis task.
type Settings struct {
	Tokens     map[refdata.Environment]string
	ToolTaskID string
	ToolName   string
}

func (settings Settings) withDefaults() Settings {
	if len(strings.TrimSpace(settings.ToolTaskID)) == 0 {
		settings.ToolTaskID = defaultToolTaskIDConstant
	}
	if len(strings.TrimSpace(settings.ToolName)) == 0 {
		settings.ToolName = defaultToolNameConstant
	}
	return settings
}

// Inspector evaluates pull-request and static-analysis gates for resolved pipelines.
type Inspector struct {
	definitionReader BuildDefinitionReader
	sourceReader     SourceContentReader
	yamlScanner      YAMLGateScanner
	settings         Settings
}

// NewInspector constructs an Inspector. A nil yamlScanner selects the
// line-window heuristic for the configured tool name.
func NewInspector(definitionReader BuildDefinitionReader, sourceReader SourceContentReader, yamlScanner YAMLGateScanner, settings Settings) *Inspector {
	settings = settings.withDefaults()
	if yamlScanner == nil {
		yamlScanner = NewLineWindowScanner(settings.ToolName)
	}
	return &Inspector{
		definitionReader: definitionReader,
		sourceReader:     sourceReader,
		yamlScanner:      yamlScanner,
		settings:         settings,
	}
}

// Inspect interrogates one resolved pipeline for both gates. Transport
// failures never surface as errors; they degrade into sentinel states with an
// explicit detail code.
func (inspector *Inspector) Inspect(executionContext context.Context, identity refdata.PipelineIdentity, environment refdata.Environment, contextName string) Status {
	status := Status{Context: contextName}

	accessToken, tokenAvailable := inspector.settings.Tokens[environment]
	if !tokenAvailable || len(strings.TrimSpace(accessToken)) == 0 {
		status.PRValidation = PRValidationNoToken
		status.StaticAnalysis = StaticAnalysisError
		status.Detail = DetailNoToken
		return status
	}

	definition, definitionError := inspector.definitionReader.GetBuildDefinition(executionContext, accessToken, identity.Organization, identity.Project, identity.ID)
	if definitionError != nil || definition == nil {
		status.PRValidation = PRValidationNotFound
		status.StaticAnalysis = StaticAnalysisError
		status.Detail = DetailAPIError
		return status
	}

	if definition.HasPullRequestTrigger() {
		status.PRValidation = PRValidationEnabled
	} else {
		status.PRValidation = PRValidationDisabled
	}

	status.StaticAnalysis, status.Detail = inspector.inspectStaticAnalysis(executionContext, definition)
	return status
}

// InspectStandalone covers repositories validated purely through a GitHub
// webhook: PR validation holds when an active webhook subscribes to
// pull-request events, and static analysis is fixed to not-applicable.
func (inspector *Inspector) InspectStandalone(executionContext context.Context, organization string, repository string, contextName string) Status {
	status := Status{
		Context:        contextName,
		StaticAnalysis: StaticAnalysisNotApplicable,
	}

	webhooks, webhooksError := inspector.sourceReader.ListWebhooks(executionContext, organization, repository)
	if webhooksError != nil {
		status.PRValidation = PRValidationNotFound
		status.Detail = DetailAPIError
		return status
	}

	status.PRValidation = PRValidationDisabled
	for _, webhook := range webhooks {
		if !webhook.Active {
			continue
		}
		if webhookSubscribesToPullRequests(webhook) {
			status.PRValidation = PRValidationEnabled
			break
		}
	}
	return status
}

func webhookSubscribesToPullRequests(webhook githubapi.Webhook) bool {
	for _, eventName := range webhook.Events {
		if strings.EqualFold(eventName, pullRequestWebhookEventName) {
			return true
		}
	}
	return false
}

func (inspector *Inspector) inspectStaticAnalysis(executionContext context.Context, definition *azdo.BuildDefinition) (StaticAnalysisState, string) {
	if definition.Process == nil {
		return StaticAnalysisError, DetailAPIError
	}

	if definition.Process.Type == azdo.ProcessTypeYAML {
		return inspector.inspectYAMLDefinition(executionContext, definition)
	}
	return scanClassicDefinition(definition, inspector.settings.ToolTaskID, inspector.settings.ToolName)
}

func (inspector *Inspector) inspectYAMLDefinition(executionContext context.Context, definition *azdo.BuildDefinition) (StaticAnalysisState, string) {
	organization, repository, referencesResolved := yamlSourceLocation(definition)
	if !referencesResolved || len(definition.Process.YAMLFilename) == 0 {
		return StaticAnalysisError, DetailYAMLFetchError
	}

	content, contentError := inspector.sourceReader.GetFileContent(executionContext, organization, repository, definition.Process.YAMLFilename, defaultBranchReference(definition))
	if contentError != nil {
		if errors.Is(contentError, githubapi.ErrContentDecode) {
			return StaticAnalysisError, DetailYAMLDecodeError
		}
		return StaticAnalysisError, DetailYAMLFetchError
	}

	scanResult, scanError := inspector.yamlScanner.Scan(content)
	if scanError != nil {
		return StaticAnalysisError, DetailYAMLDecodeError
	}

	// Asymmetry with the classic path, preserved deliberately: a YAML
	// definition that never mentions the tool still reads as enabled.
	if !scanResult.ToolMentioned {
		return StaticAnalysisEnabled, DetailNoCheckmarx
	}
	if scanResult.DisableFound {
		return StaticAnalysisDisabled, scanResult.Detail
	}
	return StaticAnalysisEnabled, ""
}

func yamlSourceLocation(definition *azdo.BuildDefinition) (string, string, bool) {
	if definition.Repository == nil {
		return "", "", false
	}

	location := strings.TrimSpace(definition.Repository.ID)
	if !strings.Contains(location, "/") {
		location = strings.TrimSpace(definition.Repository.Name)
	}

	segments := strings.Split(location, "/")
	if len(segments) != repositorySegmentCountConstant || len(segments[0]) == 0 || len(segments[1]) == 0 {
		return "", "", false
	}
	return segments[0], segments[1], true
}

func defaultBranchReference(definition *azdo.BuildDefinition) string {
	if definition.Repository == nil {
		return ""
	}
	return strings.TrimPrefix(definition.Repository.DefaultBranch, headsReferencePrefixConstant)
}
