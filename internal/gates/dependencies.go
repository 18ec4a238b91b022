package gates

import (
	"context"

	"github.com/infoseceng/releasegate/internal/azdo"
	"github.com/infoseceng/releasegate/internal/githubapi"
)

// BuildDefinitionReader exposes the CI-system lookup the inspector consumes.
type BuildDefinitionReader interface {
	GetBuildDefinition(executionContext context.Context, accessToken string, organization string, project string, definitionID int) (*azdo.BuildDefinition, error)
}

// SourceContentReader exposes the source-control reads the inspector consumes:
// YAML definition files for pipeline inspection and webhook registrations for
// standalone repositories.
type SourceContentReader interface {
	GetFileContent(executionContext context.Context, organization string, repository string, filePath string, reference string) ([]byte, error)
	ListWebhooks(executionContext context.Context, organization string, repository string) ([]githubapi.Webhook, error)
}

// YAMLGateScanner decides whether a YAML pipeline definition disables the
// static-analysis tool. Scan returns an error only when the content cannot be
// decoded as YAML.
type YAMLGateScanner interface {
	Scan(content []byte) (YAMLScanResult, error)
}

// YAMLScanResult is the outcome of scanning one YAML definition.
type YAMLScanResult struct {
	ToolMentioned bool
	DisableFound  bool
	Detail        string
}
