package audit

import (
	"context"

	"github.com/infoseceng/releasegate/internal/gates"
	"github.com/infoseceng/releasegate/internal/githubapi"
	"github.com/infoseceng/releasegate/internal/protection"
	"github.com/infoseceng/releasegate/internal/refdata"
	"github.com/infoseceng/releasegate/internal/report"
	"github.com/infoseceng/releasegate/internal/resolver"
)

// RepositoryLister exposes the repository and branch listings the orchestrator walks.
type RepositoryLister interface {
	ListRepositories(executionContext context.Context, organization string, pageNumber int) ([]githubapi.Repository, error)
	ListBranches(executionContext context.Context, organization string, repository string) ([]githubapi.Branch, error)
}

// ProtectionExtractor yields the branch-protection facts for one branch.
type ProtectionExtractor interface {
	Extract(executionContext context.Context, organization string, repository string, branch string) (protection.Facts, error)
}

// ContextResolver maps a raw status-check context to a pipeline identity.
type ContextResolver interface {
	Resolve(organization string, rawContext string, branch string) resolver.Resolution
}

// GateInspector evaluates the release gates of a resolved pipeline or a standalone repository.
type GateInspector interface {
	Inspect(executionContext context.Context, identity refdata.PipelineIdentity, environment refdata.Environment, contextName string) gates.Status
	InspectStandalone(executionContext context.Context, organization string, repository string, contextName string) gates.Status
}

// OwnerLoader reloads the repository owner table for one organization.
type OwnerLoader interface {
	LoadOwners(filePath string) (map[string]string, refdata.LoadResult, error)
}

// ReportSink consumes the ordered row sequences produced per organization.
type ReportSink interface {
	WriteAuditRows(organization string, rows []report.AuditRow) error
	WriteRemediationRows(organization string, rows []report.RemediationRow) error
}
