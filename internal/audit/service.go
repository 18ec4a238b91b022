package audit

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/infoseceng/releasegate/internal/classify"
	"github.com/infoseceng/releasegate/internal/gates"
	"github.com/infoseceng/releasegate/internal/githubapi"
	"github.com/infoseceng/releasegate/internal/protection"
	"github.com/infoseceng/releasegate/internal/refdata"
	"github.com/infoseceng/releasegate/internal/report"
	"github.com/infoseceng/releasegate/internal/resolver"
)

const (
	defaultConcurrencyConstant        = 8
	ownerFileExtensionConstant        = ".csv"
	logFieldOrganizationConstant      = "organization"
	logFieldRepositoryConstant        = "repository"
	logFieldBranchConstant            = "branch"
	logFieldSkippedRowsConstant       = "skipped_rows"
	ownerReloadMessageConstant        = "owner table reloaded"
	ownerReloadFailedMessageConstant  = "owner table unavailable, using defaults"
	repositoryListFailedMessage       = "repository listing failed"
	repositoryAuditFailedMessage      = "repository audit degraded to error rows"
	organizationCompletedMessage      = "organization audit completed"
	runCompletedMessageConstant       = "audit run completed"
	missingOrganizationsErrorConstant = "no organizations configured"
)

// ErrNoOrganizations aborts a run configured without any organization.
var ErrNoOrganizations = errors.New(missingOrganizationsErrorConstant)

// Service drives the audit across organizations, repositories, and branches.
type Service struct {
	logger       *zap.Logger
	repositories RepositoryLister
	extractor    ProtectionExtractor
	resolver     ContextResolver
	inspector    GateInspector
	store        *refdata.Store
	ownerLoader  OwnerLoader
	sink         ReportSink
}

// NewService constructs a Service from its collaborators.
func NewService(logger *zap.Logger, repositories RepositoryLister, extractor ProtectionExtractor, contextResolver ContextResolver, inspector GateInspector, store *refdata.Store, ownerLoader OwnerLoader, sink ReportSink) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		logger:       logger,
		repositories: repositories,
		extractor:    extractor,
		resolver:     contextResolver,
		inspector:    inspector,
		store:        store,
		ownerLoader:  ownerLoader,
		sink:         sink,
	}
}

// Run audits every configured organization sequentially and returns the run summary.
func (service *Service) Run(executionContext context.Context, options Options) (RunSummary, error) {
	if len(options.Organizations) == 0 {
		return RunSummary{}, ErrNoOrganizations
	}
	if options.Concurrency <= 0 {
		options.Concurrency = defaultConcurrencyConstant
	}

	summary := RunSummary{}
	for _, organization := range options.Organizations {
		service.reloadOwners(organization, options.OwnersDirectory)
		service.auditOrganization(executionContext, organization, options, &summary)
		summary.Organizations++
	}

	service.logger.Info(runCompletedMessageConstant,
		zap.Int("organizations", summary.Organizations),
		zap.Int("repositories", summary.Repositories),
		zap.Int("branches", summary.BranchesAudited),
		zap.Int("compliant", summary.CompliantBranches),
		zap.Int("non_compliant", summary.NonCompliantBranches),
		zap.Int("failed_repositories", summary.FailedRepositories),
	)
	return summary, nil
}

// reloadOwners is the per-organization synchronization point: it completes
// before any repository of the organization is processed.
func (service *Service) reloadOwners(organization string, ownersDirectory string) {
	if service.ownerLoader == nil || len(strings.TrimSpace(ownersDirectory)) == 0 {
		service.store.ReplaceOwners(nil)
		return
	}

	ownersPath := filepath.Join(ownersDirectory, organization+ownerFileExtensionConstant)
	owners, loadResult, loadError := service.ownerLoader.LoadOwners(ownersPath)
	if loadError != nil {
		service.logger.Warn(ownerReloadFailedMessageConstant,
			zap.String(logFieldOrganizationConstant, organization),
			zap.Error(loadError),
		)
		service.store.ReplaceOwners(nil)
		return
	}

	service.store.ReplaceOwners(owners)
	service.logger.Info(ownerReloadMessageConstant,
		zap.String(logFieldOrganizationConstant, organization),
		zap.Int(logFieldSkippedRowsConstant, loadResult.SkippedRows),
	)
}

func (service *Service) auditOrganization(executionContext context.Context, organization string, options Options, summary *RunSummary) {
	repositories, listError := service.listAllRepositories(executionContext, organization)
	if listError != nil {
		service.logger.Error(repositoryListFailedMessage,
			zap.String(logFieldOrganizationConstant, organization),
			zap.Error(listError),
		)
		return
	}

	repositoryAudits := make([][]BranchAudit, len(repositories))
	repositoryFailures := make([]bool, len(repositories))
	workerGroup, groupContext := errgroup.WithContext(executionContext)
	workerGroup.SetLimit(options.Concurrency)
	for repositoryIndex, repository := range repositories {
		repositoryIndex, repository := repositoryIndex, repository
		workerGroup.Go(func() error {
			repositoryAudits[repositoryIndex], repositoryFailures[repositoryIndex] = service.auditRepository(groupContext, organization, repository.Name, options.TargetBranches)
			return nil
		})
	}
	// Workers never return errors; failures degrade to error-detail rows.
	_ = workerGroup.Wait()

	for _, repositoryFailed := range repositoryFailures {
		if repositoryFailed {
			summary.FailedRepositories++
		}
	}

	var auditRows []report.AuditRow
	var remediationRows []report.RemediationRow
	for _, branchAudits := range repositoryAudits {
		for _, branchAudit := range branchAudits {
			summary.BranchesAudited++
			if branchAudit.Verdict.Compliant {
				summary.CompliantBranches++
			} else {
				summary.NonCompliantBranches++
			}

			auditRows = append(auditRows, auditRowFromBranchAudit(branchAudit))
			if !branchAudit.Verdict.Compliant && !branchAudit.Ignored {
				remediationRows = append(remediationRows, remediationRowFromBranchAudit(branchAudit))
			}
		}
	}
	summary.Repositories += len(repositories)

	if writeError := service.sink.WriteAuditRows(organization, auditRows); writeError != nil {
		service.logger.Error(repositoryAuditFailedMessage, zap.String(logFieldOrganizationConstant, organization), zap.Error(writeError))
	}
	if writeError := service.sink.WriteRemediationRows(organization, remediationRows); writeError != nil {
		service.logger.Error(repositoryAuditFailedMessage, zap.String(logFieldOrganizationConstant, organization), zap.Error(writeError))
	}

	service.logger.Info(organizationCompletedMessage,
		zap.String(logFieldOrganizationConstant, organization),
		zap.Int("repositories", len(repositories)),
		zap.Int("audit_rows", len(auditRows)),
		zap.Int("remediation_rows", len(remediationRows)),
	)
}

func (service *Service) listAllRepositories(executionContext context.Context, organization string) ([]githubapi.Repository, error) {
	var repositories []githubapi.Repository
	for pageNumber := 1; ; pageNumber++ {
		pageRepositories, pageError := service.repositories.ListRepositories(executionContext, organization, pageNumber)
		if pageError != nil {
			return nil, pageError
		}
		if len(pageRepositories) == 0 {
			return repositories, nil
		}
		repositories = append(repositories, pageRepositories...)
	}
}

func (service *Service) auditRepository(executionContext context.Context, organization string, repository string, targetBranches []string) ([]BranchAudit, bool) {
	branches, branchesError := service.repositories.ListBranches(executionContext, organization, repository)
	if branchesError != nil {
		service.logger.Warn(repositoryAuditFailedMessage,
			zap.String(logFieldOrganizationConstant, organization),
			zap.String(logFieldRepositoryConstant, repository),
			zap.Error(branchesError),
		)
		return service.errorAudits(organization, repository, targetBranches), true
	}

	var branchAudits []BranchAudit
	repositoryFailed := false
	for _, targetBranch := range targetBranches {
		actualBranch, branchPresent := matchBranch(branches, targetBranch)
		if !branchPresent {
			continue
		}
		branchAudit := service.auditBranch(executionContext, organization, repository, actualBranch)
		if branchAudit.Degraded {
			repositoryFailed = true
		}
		branchAudits = append(branchAudits, branchAudit)
	}
	return branchAudits, repositoryFailed
}

func (service *Service) auditBranch(executionContext context.Context, organization string, repository string, branch string) BranchAudit {
	branchAudit := BranchAudit{
		Organization: organization,
		Repository:   repository,
		Branch:       branch,
		Ignored:      service.store.IsIgnored(organization, repository),
		OwnerEmail:   service.store.OwnerEmail(repository),
	}

	facts, extractError := service.extractor.Extract(executionContext, organization, repository, branch)
	if extractError != nil {
		service.logger.Warn(repositoryAuditFailedMessage,
			zap.String(logFieldOrganizationConstant, organization),
			zap.String(logFieldRepositoryConstant, repository),
			zap.String(logFieldBranchConstant, branch),
			zap.Error(extractError),
		)
		branchAudit.Facts = protection.Facts{Source: protection.SourceNone}
		branchAudit.Statuses = []gates.Status{apiErrorStatus("")}
		branchAudit.Verdict = classify.Classify(branchAudit.Facts, branchAudit.Statuses)
		branchAudit.Degraded = true
		return branchAudit
	}

	branchAudit.Facts = facts
	branchAudit.Statuses = service.gatherStatuses(executionContext, organization, repository, branch, facts.Contexts)
	branchAudit.Verdict = classify.Classify(branchAudit.Facts, branchAudit.Statuses)
	return branchAudit
}

func (service *Service) gatherStatuses(executionContext context.Context, organization string, repository string, branch string, contexts []string) []gates.Status {
	var statuses []gates.Status
	for _, rawContext := range contexts {
		normalizedContext := resolver.NormalizeContext(rawContext)

		if resolver.IsStandaloneContext(rawContext) {
			statuses = append(statuses, service.inspector.InspectStandalone(executionContext, organization, repository, normalizedContext))
			continue
		}

		resolution := service.resolver.Resolve(organization, rawContext, branch)
		if !resolution.Found {
			statuses = append(statuses, gates.Status{
				Context:        normalizedContext,
				PRValidation:   gates.PRValidationNotFound,
				StaticAnalysis: gates.StaticAnalysisError,
				Detail:         gates.DetailNotFound,
			})
			continue
		}

		statuses = append(statuses, service.inspector.Inspect(executionContext, resolution.Identity, resolution.Environment, normalizedContext))
	}
	return statuses
}

func (service *Service) errorAudits(organization string, repository string, targetBranches []string) []BranchAudit {
	var branchAudits []BranchAudit
	for _, targetBranch := range targetBranches {
		branchAudit := BranchAudit{
			Organization: organization,
			Repository:   repository,
			Branch:       strings.ToLower(targetBranch),
			Facts:        protection.Facts{Source: protection.SourceNone},
			Ignored:      service.store.IsIgnored(organization, repository),
			OwnerEmail:   service.store.OwnerEmail(repository),
			Statuses:     []gates.Status{apiErrorStatus("")},
			Degraded:     true,
		}
		branchAudit.Verdict = classify.Classify(branchAudit.Facts, branchAudit.Statuses)
		branchAudits = append(branchAudits, branchAudit)
	}
	return branchAudits
}

func apiErrorStatus(contextName string) gates.Status {
	return gates.Status{
		Context:        contextName,
		PRValidation:   gates.PRValidationNotFound,
		StaticAnalysis: gates.StaticAnalysisError,
		Detail:         gates.DetailAPIError,
	}
}
