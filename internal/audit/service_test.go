package audit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/infoseceng/releasegate/internal/audit"
	"github.com/infoseceng/releasegate/internal/classify"
	"github.com/infoseceng/releasegate/internal/gates"
	"github.com/infoseceng/releasegate/internal/githubapi"
	"github.com/infoseceng/releasegate/internal/protection"
	"github.com/infoseceng/releasegate/internal/refdata"
	"github.com/infoseceng/releasegate/internal/report"
	"github.com/infoseceng/releasegate/internal/resolver"
)

const (
	testOrganizationConstant  = "payments-org"
	testRepositoryConstant    = "checkout-service"
	testBranchConstant        = "main"
	testContextConstant       = "checkout-service-ci"
	testOwnerMailboxConstant  = "owners@example.com"
	testPipelineIdentifierInt = 42
)

type stubRepositoryLister struct {
	repositoriesByPage map[int][]githubapi.Repository
	branches           map[string][]githubapi.Branch
	branchesError      error
}

func (lister stubRepositoryLister) ListRepositories(executionContext context.Context, organization string, pageNumber int) ([]githubapi.Repository, error) {
	return lister.repositoriesByPage[pageNumber], nil
}

func (lister stubRepositoryLister) ListBranches(executionContext context.Context, organization string, repository string) ([]githubapi.Branch, error) {
	if lister.branchesError != nil {
		return nil, lister.branchesError
	}
	return lister.branches[repository], nil
}

type stubProtectionExtractor struct {
	factsByRepository map[string]protection.Facts
	extractError      error
}

func (extractor stubProtectionExtractor) Extract(executionContext context.Context, organization string, repository string, branch string) (protection.Facts, error) {
	if extractor.extractError != nil {
		return protection.Facts{}, extractor.extractError
	}
	facts, found := extractor.factsByRepository[repository]
	if !found {
		return protection.Facts{Source: protection.SourceNone}, nil
	}
	return facts, nil
}

type stubContextResolver struct {
	resolutions map[string]resolver.Resolution
}

func (contextResolver stubContextResolver) Resolve(organization string, rawContext string, branch string) resolver.Resolution {
	return contextResolver.resolutions[resolver.NormalizeContext(rawContext)]
}

type stubGateInspector struct {
	statuses           map[string]gates.Status
	standaloneStatuses map[string]gates.Status
}

func (inspector stubGateInspector) Inspect(executionContext context.Context, identity refdata.PipelineIdentity, environment refdata.Environment, contextName string) gates.Status {
	return inspector.statuses[contextName]
}

func (inspector stubGateInspector) InspectStandalone(executionContext context.Context, organization string, repository string, contextName string) gates.Status {
	status, found := inspector.standaloneStatuses[contextName]
	if !found {
		return gates.Status{Context: contextName, PRValidation: gates.PRValidationDisabled, StaticAnalysis: gates.StaticAnalysisNotApplicable}
	}
	return status
}

type stubOwnerLoader struct {
	owners    map[string]string
	loadError error
}

func (loader stubOwnerLoader) LoadOwners(filePath string) (map[string]string, refdata.LoadResult, error) {
	if loader.loadError != nil {
		return nil, refdata.LoadResult{}, loader.loadError
	}
	return loader.owners, refdata.LoadResult{}, nil
}

type recordingSink struct {
	auditRows       map[string][]report.AuditRow
	remediationRows map[string][]report.RemediationRow
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		auditRows:       make(map[string][]report.AuditRow),
		remediationRows: make(map[string][]report.RemediationRow),
	}
}

func (sink *recordingSink) WriteAuditRows(organization string, rows []report.AuditRow) error {
	sink.auditRows[organization] = rows
	return nil
}

func (sink *recordingSink) WriteRemediationRows(organization string, rows []report.RemediationRow) error {
	sink.remediationRows[organization] = rows
	return nil
}

func singleRepositoryLister() stubRepositoryLister {
	return stubRepositoryLister{
		repositoriesByPage: map[int][]githubapi.Repository{
			1: {{Name: testRepositoryConstant}},
		},
		branches: map[string][]githubapi.Branch{
			testRepositoryConstant: {{Name: testBranchConstant}},
		},
	}
}

func compliantCollaborators() (stubProtectionExtractor, stubContextResolver, stubGateInspector) {
	extractor := stubProtectionExtractor{
		factsByRepository: map[string]protection.Facts{
			testRepositoryConstant: {
				RequiresStatusChecks: true,
				Contexts:             []string{testContextConstant},
				Source:               protection.SourceBranchProtection,
			},
		},
	}
	contextResolver := stubContextResolver{
		resolutions: map[string]resolver.Resolution{
			testContextConstant: {
				Found:       true,
				Identity:    refdata.PipelineIdentity{Organization: "ci-org", Project: "ci-project", ID: testPipelineIdentifierInt},
				Environment: refdata.EnvironmentPrimary,
			},
		},
	}
	inspector := stubGateInspector{
		statuses: map[string]gates.Status{
			testContextConstant: {
				Context:        testContextConstant,
				PRValidation:   gates.PRValidationEnabled,
				StaticAnalysis: gates.StaticAnalysisEnabled,
			},
		},
	}
	return extractor, contextResolver, inspector
}

func defaultOptions() audit.Options {
	return audit.Options{
		Organizations:  []string{testOrganizationConstant},
		TargetBranches: []string{testBranchConstant},
		Concurrency:    2,
	}
}

func TestRunRequiresOrganizations(testInstance *testing.T) {
	service := audit.NewService(zap.NewNop(), singleRepositoryLister(), stubProtectionExtractor{}, stubContextResolver{}, stubGateInspector{}, emptyStore(), stubOwnerLoader{}, newRecordingSink())

	_, runError := service.Run(context.Background(), audit.Options{})

	require.ErrorIs(testInstance, runError, audit.ErrNoOrganizations)
}

func TestRunCompliantBranchProducesAuditRowOnly(testInstance *testing.T) {
	extractor, contextResolver, inspector := compliantCollaborators()
	sink := newRecordingSink()
	service := audit.NewService(zap.NewNop(), singleRepositoryLister(), extractor, contextResolver, inspector, emptyStore(), stubOwnerLoader{}, sink)

	summary, runError := service.Run(context.Background(), defaultOptions())

	require.NoError(testInstance, runError)
	require.Equal(testInstance, 1, summary.Organizations)
	require.Equal(testInstance, 1, summary.Repositories)
	require.Equal(testInstance, 1, summary.BranchesAudited)
	require.Equal(testInstance, 1, summary.CompliantBranches)
	require.Zero(testInstance, summary.NonCompliantBranches)

	auditRows := sink.auditRows[testOrganizationConstant]
	require.Len(testInstance, auditRows, 1)
	require.Equal(testInstance, testRepositoryConstant, auditRows[0].Repository)
	require.Equal(testInstance, report.TernaryValueYes, auditRows[0].RequiresStatusChecks)
	require.Equal(testInstance, string(gates.PRValidationEnabled), auditRows[0].PRValidation)
	require.Equal(testInstance, string(protection.SourceBranchProtection), auditRows[0].ProtectionSource)
	require.Empty(testInstance, sink.remediationRows[testOrganizationConstant])
}

func TestRunUnprotectedBranchLandsInRemediationWithOwner(testInstance *testing.T) {
	extractor := stubProtectionExtractor{
		factsByRepository: map[string]protection.Facts{
			testRepositoryConstant: {Source: protection.SourceNone},
		},
	}
	ownerLoader := stubOwnerLoader{
		owners: map[string]string{testRepositoryConstant: testOwnerMailboxConstant},
	}
	sink := newRecordingSink()
	service := audit.NewService(zap.NewNop(), singleRepositoryLister(), extractor, stubContextResolver{}, stubGateInspector{}, emptyStore(), ownerLoader, sink)

	options := defaultOptions()
	options.OwnersDirectory = testInstance.TempDir()
	summary, runError := service.Run(context.Background(), options)

	require.NoError(testInstance, runError)
	require.Equal(testInstance, 1, summary.NonCompliantBranches)

	remediationRows := sink.remediationRows[testOrganizationConstant]
	require.Len(testInstance, remediationRows, 1)
	require.Equal(testInstance, string(classify.ReasonNoStatusChecks), remediationRows[0].Reason)
	require.Equal(testInstance, testOwnerMailboxConstant, remediationRows[0].OwnerEmail)
}

func TestRunIgnoredRepositoryStaysOutOfRemediation(testInstance *testing.T) {
	extractor := stubProtectionExtractor{
		factsByRepository: map[string]protection.Facts{
			testRepositoryConstant: {Source: protection.SourceNone},
		},
	}
	store := refdata.NewStore(refdata.NewPipelineTable(), refdata.NewPipelineTable(), []refdata.IgnoredRepository{
		{Organization: testOrganizationConstant, Repository: testRepositoryConstant},
	})
	sink := newRecordingSink()
	service := audit.NewService(zap.NewNop(), singleRepositoryLister(), extractor, stubContextResolver{}, stubGateInspector{}, store, stubOwnerLoader{}, sink)

	summary, runError := service.Run(context.Background(), defaultOptions())

	require.NoError(testInstance, runError)
	require.Equal(testInstance, 1, summary.NonCompliantBranches)
	require.Len(testInstance, sink.auditRows[testOrganizationConstant], 1)
	require.Empty(testInstance, sink.remediationRows[testOrganizationConstant])
}

func TestRunUnresolvedContextReportsNotFoundDetail(testInstance *testing.T) {
	extractor := stubProtectionExtractor{
		factsByRepository: map[string]protection.Facts{
			testRepositoryConstant: {
				RequiresStatusChecks: true,
				Contexts:             []string{testContextConstant},
				Source:               protection.SourceRuleset,
			},
		},
	}
	sink := newRecordingSink()
	service := audit.NewService(zap.NewNop(), singleRepositoryLister(), extractor, stubContextResolver{}, stubGateInspector{}, emptyStore(), stubOwnerLoader{}, sink)

	_, runError := service.Run(context.Background(), defaultOptions())

	require.NoError(testInstance, runError)
	remediationRows := sink.remediationRows[testOrganizationConstant]
	require.Len(testInstance, remediationRows, 1)
	require.Equal(testInstance, string(classify.ReasonPRValidationDisabled), remediationRows[0].Reason)
	require.Equal(testInstance, string(gates.PRValidationNotFound), remediationRows[0].PRValidation)
	require.Contains(testInstance, remediationRows[0].StaticAnalysisDetail, gates.DetailNotFound)
}

func TestRunStandaloneContextBypassesResolver(testInstance *testing.T) {
	standaloneContext := "pull-request-validation-checkout/ADO"
	extractor := stubProtectionExtractor{
		factsByRepository: map[string]protection.Facts{
			testRepositoryConstant: {
				RequiresStatusChecks: true,
				Contexts:             []string{standaloneContext},
				Source:               protection.SourceBranchProtection,
			},
		},
	}
	inspector := stubGateInspector{
		standaloneStatuses: map[string]gates.Status{
			standaloneContext: {
				Context:        standaloneContext,
				PRValidation:   gates.PRValidationEnabled,
				StaticAnalysis: gates.StaticAnalysisNotApplicable,
			},
		},
	}
	sink := newRecordingSink()
	service := audit.NewService(zap.NewNop(), singleRepositoryLister(), extractor, stubContextResolver{}, inspector, emptyStore(), stubOwnerLoader{}, sink)

	summary, runError := service.Run(context.Background(), defaultOptions())

	require.NoError(testInstance, runError)
	require.Equal(testInstance, 1, summary.CompliantBranches)
	auditRows := sink.auditRows[testOrganizationConstant]
	require.Len(testInstance, auditRows, 1)
	require.Equal(testInstance, string(gates.StaticAnalysisNotApplicable), auditRows[0].StaticAnalysis)
}

func TestRunBranchListingFailureDegradesToErrorRows(testInstance *testing.T) {
	lister := singleRepositoryLister()
	lister.branchesError = errors.New("listing rejected")
	sink := newRecordingSink()
	service := audit.NewService(zap.NewNop(), lister, stubProtectionExtractor{}, stubContextResolver{}, stubGateInspector{}, emptyStore(), stubOwnerLoader{}, sink)

	summary, runError := service.Run(context.Background(), defaultOptions())

	require.NoError(testInstance, runError)
	require.Equal(testInstance, 1, summary.FailedRepositories)

	auditRows := sink.auditRows[testOrganizationConstant]
	require.Len(testInstance, auditRows, 1)
	require.Equal(testInstance, report.TernaryValueNo, auditRows[0].RequiresStatusChecks)
	require.Contains(testInstance, auditRows[0].StaticAnalysisDetail, gates.DetailAPIError)
}

func TestRunSkipsRepositoriesMissingTargetBranch(testInstance *testing.T) {
	lister := singleRepositoryLister()
	lister.branches = map[string][]githubapi.Branch{
		testRepositoryConstant: {{Name: "develop"}},
	}
	sink := newRecordingSink()
	service := audit.NewService(zap.NewNop(), lister, stubProtectionExtractor{}, stubContextResolver{}, stubGateInspector{}, emptyStore(), stubOwnerLoader{}, sink)

	summary, runError := service.Run(context.Background(), defaultOptions())

	require.NoError(testInstance, runError)
	require.Zero(testInstance, summary.BranchesAudited)
	require.Empty(testInstance, sink.auditRows[testOrganizationConstant])
}

func TestRunMatchesTargetBranchCaseInsensitively(testInstance *testing.T) {
	lister := singleRepositoryLister()
	lister.branches = map[string][]githubapi.Branch{
		testRepositoryConstant: {{Name: "Main"}},
	}
	extractor, contextResolver, inspector := compliantCollaborators()
	sink := newRecordingSink()
	service := audit.NewService(zap.NewNop(), lister, extractor, contextResolver, inspector, emptyStore(), stubOwnerLoader{}, sink)

	summary, runError := service.Run(context.Background(), defaultOptions())

	require.NoError(testInstance, runError)
	require.Equal(testInstance, 1, summary.BranchesAudited)
	require.Equal(testInstance, "Main", sink.auditRows[testOrganizationConstant][0].Branch)
}

func emptyStore() *refdata.Store {
	return refdata.NewStore(refdata.NewPipelineTable(), refdata.NewPipelineTable(), nil)
}
