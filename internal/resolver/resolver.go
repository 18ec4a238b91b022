package resolver

import (
	"regexp"
	"strings"

	"github.com/infoseceng/releasegate/internal/refdata"
)

const (
	mainBranchNameConstant         = "main"
	standaloneContextPatternString = `^pull-request-validation-.+/ADO$`
	surroundingQuoteCutsetConstant = `"'`
)

var standaloneContextPattern = regexp.MustCompile(standaloneContextPatternString)

// Resolution is the tagged outcome of a context lookup. When Found is false
// the identity and environment fields are zero values; NotFound is a valid
// audit fact, not an error.
type Resolution struct {
	Found       bool
	Identity    refdata.PipelineIdentity
	Environment refdata.Environment
}

// Service resolves status-check contexts against the reference data store.
type Service struct {
	store                 *refdata.Store
	strategicOrganization string
	strategicProject      string
}

// NewService constructs a resolver over the provided store. The strategic
// organization receives a fixed project-scoped lookup ahead of the standard
// branch-derived fallback chain.
func NewService(store *refdata.Store, strategicOrganization string, strategicProject string) *Service {
	return &Service{
		store:                 store,
		strategicOrganization: strings.TrimSpace(strategicOrganization),
		strategicProject:      strings.TrimSpace(strategicProject),
	}
}

// IsStandaloneContext reports whether the raw context denotes a standalone
// repository validated purely through a GitHub webhook.
func IsStandaloneContext(rawContext string) bool {
	return standaloneContextPattern.MatchString(NormalizeContext(rawContext))
}

// NormalizeContext strips surrounding whitespace and quoting from an
// untrusted context string before any lookup.
func NormalizeContext(rawContext string) string {
	normalized := strings.TrimSpace(rawContext)
	normalized = strings.Trim(normalized, surroundingQuoteCutsetConstant)
	return strings.TrimSpace(normalized)
}

type lookupStrategy struct {
	environment refdata.Environment
	lookup      func(table *refdata.PipelineTable) (refdata.PipelineIdentity, bool)
}

// Resolve maps a raw context string to a pipeline identity. The branch decides
// which environment table is consulted first outside the strategic override.
func (service *Service) Resolve(organization string, rawContext string, branch string) Resolution {
	normalizedContext := NormalizeContext(rawContext)
	if len(normalizedContext) == 0 {
		return Resolution{}
	}

	for _, strategy := range service.buildStrategies(organization, normalizedContext, branch) {
		table := service.store.PipelineTableFor(strategy.environment)
		if identity, found := strategy.lookup(table); found {
			return Resolution{Found: true, Identity: identity, Environment: strategy.environment}
		}
	}

	return Resolution{}
}

func (service *Service) buildStrategies(organization string, normalizedContext string, branch string) []lookupStrategy {
	var strategies []lookupStrategy

	if len(service.strategicOrganization) > 0 && strings.EqualFold(strings.TrimSpace(organization), service.strategicOrganization) {
		for _, environment := range []refdata.Environment{refdata.EnvironmentPrimary, refdata.EnvironmentSecondary} {
			strategies = append(strategies, lookupStrategy{
				environment: environment,
				lookup: func(table *refdata.PipelineTable) (refdata.PipelineIdentity, bool) {
					return table.LookupByProjectAndName(service.strategicProject, normalizedContext)
				},
			})
		}
	}

	preferredEnvironment := refdata.EnvironmentSecondary
	if strings.EqualFold(strings.TrimSpace(branch), mainBranchNameConstant) {
		preferredEnvironment = refdata.EnvironmentPrimary
	}
	fallbackEnvironment := refdata.EnvironmentPrimary
	if preferredEnvironment == refdata.EnvironmentPrimary {
		fallbackEnvironment = refdata.EnvironmentSecondary
	}

	for _, environment := range []refdata.Environment{preferredEnvironment, fallbackEnvironment} {
		strategies = append(strategies, lookupStrategy{
			environment: environment,
			lookup: func(table *refdata.PipelineTable) (refdata.PipelineIdentity, bool) {
				return table.LookupByDisplayName(normalizedContext)
			},
		})
	}

	return strategies
}
