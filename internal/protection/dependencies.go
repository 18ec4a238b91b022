package protection

import (
	"context"

	"github.com/infoseceng/releasegate/internal/githubapi"
)

// ProtectionReader exposes the subset of the source-control API the extractor consumes.
type ProtectionReader interface {
	GetBranchProtection(executionContext context.Context, organization string, repository string, branch string) (*githubapi.BranchProtection, error)
	ListRulesets(executionContext context.Context, organization string, repository string) ([]githubapi.RulesetSummary, error)
	GetRuleset(executionContext context.Context, organization string, repository string, rulesetID int64) (*githubapi.Ruleset, error)
}
