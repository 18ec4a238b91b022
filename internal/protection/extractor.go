package protection

import (
	"context"
	"strings"

	"github.com/infoseceng/releasegate/internal/githubapi"
)

const (
	branchRulesetTargetConstant      = "branch"
	requiredStatusChecksRuleConstant = "required_status_checks"
	wildcardAllPatternConstant       = "~ALL"
	headsWildcardPatternConstant     = "refs/heads/*"
	headsReferencePrefixConstant     = "refs/heads/"
)

// Extractor reconciles the two upstream branch-protection mechanisms into Facts.
type Extractor struct {
	reader ProtectionReader
}

// NewExtractor constructs an Extractor over the provided reader.
func NewExtractor(reader ProtectionReader) *Extractor {
	return &Extractor{reader: reader}
}

// Extract probes the direct protection record first and rulesets second. The
// first mechanism yielding at least one context is authoritative.
func (extractor *Extractor) Extract(executionContext context.Context, organization string, repository string, branch string) (Facts, error) {
	protectionRecord, protectionError := extractor.reader.GetBranchProtection(executionContext, organization, repository, branch)
	if protectionError != nil {
		return Facts{}, protectionError
	}

	if protectionRecord != nil && protectionRecord.RequiredStatusChecks != nil {
		contexts := dedupeContexts(protectionRecord.RequiredStatusChecks.Contexts)
		if len(contexts) > 0 {
			return Facts{RequiresStatusChecks: true, Contexts: contexts, Source: SourceBranchProtection}, nil
		}
	}

	rulesetContexts, rulesetError := extractor.extractFromRulesets(executionContext, organization, repository, branch)
	if rulesetError != nil {
		return Facts{}, rulesetError
	}
	if len(rulesetContexts) > 0 {
		return Facts{RequiresStatusChecks: true, Contexts: rulesetContexts, Source: SourceRuleset}, nil
	}

	return Facts{RequiresStatusChecks: false, Contexts: nil, Source: SourceNone}, nil
}

func (extractor *Extractor) extractFromRulesets(executionContext context.Context, organization string, repository string, branch string) ([]string, error) {
	summaries, listError := extractor.reader.ListRulesets(executionContext, organization, repository)
	if listError != nil {
		return nil, listError
	}

	for _, summary := range summaries {
		if !strings.EqualFold(summary.Target, branchRulesetTargetConstant) {
			continue
		}

		ruleset, detailError := extractor.reader.GetRuleset(executionContext, organization, repository, summary.ID)
		if detailError != nil {
			return nil, detailError
		}
		if ruleset == nil || !rulesetMatchesBranch(ruleset, branch) {
			continue
		}

		contexts := rulesetRequiredContexts(ruleset)
		if len(contexts) > 0 {
			return contexts, nil
		}
	}

	return nil, nil
}

func rulesetMatchesBranch(ruleset *githubapi.Ruleset, branch string) bool {
	if ruleset.Conditions == nil || ruleset.Conditions.RefName == nil {
		return false
	}
	for _, includePattern := range ruleset.Conditions.RefName.Include {
		if branchPatternMatches(includePattern, branch) {
			return true
		}
	}
	return false
}

func rulesetRequiredContexts(ruleset *githubapi.Ruleset) []string {
	for _, rule := range ruleset.Rules {
		if rule.Type != requiredStatusChecksRuleConstant || rule.Parameters == nil {
			continue
		}
		var contexts []string
		for _, requiredCheck := range rule.Parameters.RequiredStatusChecks {
			contexts = append(contexts, requiredCheck.Context)
		}
		contexts = dedupeContexts(contexts)
		if len(contexts) > 0 {
			return contexts
		}
	}
	return nil
}

func branchPatternMatches(includePattern string, branch string) bool {
	trimmedPattern := strings.TrimSpace(includePattern)
	switch {
	case trimmedPattern == wildcardAllPatternConstant:
		return true
	case trimmedPattern == headsWildcardPatternConstant:
		return true
	case strings.EqualFold(trimmedPattern, headsReferencePrefixConstant+branch):
		return true
	case strings.EqualFold(trimmedPattern, branch):
		return true
	}
	return false
}

func dedupeContexts(rawContexts []string) []string {
	seen := make(map[string]struct{}, len(rawContexts))
	var contexts []string
	for _, rawContext := range rawContexts {
		trimmedContext := strings.TrimSpace(rawContext)
		if len(trimmedContext) == 0 {
			continue
		}
		if _, exists := seen[trimmedContext]; exists {
			continue
		}
		seen[trimmedContext] = struct{}{}
		contexts = append(contexts, trimmedContext)
	}
	return contexts
}
