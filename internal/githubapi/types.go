package githubapi

// Repository describes one repository returned by the organization listing.
type Repository struct {
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	DefaultBranch string `json:"default_branch"`
	Archived      bool   `json:"archived"`
}

// Branch describes one branch returned by the branch listing.
type Branch struct {
	Name      string `json:"name"`
	Protected bool   `json:"protected"`
}

// RequiredStatusChecks carries the contexts a protection record enforces.
type RequiredStatusChecks struct {
	Strict   bool     `json:"strict"`
	Contexts []string `json:"contexts"`
}

// BranchProtection models the direct branch-protection record.
type BranchProtection struct {
	RequiredStatusChecks *RequiredStatusChecks `json:"required_status_checks"`
}

// RulesetSummary is one entry of the repository ruleset listing.
type RulesetSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Target      string `json:"target"`
	Enforcement string `json:"enforcement"`
}

// RulesetRefNameCondition lists the ref include/exclude patterns of a ruleset.
type RulesetRefNameCondition struct {
	Include []string `json:"include"`
	Exclude []string `json:"exclude"`
}

// RulesetConditions groups the targeting conditions of a ruleset.
type RulesetConditions struct {
	RefName *RulesetRefNameCondition `json:"ref_name"`
}

// RulesetStatusCheck names one status check a ruleset rule requires.
type RulesetStatusCheck struct {
	Context string `json:"context"`
}

// RulesetRuleParameters carries the parameters of a required-status-checks rule.
type RulesetRuleParameters struct {
	RequiredStatusChecks []RulesetStatusCheck `json:"required_status_checks"`
}

// RulesetRule is one rule inside a ruleset detail record.
type RulesetRule struct {
	Type       string                 `json:"type"`
	Parameters *RulesetRuleParameters `json:"parameters"`
}

// Ruleset models the ruleset detail record.
type Ruleset struct {
	ID         int64              `json:"id"`
	Name       string             `json:"name"`
	Target     string             `json:"target"`
	Conditions *RulesetConditions `json:"conditions"`
	Rules      []RulesetRule      `json:"rules"`
}

// Webhook describes one repository webhook registration.
type Webhook struct {
	ID     int64    `json:"id"`
	Active bool     `json:"active"`
	Events []string `json:"events"`
}

type fileContentResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}
