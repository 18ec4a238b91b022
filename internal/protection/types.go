package protection

// Source names the mechanism that supplied the required contexts.
type Source string

// Supported protection sources.
const (
	SourceNone             Source = "none"
	SourceBranchProtection Source = "branch_protection"
	SourceRuleset          Source = "ruleset"
)

// Facts captures what the audited branch requires before merges.
//
// RequiresStatusChecks=false always pairs with an empty Contexts slice.
type Facts struct {
	RequiresStatusChecks bool
	Contexts             []string
	Source               Source
}
