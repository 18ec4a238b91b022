package classify

import (
	"github.com/infoseceng/releasegate/internal/gates"
	"github.com/infoseceng/releasegate/internal/protection"
)

// Reason names the first compliance rule a branch failed, or Compliant.
type Reason string

// Verdict reasons ordered by rule priority.
const (
	ReasonNoStatusChecks         Reason = "NoStatusChecks"
	ReasonNoContextsConfigured   Reason = "NoContextsConfigured"
	ReasonPRValidationDisabled   Reason = "PRValidationDisabled"
	ReasonStaticAnalysisDisabled Reason = "StaticAnalysisDisabled"
	ReasonCompliant              Reason = "Compliant"
)

// Verdict is the compliance outcome for one (organization, repository, branch) triple.
type Verdict struct {
	Compliant bool
	Reason    Reason
}

// Classify evaluates the priority-ordered compliance rules. Inconclusive gate
// states (no_token, not_found, api_error) count against compliance; they are
// kept distinguishable through the gate detail codes, never here.
func Classify(facts protection.Facts, statuses []gates.Status) Verdict {
	if !facts.RequiresStatusChecks {
		return Verdict{Compliant: false, Reason: ReasonNoStatusChecks}
	}

	if len(facts.Contexts) == 0 {
		return Verdict{Compliant: false, Reason: ReasonNoContextsConfigured}
	}

	for _, status := range statuses {
		if status.PRValidation != gates.PRValidationEnabled {
			return Verdict{Compliant: false, Reason: ReasonPRValidationDisabled}
		}
	}

	for _, status := range statuses {
		if status.StaticAnalysis == gates.StaticAnalysisDisabled {
			return Verdict{Compliant: false, Reason: ReasonStaticAnalysisDisabled}
		}
	}

	return Verdict{Compliant: true, Reason: ReasonCompliant}
}
