package audit

import (
	"strings"

	"github.com/infoseceng/releasegate/internal/gates"
	"github.com/infoseceng/releasegate/internal/githubapi"
	"github.com/infoseceng/releasegate/internal/report"
)

const (
	contextSeparatorConstant   = ";"
	detailSeparatorConstant    = "; "
	notApplicableValueConstant = "n/a"
)

// matchBranch finds the repository branch matching the target name
// case-insensitively, returning the branch's actual casing.
func matchBranch(branches []githubapi.Branch, targetBranch string) (string, bool) {
	for _, branch := range branches {
		if strings.EqualFold(branch.Name, targetBranch) {
			return branch.Name, true
		}
	}
	return "", false
}

func auditRowFromBranchAudit(branchAudit BranchAudit) report.AuditRow {
	return report.AuditRow{
		Organization:         branchAudit.Organization,
		Repository:           branchAudit.Repository,
		Branch:               branchAudit.Branch,
		RequiresStatusChecks: ternaryFromBool(branchAudit.Facts.RequiresStatusChecks),
		Contexts:             joinContexts(branchAudit.Facts.Contexts),
		PRValidation:         aggregatePRValidation(branchAudit.Statuses),
		StaticAnalysis:       aggregateStaticAnalysis(branchAudit.Statuses),
		StaticAnalysisDetail: joinDetails(branchAudit.Statuses),
		ProtectionSource:     string(branchAudit.Facts.Source),
	}
}

func remediationRowFromBranchAudit(branchAudit BranchAudit) report.RemediationRow {
	return report.RemediationRow{
		Organization:         branchAudit.Organization,
		Repository:           branchAudit.Repository,
		Branch:               branchAudit.Branch,
		Reason:               string(branchAudit.Verdict.Reason),
		Contexts:             joinContexts(branchAudit.Facts.Contexts),
		PRValidation:         aggregatePRValidation(branchAudit.Statuses),
		StaticAnalysis:       aggregateStaticAnalysis(branchAudit.Statuses),
		StaticAnalysisDetail: joinDetails(branchAudit.Statuses),
		OwnerEmail:           branchAudit.OwnerEmail,
	}
}

func ternaryFromBool(value bool) report.TernaryValue {
	if value {
		return report.TernaryValueYes
	}
	return report.TernaryValueNo
}

func joinContexts(contexts []string) string {
	return strings.Join(contexts, contextSeparatorConstant)
}

// aggregatePRValidation reports the first failing state so the row names the
// context state that actually decided the verdict.
func aggregatePRValidation(statuses []gates.Status) string {
	if len(statuses) == 0 {
		return notApplicableValueConstant
	}
	for _, status := range statuses {
		if status.PRValidation != gates.PRValidationEnabled {
			return string(status.PRValidation)
		}
	}
	return string(gates.PRValidationEnabled)
}

// aggregateStaticAnalysis orders states by severity: disabled beats error,
// error beats enabled, enabled beats not_applicable.
func aggregateStaticAnalysis(statuses []gates.Status) string {
	if len(statuses) == 0 {
		return notApplicableValueConstant
	}
	aggregated := gates.StaticAnalysisNotApplicable
	for _, status := range statuses {
		if staticAnalysisSeverity(status.StaticAnalysis) > staticAnalysisSeverity(aggregated) {
			aggregated = status.StaticAnalysis
		}
	}
	return string(aggregated)
}

func staticAnalysisSeverity(state gates.StaticAnalysisState) int {
	switch state {
	case gates.StaticAnalysisDisabled:
		return 3
	case gates.StaticAnalysisError:
		return 2
	case gates.StaticAnalysisEnabled:
		return 1
	default:
		return 0
	}
}

func joinDetails(statuses []gates.Status) string {
	var details []string
	for _, status := range statuses {
		if len(status.Detail) == 0 {
			continue
		}
		if len(status.Context) > 0 {
			details = append(details, status.Context+": "+status.Detail)
			continue
		}
		details = append(details, status.Detail)
	}
	return strings.Join(details, detailSeparatorConstant)
}
