package report

// TernaryValue renders boolean report fields the way operators read them.
type TernaryValue string

// Supported ternary values.
const (
	TernaryValueYes TernaryValue = "yes"
	TernaryValueNo  TernaryValue = "no"
)

// AuditRow is one full audit record for a (organization, repository, branch) triple.
type AuditRow struct {
	Organization         string
	Repository           string
	Branch               string
	RequiresStatusChecks TernaryValue
	Contexts             string
	PRValidation         string
	StaticAnalysis       string
	StaticAnalysisDetail string
	ProtectionSource     string
}

// CSVRecord returns the row formatted for CSV encoding.
func (row AuditRow) CSVRecord() []string {
	return []string{
		row.Organization,
		row.Repository,
		row.Branch,
		string(row.RequiresStatusChecks),
		row.Contexts,
		row.PRValidation,
		row.StaticAnalysis,
		row.StaticAnalysisDetail,
		row.ProtectionSource,
	}
}

// RemediationRow is one non-compliant record enriched with the owner mailbox.
type RemediationRow struct {
	Organization         string
	Repository           string
	Branch               string
	Reason               string
	Contexts             string
	PRValidation         string
	StaticAnalysis       string
	StaticAnalysisDetail string
	OwnerEmail           string
}

// CSVRecord returns the row formatted for CSV encoding.
func (row RemediationRow) CSVRecord() []string {
	return []string{
		row.Organization,
		row.Repository,
		row.Branch,
		row.Reason,
		row.Contexts,
		row.PRValidation,
		row.StaticAnalysis,
		row.StaticAnalysisDetail,
		row.OwnerEmail,
	}
}
