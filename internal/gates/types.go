package gates

// PRValidationState describes whether a pipeline validates pull requests.
type PRValidationState string

// Supported pull-request validation states.
const (
	PRValidationEnabled  PRValidationState = "enabled"
	PRValidationDisabled PRValidationState = "disabled"
	PRValidationNotFound PRValidationState = "not_found"
	PRValidationNoToken  PRValidationState = "no_token"
)

// StaticAnalysisState describes the state of the static-analysis gate.
type StaticAnalysisState string

// Supported static-analysis states.
const (
	StaticAnalysisEnabled       StaticAnalysisState = "enabled"
	StaticAnalysisDisabled      StaticAnalysisState = "disabled"
	StaticAnalysisNotApplicable StaticAnalysisState = "not_applicable"
	StaticAnalysisError         StaticAnalysisState = "error"
)

// Detail codes surfaced alongside gate states. They keep "verified
// non-compliant" distinguishable from "inconclusive" in every report row.
const (
	DetailNoCheckmarx     = "no_checkmarx"
	DetailNoToken         = "no_token"
	DetailNotFound        = "not_found"
	DetailAPIError        = "api_error"
	DetailYAMLFetchError  = "yaml_fetch_error"
	DetailYAMLDecodeError = "yaml_decode_error"
)

// Status is the inspection outcome for one status-check context.
type Status struct {
	Context        string
	PRValidation   PRValidationState
	StaticAnalysis StaticAnalysisState
	Detail         string
}
