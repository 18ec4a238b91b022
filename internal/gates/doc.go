// Package gates inspects resolved build pipelines for the two release gates
// the audit verifies: a pull-request trigger and an enabled Checkmarx
// static-analysis task.
//
// Classic definitions are inspected through their phase/step tree; YAML
// definitions through their definition file fetched from source control. The
// YAML disable detection is a line-window heuristic isolated behind the
// YAMLGateScanner interface so a structured parse can replace it later.
package gates
