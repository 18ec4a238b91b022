// Package azdo implements the read-only Azure DevOps client used to inspect
// build definitions: trigger lists, the classic phase/step tree, and the YAML
// definition metadata.
package azdo
