// Package refdata holds the reference data consulted while auditing
// repositories: the dual-environment build pipeline tables, the repository
// owner table, and the set of repositories excluded from remediation
// reporting.
//
// Pipeline and ignore tables are loaded once per run and are read-only
// afterwards. The owner table is replaced at the start of every organization.
package refdata
