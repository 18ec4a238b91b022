// Package report persists audit outcomes: one full audit CSV per organization
// and a cumulative remediation CSV of non-compliant repositories with their
// owner mailboxes.
package report
