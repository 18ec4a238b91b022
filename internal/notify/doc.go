// Package notify emails the remediation report after a run: the non-compliant
// rows rendered as an HTML table in the message body, with the CSV report
// attached.
package notify
