package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	auditFileNameTemplateConstant   = "%s_audit.csv"
	remediationFileNameConstant     = "noncompliant_repos.csv"
	reportFileCreateErrorTemplate   = "unable to create report file %s: %w"
	reportFileWriteErrorTemplate    = "unable to write report file %s: %w"
	outputDirectoryErrorTemplate    = "unable to create output directory %s: %w"
	outputDirectoryPermissionsOctal = 0o755
)

var auditHeader = []string{
	"organization",
	"repository",
	"branch",
	"requires_status_checks",
	"contexts",
	"pr_validation",
	"static_analysis",
	"static_analysis_detail",
	"protection_source",
}

var remediationHeader = []string{
	"organization",
	"repository",
	"branch",
	"reason",
	"contexts",
	"pr_validation",
	"static_analysis",
	"static_analysis_detail",
	"owner_email",
}

// CSVSink writes audit and remediation reports beneath one output directory.
// Each organization receives its own audit file; remediation rows accumulate
// in a single shared file across the run.
type CSVSink struct {
	outputDirectory string
	remediationRows []RemediationRow
}

// NewCSVSink constructs a sink rooted at outputDirectory, creating it when absent.
func NewCSVSink(outputDirectory string) (*CSVSink, error) {
	if makeError := os.MkdirAll(outputDirectory, outputDirectoryPermissionsOctal); makeError != nil {
		return nil, fmt.Errorf(outputDirectoryErrorTemplate, outputDirectory, makeError)
	}
	return &CSVSink{outputDirectory: outputDirectory}, nil
}

// WriteAuditRows persists the full audit report for one organization.
func (sink *CSVSink) WriteAuditRows(organization string, rows []AuditRow) error {
	filePath := filepath.Join(sink.outputDirectory, fmt.Sprintf(auditFileNameTemplateConstant, sanitizeFileComponent(organization)))

	records := make([][]string, 0, len(rows)+1)
	records = append(records, auditHeader)
	for _, row := range rows {
		records = append(records, row.CSVRecord())
	}
	return writeCSVFile(filePath, records)
}

// WriteRemediationRows buffers an organization's non-compliant rows; Flush
// writes the cumulative remediation file.
func (sink *CSVSink) WriteRemediationRows(organization string, rows []RemediationRow) error {
	sink.remediationRows = append(sink.remediationRows, rows...)
	return nil
}

// RemediationFilePath names the cumulative remediation file the sink writes.
func (sink *CSVSink) RemediationFilePath() string {
	return filepath.Join(sink.outputDirectory, remediationFileNameConstant)
}

// RemediationRows exposes the buffered non-compliant rows for notification.
func (sink *CSVSink) RemediationRows() []RemediationRow {
	return sink.remediationRows
}

// Flush writes the cumulative remediation report.
func (sink *CSVSink) Flush() error {
	records := make([][]string, 0, len(sink.remediationRows)+1)
	records = append(records, remediationHeader)
	for _, row := range sink.remediationRows {
		records = append(records, row.CSVRecord())
	}
	return writeCSVFile(sink.RemediationFilePath(), records)
}

func writeCSVFile(filePath string, records [][]string) error {
	fileHandle, createError := os.Create(filePath)
	if createError != nil {
		return fmt.Errorf(reportFileCreateErrorTemplate, filePath, createError)
	}
	defer fileHandle.Close()

	csvWriter := csv.NewWriter(fileHandle)
	for _, record := range records {
		if writeError := csvWriter.Write(record); writeError != nil {
			return fmt.Errorf(reportFileWriteErrorTemplate, filePath, writeError)
		}
	}
	csvWriter.Flush()
	if flushError := csvWriter.Error(); flushError != nil {
		return fmt.Errorf(reportFileWriteErrorTemplate, filePath, flushError)
	}
	return nil
}

func sanitizeFileComponent(component string) string {
	sanitized := strings.TrimSpace(component)
	sanitized = strings.ReplaceAll(sanitized, string(os.PathSeparator), "-")
	if len(sanitized) == 0 {
		sanitized = "organization"
	}
	return sanitized
}
