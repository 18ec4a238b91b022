package notify

import (
	"fmt"
	"html"
	"strings"

	gomail "gopkg.in/gomail.v2"

	"github.com/infoseceng/releasegate/internal/report"
)

const (
	fromHeaderNameConstant    = "From"
	toHeaderNameConstant      = "To"
	ccHeaderNameConstant      = "Cc"
	subjectHeaderNameConstant = "Subject"
	htmlBodyContentType       = "text/html"

	tableOpenHTMLConstant  = `<table border="1" cellspacing="0" cellpadding="5" style="border-collapse: collapse; width: 100%;">`
	headerRowStyleConstant = `<tr style="background-color: lightblue; font-weight: bold; text-align: center;">`

	introHTMLConstant = `<p>Hi All,</p>
<p>Static-analysis policy enforcement is expected on all protected branches; the audit found non-compliance for the following cases:</p>
<ul>
<li>Branch protection policy check - status checks to pass before merging is disabled</li>
<li>Branch protection is enabled but the corresponding pipeline is missing for the repo</li>
<li>The pipeline exists but PR validation or the static-analysis task is disabled</li>
</ul>
<p>Below are the non-compliant repositories, please take action as per the attached sheet:</p>`
	outroHTMLConstant = `<p>Thanks,<br>Infosec Team</p>`
)

var remediationTableColumns = []string{
	"Organization",
	"Repository",
	"Branch",
	"Reason",
	"PR Validation",
	"Static Analysis",
	"Detail",
	"Owner",
}

// Settings configures the SMTP delivery of the remediation report.
type Settings struct {
	Host           string
	Port           int
	SenderEmail    string
	SenderPassword string
	Recipients     []string
	CarbonCopy     []string
	Subject        string
}

// MessageSender dials the SMTP server and sends a composed message. It exists
// so tests can capture messages without a live server.
type MessageSender interface {
	DialAndSend(messages ...*gomail.Message) error
}

// Mailer renders and sends the remediation notification.
type Mailer struct {
	settings Settings
	sender   MessageSender
}

// NewMailer constructs a Mailer. A nil sender selects a real SMTP dialer with
// STARTTLS negotiated by the library.
func NewMailer(settings Settings, sender MessageSender) *Mailer {
	if sender == nil {
		sender = gomail.NewDialer(settings.Host, settings.Port, settings.SenderEmail, settings.SenderPassword)
	}
	return &Mailer{settings: settings, sender: sender}
}

// SendRemediationReport emails the non-compliant rows with the CSV attached.
// An empty row set still sends, so owners learn the audit ran clean.
func (mailer *Mailer) SendRemediationReport(rows []report.RemediationRow, attachmentPath string) error {
	message := gomail.NewMessage()
	message.SetHeader(fromHeaderNameConstant, mailer.settings.SenderEmail)
	message.SetHeader(toHeaderNameConstant, mailer.settings.Recipients...)
	if len(mailer.settings.CarbonCopy) > 0 {
		message.SetHeader(ccHeaderNameConstant, mailer.settings.CarbonCopy...)
	}
	message.SetHeader(subjectHeaderNameConstant, mailer.settings.Subject)
	message.SetBody(htmlBodyContentType, BuildHTMLBody(rows))
	if len(strings.TrimSpace(attachmentPath)) > 0 {
		message.Attach(attachmentPath)
	}

	return mailer.sender.DialAndSend(message)
}

// BuildHTMLBody renders the notification body with the remediation table.
func BuildHTMLBody(rows []report.RemediationRow) string {
	var builder strings.Builder
	builder.WriteString(introHTMLConstant)
	builder.WriteString(buildHTMLTable(rows))
	builder.WriteString(outroHTMLConstant)
	return builder.String()
}

func buildHTMLTable(rows []report.RemediationRow) string {
	var builder strings.Builder
	builder.WriteString(tableOpenHTMLConstant)
	builder.WriteString(headerRowStyleConstant)
	for _, columnName := range remediationTableColumns {
		fmt.Fprintf(&builder, "<th style='padding: 5px; white-space: nowrap;'>%s</th>", columnName)
	}
	builder.WriteString("</tr>")

	for _, row := range rows {
		builder.WriteString("<tr>")
		for _, cellValue := range []string{row.Organization, row.Repository, row.Branch, row.Reason, row.PRValidation, row.StaticAnalysis, row.StaticAnalysisDetail, row.OwnerEmail} {
			fmt.Fprintf(&builder, "<td style='padding: 5px;'>%s</td>", html.EscapeString(cellValue))
		}
		builder.WriteString("</tr>")
	}

	builder.WriteString("</table>")
	return builder.String()
}
