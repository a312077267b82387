package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/wneessen/go-mail"

	"parlmonitor/internal/domain/parliament"
	"parlmonitor/internal/errs"
	"parlmonitor/internal/ports"
)

var alertTypeLabels = map[parliament.AlertType]string{
	parliament.AlertStatusChange:       "Statusänderung",
	parliament.AlertCommitteeScheduled: "Kommission",
	parliament.AlertDebateScheduled:    "Debatte",
	parliament.AlertNewDocument:        "Dokument",
	parliament.AlertVoteResult:         "Abstimmung",
}

func typeLabel(t parliament.AlertType) string {
	if label, ok := alertTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

type digestRow struct {
	BusinessNumber string
	Title          string
	Type           string
	Message        string
	Date           string
}

var digestTemplate = template.Must(template.New("digest").Parse(`<html>
<body style="font-family: sans-serif; color: #333; max-width: 800px; margin: 0 auto;">
<div style="background: #D52B1E; color: white; padding: 16px 24px;"><h2 style="margin: 0;">Parlamentsmonitor – Neue Alerts</h2></div>
<div style="padding: 24px; border: 1px solid #eee; border-top: none;">
<p>Sie haben <strong>{{len .}}</strong> neue Alert(s):</p>
<table style="width: 100%; border-collapse: collapse;">
<thead><tr><th align="left">Nr.</th><th align="left">Titel</th><th align="left">Typ</th><th align="left">Nachricht</th><th align="left">Termin</th></tr></thead>
<tbody>
{{- range .}}
<tr><td style="font-family: monospace;">{{.BusinessNumber}}</td><td>{{.Title}}</td><td>{{.Type}}</td><td>{{.Message}}</td><td>{{.Date}}</td></tr>
{{- end}}
</tbody>
</table>
<p style="color: #888; font-size: 13px;">Diese E-Mail wurde automatisch vom Parlamentsmonitor gesendet. Sie können die E-Mail-Benachrichtigungen in den Einstellungen deaktivieren.</p>
</div>
</body>
</html>
`))

func digestSubject(items []ports.NotificationItem) string {
	return fmt.Sprintf("Parlamentsmonitor: %d neue Alert(s)", len(items))
}

func plainBody(items []ports.NotificationItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Parlamentsmonitor – %d neue Alert(s)\n\n", len(items))
	for _, item := range items {
		fmt.Fprintf(&b, "- %s: %s\n", item.BusinessNumber, item.Message)
	}
	return b.String()
}

func htmlBody(items []ports.NotificationItem) (string, error) {
	rows := make([]digestRow, 0, len(items))
	for _, item := range items {
		row := digestRow{
			BusinessNumber: item.BusinessNumber,
			Title:          item.BusinessTitle,
			Type:           typeLabel(item.AlertType),
			Message:        item.Message,
		}
		if item.EventDate != nil {
			row.Date = item.EventDate.Format("02.01.2006")
		}
		rows = append(rows, row)
	}

	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, rows); err != nil {
		return "", errs.Wrap(err, "render digest html")
	}
	return buf.String(), nil
}

// composeMessage builds a multipart/alternative mail with a plain text and an
// HTML part.
func composeMessage(from string, to ports.Recipient, items []ports.NotificationItem) (*mail.Msg, error) {
	html, err := htmlBody(items)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg(mail.WithEncoding(mail.NoEncoding), mail.WithCharset(mail.CharsetUTF8))
	if err := msg.From(from); err != nil {
		return nil, errs.Wrapf(err, "set sender %q", from)
	}
	if to.DisplayName != "" {
		err = msg.AddToFormat(to.DisplayName, to.Email)
	} else {
		err = msg.To(to.Email)
	}
	if err != nil {
		return nil, errs.Wrapf(err, "set recipient %q", to.Email)
	}
	msg.Subject(digestSubject(items))
	msg.SetBodyString(mail.TypeTextPlain, plainBody(items))
	msg.AddAlternativeString(mail.TypeTextHTML, html)
	return msg, nil
}
