package report

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// bodyTemplate mirrors the layout of the report mail: heading with the period
// label, one table row per item, and a closing instruction for the safety team.
var bodyTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"shortDate": func(t time.Time) string { return t.Format("02/01/2006") },
}).Parse(`<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
  <h2 style="color: #b71c1c; text-align: center;">Monthly Report of Expired and Expiring Safety Equipment ({{.PeriodLabel}})</h2>
  <p>The following equipment assignments are <b>expired</b> or will expire during <b>{{.PeriodLabel}}</b>:</p>

  <table style="width: 100%; border-collapse: collapse; margin-top: 10px;">
    <thead style="background-color: #d32f2f; color: white;">
      <tr>
        <th style="padding: 8px; border: 1px solid #ccc;">Employee</th>
        <th style="padding: 8px; border: 1px solid #ccc;">Registration</th>
        <th style="padding: 8px; border: 1px solid #ccc;">Equipment</th>
        <th style="padding: 8px; border: 1px solid #ccc;">Certification</th>
        <th style="padding: 8px; border: 1px solid #ccc;">Expiry</th>
        <th style="padding: 8px; border: 1px solid #ccc;">Status</th>
      </tr>
    </thead>
    <tbody>
      {{- range .Items}}
      <tr>
        <td style="padding: 8px; border: 1px solid #ccc;">{{.Record.HolderName}}</td>
        <td style="padding: 8px; border: 1px solid #ccc;">{{.Record.RegistrationID}}</td>
        <td style="padding: 8px; border: 1px solid #ccc;">{{.Record.EquipmentName}}</td>
        <td style="padding: 8px; border: 1px solid #ccc;">{{.Record.CertificationID}}</td>
        <td style="padding: 8px; border: 1px solid #ccc;">{{shortDate .Record.ExpiryDate}}</td>
        <td style="padding: 8px; border: 1px solid #ccc;">{{.Status.Label}}</td>
      </tr>
      {{- end}}
    </tbody>
  </table>

  <p style="margin-top:20px;">Please verify the items above and arrange replacements where needed.</p>
  <p style="color:#555;">Regards,<br><strong>Workplace Safety Team</strong></p>
</div>
`))

// Subject returns the subject line for the report mail.
func (r Report) Subject() string {
	return fmt.Sprintf("Monthly Report - safety equipment expired or expiring (%s)", r.PeriodLabel)
}

// RenderHTML renders the report into the notification body shared by all
// recipients of a run. It is pure rendering: swapping the markup never touches
// scan, aggregation or dispatch logic.
func (r Report) RenderHTML() (string, error) {
	var buf bytes.Buffer
	if err := bodyTemplate.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("error rendering report body: %w", err)
	}
	return buf.String(), nil
}
