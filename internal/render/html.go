package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/WILMAR-10/wilpos-print-agent/pkg/printjob"
)

// ReceiptHTML renders a receipt job as a standalone HTML page sized for
// thermal tape. Only receipts export to PDF; other kinds have no archival
// document form.
func ReceiptHTML(job printjob.Job) (string, error) {
	if job.Kind != printjob.KindReceipt || job.Receipt == nil {
		return "", fmt.Errorf("pdf export supports receipt jobs only, got %s", job.Kind)
	}

	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, job.Receipt); err != nil {
		return "", fmt.Errorf("failed to execute receipt template: %w", err)
	}
	return buf.String(), nil
}

var receiptTemplate = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: "Courier New", monospace; font-size: 12px; width: 72mm; margin: 0 auto; color: #000; }
  .center { text-align: center; }
  .name { font-size: 18px; font-weight: bold; }
  .row { display: flex; justify-content: space-between; }
  .row span:last-child { white-space: nowrap; padding-left: 8px; }
  .emphasis { font-weight: bold; font-size: 15px; }
  hr { border: none; border-top: 1px dashed #000; }
</style>
</head>
<body>
  <div class="center">
    <div class="name">{{.Header.Name}}</div>
    {{range .Header.Lines}}<div>{{.}}</div>{{end}}
    {{if .Header.TaxID}}<div>{{.Header.TaxID}}</div>{{end}}
  </div>
  {{if or .TicketNumber .Timestamp}}<div class="row"><span>{{.TicketNumber}}</span><span>{{.Timestamp}}</span></div>{{end}}
  {{if .Operator}}<div>{{.Operator}}</div>{{end}}
  <hr>
  {{range .Items}}
    {{if .Quantity}}
      <div>{{.Description}}</div>
      <div class="row"><span>&nbsp;&nbsp;{{.Quantity}}{{if .UnitPrice}} x {{.UnitPrice}}{{end}}</span><span>{{.Amount}}</span></div>
    {{else}}
      <div class="row"><span>{{.Description}}</span><span>{{.Amount}}</span></div>
    {{end}}
  {{end}}
  <hr>
  {{range .Totals}}<div class="row{{if .Emphasis}} emphasis{{end}}"><span>{{.Label}}</span><span>{{.Amount}}</span></div>{{end}}
  {{if .Payments}}<br>{{range .Payments}}<div class="row"><span>{{.Label}}</span><span>{{.Amount}}</span></div>{{end}}{{end}}
  {{if .Footer}}<br><div class="center">{{range .Footer}}<div>{{.}}</div>{{end}}</div>{{end}}
</body>
</html>`))
