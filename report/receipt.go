package report

import (
	"bytes"
	"fmt"
	"html/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tradewind-erp/tradewind/internal/pos"
)

var receiptTmpl = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Number}}</title>
<style>
body { font-family: monospace; width: 280px; margin: 0 auto; }
table { width: 100%; border-collapse: collapse; }
td { padding: 2px 0; }
.amount { text-align: right; }
.totals td { border-top: 1px dashed #000; }
</style>
</head>
<body>
<h3>Sale {{.Number}}</h3>
<p>{{.IssuedAt}}{{if .Terminal}} &middot; {{.Terminal}}{{end}}</p>
<table>
{{range .Lines}}<tr><td>{{.Quantity}} x {{.Name}}</td><td class="amount">{{.Total}}</td></tr>
{{end}}<tr class="totals"><td>Subtotal</td><td class="amount">{{.Subtotal}}</td></tr>
<tr><td>Tax</td><td class="amount">{{.TaxTotal}}</td></tr>
<tr><td><strong>Total</strong></td><td class="amount"><strong>{{.Total}}</strong></td></tr>
{{if .Paid}}<tr><td>Paid ({{.Method}})</td><td class="amount">{{.Paid}}</td></tr>
<tr><td>Change</td><td class="amount">{{.Change}}</td></tr>{{end}}
</table>
<p>Thank you for your purchase.</p>
</body>
</html>`))

type receiptLine struct {
	Quantity string
	Name     string
	Total    string
}

type receiptData struct {
	Number   string
	IssuedAt string
	Terminal string
	Lines    []receiptLine
	Subtotal string
	TaxTotal string
	Total    string
	Method   string
	Paid     string
	Change   string
}

// ReceiptHTML renders a completed sale into printable receipt markup.
func ReceiptHTML(sale *pos.Sale) (string, error) {
	if sale == nil {
		return "", fmt.Errorf("report: sale required")
	}
	printer := message.NewPrinter(language.English)

	data := receiptData{
		Number:   sale.Number,
		Subtotal: sale.Subtotal.StringFixed(2),
		TaxTotal: sale.TaxTotal.StringFixed(2),
		Total:    sale.Total.StringFixed(2),
	}
	if sale.CompletedAt != nil {
		data.IssuedAt = sale.CompletedAt.Format("2006-01-02 15:04")
	} else {
		data.IssuedAt = sale.CreatedAt.Format("2006-01-02 15:04")
	}
	if sale.TerminalID != nil {
		data.Terminal = *sale.TerminalID
	}
	for _, item := range sale.Items {
		data.Lines = append(data.Lines, receiptLine{
			Quantity: printer.Sprintf("%d", item.Quantity),
			Name:     item.ProductName,
			Total:    item.LineTotal.StringFixed(2),
		})
	}
	if len(sale.Payments) > 0 {
		payment := sale.Payments[len(sale.Payments)-1]
		data.Method = string(payment.Method)
		data.Paid = payment.Amount.StringFixed(2)
		data.Change = payment.Amount.Sub(sale.Total).StringFixed(2)
	}

	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, &data); err != nil {
		return "", fmt.Errorf("report: render receipt: %w", err)
	}
	return buf.String(), nil
}
