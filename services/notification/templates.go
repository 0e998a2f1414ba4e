package notification

import (
	"bytes"
	"html/template"
)

var paymentTemplate = template.Must(template.New("payment").Parse(`<p>Dear {{.CustomerName}},</p>
{{if eq .Status "SUCCESS"}}<p>We received your {{if .AutoPay}}autopay {{end}}payment of <strong>{{printf "%.2f" .Amount}}</strong>{{if .InvoiceID}} for invoice {{.InvoiceID}}{{end}}.</p>
{{if .ValidUntil}}<p>Your coverage is paid through {{.ValidUntil.Format "02 Jan 2006"}}.</p>{{end}}
{{else}}<p>Your payment of <strong>{{printf "%.2f" .Amount}}</strong>{{if .InvoiceID}} for invoice {{.InvoiceID}}{{end}} could not be completed. Please try again.</p>
{{end}}{{if .PolicyNames}}<p>Policies: {{range $i, $n := .PolicyNames}}{{if $i}}, {{end}}{{$n}}{{end}}</p>{{end}}`))

var autoPayTemplate = template.Must(template.New("autopay").Parse(`<p>Dear {{.CustomerName}},</p>
{{if .Enabled}}<p>Autopay is now enabled for policy {{.PolicyID}}.</p>
{{if .ShortURL}}<p>Authorise the mandate here: <a href="{{.ShortURL}}">{{.ShortURL}}</a></p>{{end}}
{{else}}<p>Autopay has been turned off{{if .PolicyID}} for policy {{.PolicyID}}{{end}}. Future premiums must be paid from your invoices.</p>
{{end}}`))

var reminderTemplate = template.Must(template.New("reminder").Parse(`<p>Dear {{.CustomerName}},</p>
<p>Invoice {{.InvoiceID}} for <strong>{{printf "%.2f" .Amount}}</strong> is still awaiting payment.</p>
{{if .PaymentLinkURL}}<p>Pay now: <a href="{{.PaymentLinkURL}}">{{.PaymentLinkURL}}</a></p>{{end}}
<p>Coverage on this invoice runs until {{.ValidUntil.Format "02 Jan 2006"}}.</p>`))

var otpTemplate = template.Must(template.New("otp").Parse(`<p>Your verification code is <strong>{{.Code}}</strong>. It expires in {{.Minutes}} minutes.</p>`))

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
