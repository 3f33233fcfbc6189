package notify

import (
	"bytes"
	"html/template"
	"strings"
	"time"

	"github.com/riverhouse-belgrade/riverhouse/internal/domain"
)

const (
	adminSubjectPrefix = "Nova rezervacija - "
	visitorSubject     = "Hvala na interesovanju - River House Belgrade"
)

var adminTpl = template.Must(template.New("admin").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.container { max-width: 600px; margin: 0 auto; padding: 20px; }
.header { background: #000; color: #fff; padding: 30px; text-align: center; }
.content { background: #f9f9f9; padding: 30px; }
.field { margin-bottom: 20px; }
.label { font-weight: bold; color: #666; font-size: 12px; text-transform: uppercase; letter-spacing: 1px; }
.value { font-size: 16px; color: #000; margin-top: 5px; }
.message-box { background: #fff; border-left: 4px solid #000; padding: 15px; margin-top: 10px; }
</style>
</head>
<body>
<div class="container">
<div class="header">
<h1 style="margin: 0;">River House Belgrade</h1>
<p style="margin: 10px 0 0 0; opacity: 0.9;">Nova rezervacija</p>
</div>
<div class="content">
<div class="field"><div class="label">Ime i prezime</div><div class="value">{{.FullName}}</div></div>
<div class="field"><div class="label">Email</div><div class="value">{{.Email}}</div></div>
{{if .Phone}}<div class="field"><div class="label">Telefon</div><div class="value">{{.Phone}}</div></div>{{end}}
{{if .MessageLines}}<div class="field"><div class="label">Poruka</div><div class="message-box">{{range $i, $l := .MessageLines}}{{if $i}}<br>{{end}}{{$l}}{{end}}</div></div>{{end}}
</div>
</div>
</body>
</html>`))

var visitorTpl = template.Must(template.New("visitor").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.container { max-width: 600px; margin: 0 auto; padding: 20px; }
.header { background: #000; color: #fff; padding: 30px; text-align: center; }
.content { background: #f9f9f9; padding: 30px; }
.footer { text-align: center; padding: 20px; color: #666; font-size: 12px; }
</style>
</head>
<body>
<div class="container">
<div class="header">
<h1 style="margin: 0;">River House Belgrade</h1>
<p style="margin: 10px 0 0 0; opacity: 0.9;">Raj na vodi</p>
</div>
<div class="content">
<p>Poštovani/na <strong>{{.FullName}}</strong>,</p>
<p>Hvala vam što ste se zainteresovali za River House Belgrade!</p>
<p>Primili smo vašu poruku i javićemo vam se u najkraćem roku sa detaljima o dostupnosti i rezervaciji.</p>
<p>U međuvremenu, možete pogledati našu <a href="{{.SiteURL}}/#galerija" style="color: #000; text-decoration: underline;">galeriju</a> ili nas kontaktirati direktno.</p>
<p>Srdačan pozdrav,<br><strong>River House Belgrade</strong></p>
</div>
<div class="footer">
<p>© {{.Year}} River House Belgrade. Sva prava zadržana.</p>
</div>
</div>
</body>
</html>`))

type templateData struct {
	FullName     string
	Email        string
	Phone        string
	MessageLines []string
	SiteURL      string
	Year         int
}

func newTemplateData(reg *domain.Registration, siteURL string) templateData {
	var lines []string
	if msg := strings.TrimSpace(reg.Message); msg != "" {
		lines = strings.Split(strings.ReplaceAll(msg, "\r\n", "\n"), "\n")
	}
	return templateData{
		FullName:     reg.FullName,
		Email:        reg.Email,
		Phone:        reg.Phone,
		MessageLines: lines,
		SiteURL:      strings.TrimRight(siteURL, "/"),
		Year:         time.Now().Year(),
	}
}

func render(tpl *template.Template, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
