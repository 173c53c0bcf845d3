package service

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/files-coaching/contact-relay/internal/models"
)

const missingValue = "-"

const clientHTMLTemplate = `<div style="font-family:system-ui,Segoe UI,Roboto,Arial;color:#222">
  <h2>Merci{{with .FirstName}} {{.}}{{end}} !</h2>
  <p>Ta demande de coaching est bien arrivée chez {{.Brand}}. Je reviens vers toi très vite pour organiser un premier échange.</p>
  <hr style="border:none;border-top:1px solid #eee;margin:16px 0" />
  <h3>Récapitulatif</h3>
  <ul>
{{- range .Rows}}
    <li><b>{{.Label}} :</b> {{range $i, $line := .Lines}}{{if $i}}<br>{{end}}{{$line}}{{end}}</li>
{{- end}}
  </ul>
  <p style="color:#888">{{.Brand}}</p>
</div>`

const clientTextTemplate = `Merci{{with .FirstName}} {{.}}{{end}} !

Ta demande de coaching est bien arrivée chez {{.Brand}}. Je reviens vers toi très vite pour organiser un premier échange.

Récapitulatif :
{{- range .Rows}}
- {{.Label}} : {{.Text}}
{{- end}}

{{.Brand}}
`

const adminHTMLTemplate = `<div style="font-family:system-ui,Segoe UI,Roboto,Arial;color:#222">
  <h2>Nouvelle demande de coaching{{if .Test}} (test){{end}}</h2>
  <ul>
{{- range .Rows}}
    <li><b>{{.Label}} :</b> {{range $i, $line := .Lines}}{{if $i}}<br>{{end}}{{$line}}{{end}}</li>
{{- end}}
  </ul>
</div>`

const adminTextTemplate = `Nouvelle demande de coaching{{if .Test}} (test){{end}}
{{range .Rows}}
- {{.Label}} : {{.Text}}
{{- end}}
`

// RenderedMessage is one message body in both HTML and plain-text form.
type RenderedMessage struct {
	Subject string
	HTML    string
	Text    string
}

// RenderedPair holds the client acknowledgement and the admin notification.
type RenderedPair struct {
	Client RenderedMessage
	Admin  RenderedMessage
}

type fieldRow struct {
	Label string
	Text  string
	Lines []string
}

type messageView struct {
	Brand     string
	FirstName string
	Test      bool
	Rows      []fieldRow
}

// TemplateRenderer renders the two relay messages from a Submission.
type TemplateRenderer struct {
	brand      string
	clientHTML *htmltemplate.Template
	clientText *texttemplate.Template
	adminHTML  *htmltemplate.Template
	adminText  *texttemplate.Template
}

// NewTemplateRenderer parses the message templates once.
func NewTemplateRenderer(brand string) *TemplateRenderer {
	if strings.TrimSpace(brand) == "" {
		brand = "Files Coaching"
	}
	return &TemplateRenderer{
		brand:      brand,
		clientHTML: htmltemplate.Must(htmltemplate.New("client_html").Parse(clientHTMLTemplate)),
		clientText: texttemplate.Must(texttemplate.New("client_text").Parse(clientTextTemplate)),
		adminHTML:  htmltemplate.Must(htmltemplate.New("admin_html").Parse(adminHTMLTemplate)),
		adminText:  texttemplate.Must(texttemplate.New("admin_text").Parse(adminTextTemplate)),
	}
}

// Render produces both messages. Missing fields render as "-".
func (r *TemplateRenderer) Render(submission models.Submission, mode models.Mode) (RenderedPair, error) {
	view := messageView{
		Brand:     r.brand,
		FirstName: singleLine(submission.FirstName),
		Test:      mode.IsTest(),
		Rows:      buildRows(submission),
	}

	client, err := r.renderOne(r.clientHTML, r.clientText, view)
	if err != nil {
		return RenderedPair{}, fmt.Errorf("render client message: %w", err)
	}
	admin, err := r.renderOne(r.adminHTML, r.adminText, view)
	if err != nil {
		return RenderedPair{}, fmt.Errorf("render admin message: %w", err)
	}

	client.Subject = clientSubject(r.brand, submission, mode)
	admin.Subject = adminSubject(submission, mode)

	return RenderedPair{Client: client, Admin: admin}, nil
}

func (r *TemplateRenderer) renderOne(html *htmltemplate.Template, text *texttemplate.Template, view messageView) (RenderedMessage, error) {
	var htmlBuf, textBuf bytes.Buffer
	if err := html.Execute(&htmlBuf, view); err != nil {
		return RenderedMessage{}, err
	}
	if err := text.Execute(&textBuf, view); err != nil {
		return RenderedMessage{}, err
	}
	return RenderedMessage{HTML: htmlBuf.String(), Text: textBuf.String()}, nil
}

func buildRows(s models.Submission) []fieldRow {
	pairs := []struct {
		label string
		value string
	}{
		{"Prénom", s.FirstName},
		{"Âge", s.Age},
		{"Poids", s.Weight},
		{"Taille", s.Height},
		{"Niveau", s.Level},
		{"Objectif", s.Goal},
		{"Disponibilités", s.Schedule},
		{"Lieu", s.Location},
		{"Matériel", s.Equipment},
		{"Email", s.Email},
	}

	rows := make([]fieldRow, 0, len(pairs))
	for _, pair := range pairs {
		value := orMissing(pair.value)
		rows = append(rows, fieldRow{
			Label: pair.label,
			Text:  value,
			Lines: strings.Split(value, "\n"),
		})
	}
	return rows
}

func clientSubject(brand string, s models.Submission, mode models.Mode) string {
	subject := fmt.Sprintf("Ta demande de coaching est bien reçue | %s", brand)
	if name := singleLine(s.FirstName); name != "" {
		subject = fmt.Sprintf("Merci %s, ta demande de coaching est bien reçue | %s", name, brand)
	}
	return withTestPrefix(subject, mode)
}

func adminSubject(s models.Submission, mode models.Mode) string {
	subject := fmt.Sprintf("Nouvelle demande de coaching : %s (%s)", orMissing(singleLine(s.FirstName)), orMissing(singleLine(s.Email)))
	return withTestPrefix(subject, mode)
}

func withTestPrefix(subject string, mode models.Mode) string {
	if mode.IsTest() {
		return "[TEST] " + subject
	}
	return subject
}

func singleLine(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

func orMissing(value string) string {
	if strings.TrimSpace(value) == "" {
		return missingValue
	}
	return value
}
