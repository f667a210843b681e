package mailer

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

//go:embed templates/*
var templateFS embed.FS

var subjects = map[Kind]string{
	KindNewAccount:       "%s - New account",
	KindResetPassword:    "%s - Password recovery",
	KindVerificationCode: "%s - Your verification code",
}

type Message struct {
	Subject string
	Text    string
	HTML    string
}

type Renderer struct {
	appName   string
	webAppURL string
	html      *htmltemplate.Template
	text      *texttemplate.Template
}

func NewRenderer(appName, webAppURL string) (*Renderer, error) {
	html, err := htmltemplate.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse html templates: %w", err)
	}
	text, err := texttemplate.ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("parse text templates: %w", err)
	}
	return &Renderer{appName: appName, webAppURL: webAppURL, html: html, text: text}, nil
}

// Render fills the templates for kind. ProjectName and WebAppURL are always
// available to templates.
func (r *Renderer) Render(kind Kind, to string, data map[string]any) (*Message, error) {
	subject, ok := subjects[kind]
	if !ok {
		return nil, fmt.Errorf("unknown email kind %q", kind)
	}

	vars := map[string]any{
		"ProjectName": r.appName,
		"WebAppURL":   r.webAppURL,
		"Email":       to,
	}
	for k, v := range data {
		vars[k] = v
	}

	var htmlBuf, textBuf bytes.Buffer
	if err := r.html.ExecuteTemplate(&htmlBuf, string(kind)+".html", vars); err != nil {
		return nil, fmt.Errorf("render %s html: %w", kind, err)
	}
	if err := r.text.ExecuteTemplate(&textBuf, string(kind)+".txt", vars); err != nil {
		return nil, fmt.Errorf("render %s text: %w", kind, err)
	}

	return &Message{
		Subject: fmt.Sprintf(subject, r.appName),
		Text:    textBuf.String(),
		HTML:    htmlBuf.String(),
	}, nil
}
