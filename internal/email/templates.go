package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
	CTALabel   string
	CTAURL     string
}

type quoteEmailData struct {
	baseEmailData
	ClientName  string
	CompanyName string
	QuoteNumber string
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func renderQuoteReady(clientName, companyName, quoteNumber, shareURL string) (string, error) {
	return renderEmailTemplate("quote_ready.html", quoteEmailData{
		baseEmailData: baseEmailData{
			Title:    "Votre devis est prêt",
			Heading:  "Votre devis est prêt",
			CTALabel: "Consulter le devis",
			CTAURL:   shareURL,
		},
		ClientName:  clientName,
		CompanyName: companyName,
		QuoteNumber: quoteNumber,
	})
}

func renderLeadQuoteReady(clientName, companyName, quoteNumber, shareURL string) (string, error) {
	return renderEmailTemplate("lead_quote_ready.html", quoteEmailData{
		baseEmailData: baseEmailData{
			Title:      "Le devis pour votre demande",
			Heading:    "Le devis pour votre demande",
			Subheading: "Merci de nous avoir contactés",
			CTALabel:   "Consulter le devis",
			CTAURL:     shareURL,
		},
		ClientName:  clientName,
		CompanyName: companyName,
		QuoteNumber: quoteNumber,
	})
}

func renderQuoteUpdated(clientName, companyName, quoteNumber, shareURL string) (string, error) {
	return renderEmailTemplate("quote_updated.html", quoteEmailData{
		baseEmailData: baseEmailData{
			Title:    "Votre devis a été mis à jour",
			Heading:  "Votre devis a été mis à jour",
			CTALabel: "Voir la nouvelle version",
			CTAURL:   shareURL,
		},
		ClientName:  clientName,
		CompanyName: companyName,
		QuoteNumber: quoteNumber,
	})
}
