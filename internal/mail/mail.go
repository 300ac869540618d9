// Package mail renders the account emails: address verification and
// password reset.
package mail

import (
	"fmt"

	"github.com/matcornic/hermes/v2"
)

const (
	VerificationSubject   = "Please verify your email"
	ForgotPasswordSubject = "Password Reset Request"

	outro = "Need help or have questions, just reply to this email, we would love to help!"
)

type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

type Renderer struct {
	h hermes.Hermes
}

func NewRenderer(productName, productLink string) *Renderer {
	return &Renderer{h: hermes.Hermes{
		Product: hermes.Product{
			Name: productName,
			Link: productLink,
		},
	}}
}

func (r *Renderer) VerificationEmail(username, link string) (Rendered, error) {
	return r.render(VerificationSubject, hermes.Email{Body: hermes.Body{
		Name:   username,
		Intros: []string{"Welcome to our App! We are excited to have you onboarded."},
		Actions: []hermes.Action{{
			Instructions: "To verify the email please click the button below.",
			Button: hermes.Button{
				Color: "#ffa500",
				Text:  "Verify your Email",
				Link:  link,
			},
		}},
		Outros: []string{outro},
	}})
}

func (r *Renderer) ForgotPasswordEmail(username, link string) (Rendered, error) {
	return r.render(ForgotPasswordSubject, hermes.Email{Body: hermes.Body{
		Name:   username,
		Intros: []string{"We got a request to reset the password associated to your account"},
		Actions: []hermes.Action{{
			Instructions: "To change the password please click the button below.",
			Button: hermes.Button{
				Color: "#00a1adff",
				Text:  "Reset Password",
				Link:  link,
			},
		}},
		Outros: []string{outro},
	}})
}

func (r *Renderer) render(subject string, email hermes.Email) (Rendered, error) {
	html, err := r.h.GenerateHTML(email)
	if err != nil {
		return Rendered{}, fmt.Errorf("render html: %w", err)
	}
	text, err := r.h.GeneratePlainText(email)
	if err != nil {
		return Rendered{}, fmt.Errorf("render text: %w", err)
	}
	return Rendered{Subject: subject, HTML: html, Text: text}, nil
}
