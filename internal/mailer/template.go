package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

const passwordResetSubject = "Pop Accueil - Réinitialisation de votre mot de passe"

var passwordResetHTML = template.Must(template.New("password_reset").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Bonjour {{.FirstName}},</h2>
    <p>Une demande de réinitialisation de mot de passe a été faite pour votre compte Pop Accueil.</p>
    <p><a href="{{.Link}}" style="display: inline-block; padding: 10px 16px; background: #e94e1b; color: #fff; text-decoration: none;">Choisir un nouveau mot de passe</a></p>
    <p>Ce lien est valable {{.Validity}}. Si vous n'êtes pas à l'origine de cette demande, ignorez ce message.</p>
  </div>
</body>
</html>
`))

type renderedMail struct {
	Subject string
	HTML    string
	Text    string
}

func renderPasswordReset(mail PasswordResetMail, frontURL string) (renderedMail, error) {
	link := ResetLink(frontURL, mail.Token)
	name := strings.TrimSpace(mail.FirstName)
	if name == "" {
		name = mail.To
	}

	var html bytes.Buffer
	err := passwordResetHTML.Execute(&html, struct {
		FirstName string
		Link      string
		Validity  string
	}{name, link, "une heure"})
	if err != nil {
		return renderedMail{}, fmt.Errorf("render password reset mail: %w", err)
	}

	text := fmt.Sprintf("Bonjour %s,\n\nPour choisir un nouveau mot de passe, ouvrez ce lien :\n%s\n\nCe lien est valable une heure.\n", name, link)

	return renderedMail{
		Subject: passwordResetSubject,
		HTML:    html.String(),
		Text:    text,
	}, nil
}
