package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"

	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/models"
)

const EmailConfirmationSubject = "Email Confirmation"

var emailConfirmationTmpl = template.Must(template.New("confirm-email").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Email Verification</title>
  <style>
    body { font-family: Arial, sans-serif; margin: 0; padding: 0; background-color: #f4f4f4; }
    .container { max-width: 600px; margin: 50px auto; background-color: #ffffff; padding: 20px; border-radius: 8px; }
    .verification-link { display: inline-block; padding: 10px 20px; background-color: #007BFF; color: #ffffff; text-decoration: none; border-radius: 5px; }
    .footer { margin-top: 20px; text-align: center; color: #888888; }
  </style>
</head>
<body>
  <div class="container">
    <h2>Email Verification</h2>
    <p>Thank you for signing up as a {{.Role}}! To complete your registration, please click the following link to verify your email address:</p>
    <p><a href="{{.Link}}" class="verification-link">Verify Email</a></p>
    <p>If you did not sign up for this service, you can ignore this email.</p>
  </div>
</body>
</html>
`))

// VerificationLink builds the public URL that redeems a token, e.g.
// https://host/v1/auth/verify/driver-mobile/<token>.
func VerificationLink(baseURL string, role models.Role, channel models.Channel, token string) string {
	return fmt.Sprintf("%s/v1/auth/verify/%s-%s/%s", baseURL, role, channel, url.PathEscape(token))
}

func EmailConfirmation(role models.Role, link string) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Role models.Role
		Link string
	}{Role: role, Link: link}
	if err := emailConfirmationTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render email confirmation: %w", err)
	}
	return buf.String(), nil
}

func MobileConfirmation(link string) string {
	return "Thank you for signing up!\n" +
		"To complete your registration, please click the following link to verify your mobile number:\n" +
		link
}
