package mailer

import (
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

var inviteHTML = template.Must(template.New("invite").Parse(`<div style="font-family: sans-serif; max-width: 560px; margin: 0 auto;">
  <h2>You're invited to Blightstone</h2>
  <p>{{.InviterLine}} invited you to join the team as <strong>{{.Role}}</strong>.</p>
  <p><a href="{{.Link}}" style="display: inline-block; padding: 10px 20px; background: #18181b; color: #fff; text-decoration: none; border-radius: 6px;">Accept invitation</a></p>
  <p style="color: #666; font-size: 13px;">This invitation expires in {{.ExpiryDays}} days. If you weren't expecting it, you can ignore this email.</p>
</div>`))

var resetHTML = template.Must(template.New("reset").Parse(`<div style="font-family: sans-serif; max-width: 560px; margin: 0 auto;">
  <h2>Reset your Blightstone password</h2>
  <p>We received a request to reset the password for {{.Email}}.</p>
  <p><a href="{{.Link}}" style="display: inline-block; padding: 10px 20px; background: #18181b; color: #fff; text-decoration: none; border-radius: 6px;">Choose a new password</a></p>
  <p style="color: #666; font-size: 13px;">This link expires in 1 hour and can only be used once. If you didn't ask for a reset, ignore this email.</p>
</div>`))

// BuildTeamInvite renders the invitation email. baseURL is the public app
// origin; token is the raw invitation token.
func BuildTeamInvite(baseURL, token, to, role, inviterName string, expiryDays int) (Email, error) {
	link := strings.TrimRight(baseURL, "/") + "/auth-register?invite=" + url.QueryEscape(token)

	inviterLine := "A teammate"
	if inviterName != "" {
		inviterLine = inviterName
	}

	var html strings.Builder
	err := inviteHTML.Execute(&html, struct {
		InviterLine, Role, Link string
		ExpiryDays              int
	}{inviterLine, role, link, expiryDays})
	if err != nil {
		return Email{}, err
	}

	text := fmt.Sprintf(
		"%s invited you to join Blightstone as %s.\n\nAccept the invitation:\n%s\n\nThis invitation expires in %d days.\n",
		inviterLine, role, link, expiryDays,
	)

	return Email{
		To:       to,
		Subject:  "You're invited to Blightstone",
		TextBody: text,
		HTMLBody: html.String(),
	}, nil
}

// BuildPasswordReset renders the password-reset email.
func BuildPasswordReset(baseURL, token, to string) (Email, error) {
	link := strings.TrimRight(baseURL, "/") + "/auth-reset-password?token=" + url.QueryEscape(token)

	var html strings.Builder
	err := resetHTML.Execute(&html, struct {
		Email, Link string
	}{to, link})
	if err != nil {
		return Email{}, err
	}

	text := fmt.Sprintf(
		"We received a request to reset the password for %s.\n\nChoose a new password:\n%s\n\nThis link expires in 1 hour and can only be used once.\n",
		to, link,
	)

	return Email{
		To:       to,
		Subject:  "Reset your Blightstone password",
		TextBody: text,
		HTMLBody: html.String(),
	}, nil
}
