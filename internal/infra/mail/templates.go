package mail

import (
	"fmt"
	"html"
)

func VerificationMessage(from, to, link string) *Message {
	return &Message{
		Subject:   "Verify your account",
		EmailTo:   to,
		EmailFrom: from,
		TextBody:  fmt.Sprintf("Click the following link to verify your account:\n\n%s\n", link),
	}
}

func PasswordResetMessage(from, to, link string) *Message {
	return &Message{
		Subject:   "Reset your password",
		EmailTo:   to,
		EmailFrom: from,
		TextBody:  fmt.Sprintf("Use this link within one hour to choose a new password:\n\n%s\n", link),
	}
}

func InvitationMessage(from, to, orgName, role, inviter, link string) *Message {
	return &Message{
		Subject:   fmt.Sprintf("You're invited to join %s", orgName),
		EmailTo:   to,
		EmailFrom: from,
		NameFrom:  orgName,
		TextBody: fmt.Sprintf("%s invited you to join %s as %s.\n\nAccept the invitation:\n\n%s\n",
			inviter, orgName, role, link),
		HTMLBody: fmt.Sprintf(`<p>%s invited you to join <strong>%s</strong> as %s.</p><p><a href="%s">Accept the invitation</a></p>`,
			html.EscapeString(inviter), html.EscapeString(orgName), role, html.EscapeString(link)),
	}
}
