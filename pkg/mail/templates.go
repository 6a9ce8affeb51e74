package mail

import (
	"fmt"
	"strings"
)

// WelcomeDetails carries the fields rendered into the account creation email.
type WelcomeDetails struct {
	Name              string
	Email             string
	RoleName          string
	TemporaryPassword string
	LoginURL          string
}

// WelcomeMessage builds the account creation email sent when an administrator adds a team member.
func WelcomeMessage(details WelcomeDetails) Message {
	name := strings.TrimSpace(details.Name)
	if name == "" {
		name = "there"
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Hi %s,\r\n\r\n", name)
	body.WriteString("An account has been created for you on Construction Tracker.\r\n\r\n")
	fmt.Fprintf(&body, "Email: %s\r\n", strings.TrimSpace(details.Email))
	if role := strings.TrimSpace(details.RoleName); role != "" {
		fmt.Fprintf(&body, "Role: %s\r\n", role)
	}
	if details.TemporaryPassword != "" {
		fmt.Fprintf(&body, "Temporary password: %s\r\n", details.TemporaryPassword)
	}
	if url := strings.TrimSpace(details.LoginURL); url != "" {
		fmt.Fprintf(&body, "\r\nSign in at %s and change your password from the profile page.\r\n", url)
	}

	return Message{
		To:      []string{strings.TrimSpace(details.Email)},
		Subject: "Welcome to Construction Tracker",
		Body:    body.String(),
	}
}
