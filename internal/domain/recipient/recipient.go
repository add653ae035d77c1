package recipient

import (
	"net/mail"
	"strings"
)

// Recipient is a notification target: a registered user of the system with
// an email address.
type Recipient struct {
	Name  string
	Email string
}

// ValidEmail reports whether the recipient carries a non-empty, well-formed
// email address. Only recipients passing this check participate in a dispatch.
func (r Recipient) ValidEmail() bool {
	if strings.TrimSpace(r.Email) == "" {
		return false
	}
	_, err := mail.ParseAddress(r.Email)
	return err == nil
}
