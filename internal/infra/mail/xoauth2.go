package mail

import (
	"fmt"
	"net/smtp"
)

// xoauth2Auth implements the SASL XOAUTH2 mechanism used by Gmail:
// a single initial response carrying the user and a bearer access token.
type xoauth2Auth struct {
	user  string
	token string
}

func (a xoauth2Auth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	if !server.TLS {
		return "", nil, fmt.Errorf("xoauth2: refusing to send bearer token without TLS")
	}
	resp := []byte("user=" + a.user + "\x01auth=Bearer " + a.token + "\x01\x01")
	return "XOAUTH2", resp, nil
}

func (a xoauth2Auth) Next(fromServer []byte, more bool) ([]byte, error) {
	// On failure the server sends a JSON challenge; answering with an empty
	// line makes it return the final SMTP error.
	if more {
		return []byte{}, nil
	}
	return nil, nil
}
