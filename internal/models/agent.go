package models

import (
	"strings"
	"time"
)

// Agent is the local account that unlocks an identity on this server.
type Agent struct {
	DID            string    `json:"did"`
	PassphraseHash string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

type SessionRequest struct {
	DID        string `json:"did"`
	Passphrase string `json:"passphrase"`
}

type SessionResponse struct {
	Token string `json:"token"`
	Agent Agent  `json:"agent"`
}

func (r *SessionRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.DID == "" {
		errors["did"] = "DID is required"
	} else if !strings.HasPrefix(r.DID, "did:") {
		errors["did"] = "DID must start with did:"
	}
	if r.Passphrase == "" {
		errors["passphrase"] = "Passphrase is required"
	} else if len(r.Passphrase) < 8 {
		errors["passphrase"] = "Passphrase must be at least 8 characters"
	}

	return errors
}
