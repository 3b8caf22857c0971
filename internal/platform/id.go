package platform

import (
	"crypto/rand"

	"github.com/google/uuid"
)

const webhookIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
const webhookIDLength = 16

// NewID returns a UUID string for internal resource identifiers.
func NewID() string {
	return uuid.New().String()
}

// NewWebhookID generates a random lowercase webhook path segment. The ID is
// the only guard on the webhook URL, so it has to be unguessable.
func NewWebhookID() string {
	b := make([]byte, webhookIDLength)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand: " + err.Error())
	}
	for i := range b {
		b[i] = webhookIDAlphabet[b[i]%byte(len(webhookIDAlphabet))]
	}
	return "kopia_" + string(b)
}
