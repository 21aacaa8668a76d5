package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// NewRequestID generates a short id attached to every inbound request.
func NewRequestID() string {
	id, err := gonanoid.Generate(idAlphabet, 12)
	if err != nil {
		return "unknown"
	}
	return id
}

// NewSyncRunID generates a short id correlating log lines of one sync run.
func NewSyncRunID() string {
	id, err := gonanoid.Generate(idAlphabet, 7)
	if err != nil {
		return "unknown"
	}
	return id
}
