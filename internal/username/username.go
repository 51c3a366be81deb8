// Package username contains validation rules for usernames.
package username

import (
	"errors"
	"regexp"
)

// reserved values collide with API routes (/users/me).
const reservedMe = "me"

var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

var (
	ErrInvalidFormat = errors.New("username may only contain letters, digits and .@+-_")
	ErrReserved      = errors.New(`username "me" is reserved`)
	ErrEmpty         = errors.New("username must not be empty")
)

// Validate checks the username format and rejects reserved values.
func Validate(name string) error {
	if name == "" {
		return ErrEmpty
	}
	if !usernameRe.MatchString(name) {
		return ErrInvalidFormat
	}
	if name == reservedMe {
		return ErrReserved
	}
	return nil
}

// Valid is a convenience wrapper for validator.v10 custom tags.
func Valid(name string) bool {
	return Validate(name) == nil
}
