package username

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  error
	}{
		{name: "plain ascii", username: "marina", wantErr: nil},
		{name: "allowed symbols", username: "m.arina+cook@home-1_", wantErr: nil},
		{name: "digits and underscore", username: "chef_01", wantErr: nil},
		{name: "empty", username: "", wantErr: ErrEmpty},
		{name: "space", username: "ma rina", wantErr: ErrInvalidFormat},
		{name: "slash", username: "ma/rina", wantErr: ErrInvalidFormat},
		{name: "hash", username: "chef#1", wantErr: ErrInvalidFormat},
		{name: "reserved me", username: "me", wantErr: ErrReserved},
		{name: "me as substring is fine", username: "menu", wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.username)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate(%q) = %v, want %v", tt.username, err, tt.wantErr)
			}
		})
	}
}
