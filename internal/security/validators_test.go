package security_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Louislam09/dots-and-boxes-game-sub000/internal/security"
)

func TestValidateRoomCode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid upper-case", "GAME42", "GAME42", false},
		{"lower-case is canonicalized", "game42", "GAME42", false},
		{"surrounding whitespace is trimmed", "  ROOM1  ", "ROOM1", false},
		{"minimum length", "ABCD", "ABCD", false},
		{"maximum length", "ABCDEFGH1234", "ABCDEFGH1234", false},
		{"empty", "", "", true},
		{"too short", "ABC", "", true},
		{"too long", "ABCDEFGH12345", "", true},
		{"punctuation", "ROOM-1", "", true},
		{"spaces inside", "RO OM", "", true},
		{"unicode", "SALÓN1", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := security.ValidateRoomCode(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidatePlayerID(t *testing.T) {
	assert.NoError(t, security.ValidatePlayerID(uuid.NewString()))
	assert.Error(t, security.ValidatePlayerID(""))
	assert.Error(t, security.ValidatePlayerID("not-a-uuid"))
	assert.Error(t, security.ValidatePlayerID("12345"))
}

func TestValidatePlayerName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain name", "Alice", "Alice", false},
		{"accented letters", "José-María", "José-María", false},
		{"digits and dots", "Player.2", "Player.2", false},
		{"apostrophe", "O'Brien", "O'Brien", false},
		{"whitespace trimmed", "  Bob  ", "Bob", false},
		{"empty", "", "", true},
		{"whitespace only", "   ", "", true},
		{"too long", strings.Repeat("a", 51), "", true},
		{"angle brackets", "<script>", "", true},
		{"shell metacharacters", "a;rm -rf", "", true},
		{"control characters", "Bob\x00", "", true},
		{"emoji", "Bob 🎮", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := security.ValidatePlayerName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeErrorMessage(t *testing.T) {
	assert.Empty(t, security.SanitizeErrorMessage(nil))

	assert.Equal(t, "room is at capacity",
		security.SanitizeErrorMessage(errors.New("room is at capacity")))

	for _, msg := range []string{
		"sql: no rows in result set",
		"database connection refused",
		"internal state corrupted",
		"runtime error: index out of range",
	} {
		assert.Equal(t, "An error occurred while processing your request",
			security.SanitizeErrorMessage(errors.New(msg)), "leaked: %s", msg)
	}
}
