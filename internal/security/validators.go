package security

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Input length constraints
const (
	MaxRoomCodeLength   = 12
	MinRoomCodeLength   = 4
	MaxPlayerNameLength = 50
	MinNameLength       = 1
)

var (
	// Room codes are human-shareable: short, upper-case alphanumeric.
	roomCodeRegex = regexp.MustCompile(`^[A-Z0-9]{4,12}$`)
	// Name validation regex - Unicode letters, digits, spaces, apostrophes, hyphens, underscores, dots
	// \p{L} matches any Unicode letter (includes accented characters)
	nameRegex = regexp.MustCompile(`^[\p{L}\p{N}\s'\-_.]+$`)
	// Dangerous characters that could be used for injection attacks
	dangerousCharsRegex = regexp.MustCompile(`[<>{}[\]\\;|&$()` + "`" + `]`)
)

// ValidateRoomCode normalizes and validates a room code.
// Returns the canonical upper-case form.
func ValidateRoomCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", fmt.Errorf("room code cannot be empty")
	}
	if !roomCodeRegex.MatchString(code) {
		return "", fmt.Errorf("room code must be %d-%d upper-case letters or digits",
			MinRoomCodeLength, MaxRoomCodeLength)
	}
	return code, nil
}

// ValidatePlayerID validates that a string is a well-formed player id (UUID).
func ValidatePlayerID(id string) error {
	if id == "" {
		return fmt.Errorf("player id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("malformed player id: %w", err)
	}
	return nil
}

// ValidatePlayerName validates a display name with length and character
// constraints. Returns the sanitized name.
func ValidatePlayerName(name string) (string, error) {
	name = strings.TrimSpace(name)

	if name == "" {
		return "", fmt.Errorf("name cannot be empty")
	}

	if len(name) < MinNameLength {
		return "", fmt.Errorf("name too short (min %d characters)", MinNameLength)
	}

	if len(name) > MaxPlayerNameLength {
		return "", fmt.Errorf("name too long (max %d characters)", MaxPlayerNameLength)
	}

	if !nameRegex.MatchString(name) {
		return "", fmt.Errorf("name contains invalid characters (allowed: letters, numbers, spaces, apostrophes, hyphens, underscores, dots)")
	}

	if dangerousCharsRegex.MatchString(name) {
		return "", fmt.Errorf("name contains potentially dangerous characters")
	}

	// Check for control characters (belt-and-suspenders with regex)
	for _, r := range name {
		if r < 32 || r == 127 {
			return "", fmt.Errorf("name contains control characters")
		}
	}

	return name, nil
}

// SanitizeErrorMessage strips internal detail from error messages before
// they are surfaced to clients.
func SanitizeErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	errStr := strings.ToLower(err.Error())

	sensitivePatterns := []string{
		"sql",
		"database",
		"record",
		"internal",
		"panic",
		"runtime",
	}

	for _, pattern := range sensitivePatterns {
		if strings.Contains(errStr, pattern) {
			return "An error occurred while processing your request"
		}
	}

	return err.Error()
}
