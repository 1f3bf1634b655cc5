package errors

import (
	"strings"
	"unicode"
)

// maxKeyLength bounds entity, link and overlay record keys.
const maxKeyLength = 256

// ValidateKey validates an entity or link key received from outside the
// process (CLI arguments, HTTP requests).
//
// The rules are intentionally conservative:
//   - No empty keys
//   - No control characters
//   - Maximum length of 256 characters
//
// Keys that reference entities missing from the catalog are still valid;
// link endpoints may dangle.
func ValidateKey(kind, key string) error {
	if strings.TrimSpace(key) == "" {
		return New(ErrCodeInvalidKey, "%s key cannot be empty", kind)
	}
	if len(key) > maxKeyLength {
		return New(ErrCodeInvalidKey, "%s key too long (max %d characters)", kind, maxKeyLength)
	}
	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidKey, "%s key contains invalid control characters", kind)
		}
	}
	return nil
}

// ValidateContainer validates an overlay container or record key.
// In addition to the key rules it rejects path separators, since file-backed
// stores map containers to directories.
func ValidateContainer(name string) error {
	if err := ValidateKey("container", name); err != nil {
		return err
	}
	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return New(ErrCodeInvalidKey, "container %q cannot contain path separators", name)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
