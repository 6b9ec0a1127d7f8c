package errors

import (
	"net/url"
	"strings"
	"unicode"
)

// ValidateCountryCode checks an already-normalized ISO code: two or three
// uppercase ASCII letters.
func ValidateCountryCode(code string) error {
	if code == "" {
		return New(ErrCodeInvalidRow, "country code cannot be empty")
	}
	if len(code) < 2 || len(code) > 3 {
		return New(ErrCodeInvalidRow, "country code %q must have 2 or 3 letters", code)
	}
	for _, r := range code {
		if r > unicode.MaxASCII || !unicode.IsUpper(r) {
			return New(ErrCodeInvalidRow, "country code %q contains invalid characters", code)
		}
	}
	return nil
}

var supportedSchemes = map[string]bool{
	"":           true,
	"file":       true,
	"http":       true,
	"https":      true,
	"s3":         true,
	"postgres":   true,
	"postgresql": true,
}

// ValidateSourceURL validates a dataset location before any I/O happens.
// Bare paths are accepted as local files.
func ValidateSourceURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return New(ErrCodeInvalidSource, "source location cannot be empty")
	}
	if strings.ContainsRune(raw, 0) {
		return New(ErrCodeInvalidSource, "source location contains a null byte")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Wrap(ErrCodeInvalidSource, err, "parse source %q", raw)
	}
	scheme := strings.ToLower(u.Scheme)
	// Windows drive letters parse as one-letter schemes.
	if len(scheme) == 1 {
		return nil
	}
	if !supportedSchemes[scheme] {
		return New(ErrCodeInvalidSource, "unsupported source scheme %q", u.Scheme)
	}
	if scheme == "s3" && (u.Host == "" || strings.Trim(u.Path, "/") == "") {
		return New(ErrCodeInvalidSource, "s3 source must be s3://bucket/key, got %q", raw)
	}
	return nil
}
