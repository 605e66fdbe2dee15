package logging

import (
	"net/url"
	"regexp"
)

const (
	// MaxBodyLogLength is the maximum length of a response body to log
	MaxBodyLogLength = 200
	// RedactedText is the replacement text for sensitive data
	RedactedText = "[REDACTED]"
)

var (
	// Pattern to match bearer tokens (opaque or JWT)
	bearerPattern = regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9\-_.~+/]+=*`)

	// Pattern to match token-like query or form values
	tokenParamPattern = regexp.MustCompile(`(?i)(access_token|token|api[_-]?key)=[^&\s"]+`)
)

// SanitizeError sanitizes error messages that might contain credentials.
// Use this before logging any error from the API transport.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error())
}

// SanitizeString removes bearer tokens and token parameters from s.
func SanitizeString(s string) string {
	if s == "" {
		return ""
	}
	sanitized := bearerPattern.ReplaceAllString(s, "Bearer "+RedactedText)
	sanitized = tokenParamPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
	return sanitized
}

// SanitizeURL strips userinfo and token query parameters from a URL for logging.
// Unparseable input is sanitized as a plain string.
func SanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return SanitizeString(raw)
	}
	if u.User != nil {
		u.User = url.User(RedactedText)
	}
	q := u.Query()
	changed := false
	for key := range q {
		if tokenParamPattern.MatchString(key + "=x") {
			q.Set(key, RedactedText)
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// TruncateString truncates a string to maxLen and adds ellipsis if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
