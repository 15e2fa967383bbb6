// Package sanitize makes untrusted text inert before it is embedded in an
// XML-flavoured prompt.
package sanitize

import "strings"

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// Text strips ASCII control characters (keeping \n, \t and \r) and escapes
// the five XML special characters. Every piece of customer-controlled text
// must pass through Text exactly once before it is concatenated into a prompt.
func Text(s string) string {
	if s == "" {
		return ""
	}
	return xmlEscaper.Replace(stripControl(s))
}

func stripControl(s string) string {
	clean := true
	for i := 0; i < len(s); i++ {
		if isStrippedControl(s[i]) {
			clean = false
			break
		}
	}
	if clean {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if !isStrippedControl(s[i]) {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// Bytes < 0x80 are never part of a multi-byte UTF-8 sequence, so filtering
// byte-wise keeps Arabic and other non-ASCII text intact.
func isStrippedControl(c byte) bool {
	if c == '\n' || c == '\t' || c == '\r' {
		return false
	}
	return c < 0x20 || c == 0x7f
}
