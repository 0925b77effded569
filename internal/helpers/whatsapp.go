package helpers

import (
	"net/url"
	"strings"
)

const whatsAppBase = "https://wa.me/"

// WhatsAppLink builds a wa.me deep link with the message prefilled. Spaces
// are encoded as %20 so the link matches what browsers produce with
// encodeURIComponent.
func WhatsAppLink(number, message string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	return whatsAppBase + digits + "?text=" + EncodeURIComponent(message)
}

func EncodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	// encodeURIComponent leaves these unescaped.
	for _, r := range []string{"!", "'", "(", ")", "*"} {
		escaped = strings.ReplaceAll(escaped, url.QueryEscape(r), r)
	}
	return escaped
}

var cleanReplacer = strings.NewReplacer("\n", " ", "\r", " ", "[", " ", "]", " ", "{", " ", "}", " ")

// CleanText strips line breaks and bracket characters from free text placed
// inside a handoff message. Empty values become "N/A".
func CleanText(s string) string {
	s = strings.TrimSpace(cleanReplacer.Replace(s))
	if s == "" {
		return "N/A"
	}
	return s
}

// OrDefault returns fallback when s is blank.
func OrDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
