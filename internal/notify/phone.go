package notify

import "strings"

// NormalizePhone: 08xxx / +62xxx -> 62xxx untuk gateway WhatsApp.
// Return "" kalau nomor tidak masuk akal (terlalu pendek/panjang).
func NormalizePhone(input string) string {
	var b strings.Builder
	for _, c := range strings.TrimSpace(input) {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	s := b.String()
	if len(s) < 10 || len(s) > 15 {
		return ""
	}
	switch {
	case strings.HasPrefix(s, "0"):
		return "62" + s[1:]
	case strings.HasPrefix(s, "62"):
		return s
	default:
		return "62" + s
	}
}
