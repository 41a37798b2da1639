// Package auth: kebijakan otorisasi. Model single privileged operator --
// satu alamat email admin dari env, dicek lewat satu fungsi ini saja,
// tidak diduplikasi per handler.
package auth

import "crypto/subtle"

// IsAdmin: principal = email hasil autentikasi layanan auth di depan service
// ini. Perbandingan case-sensitive, constant-time.
func IsAdmin(principal, adminEmail string) bool {
	if principal == "" || adminEmail == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(principal), []byte(adminEmail)) == 1
}
