package tokens

import "strings"

func part(tok string, i int) string {
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return ""
	}
	return parts[i]
}

func headerOf(tok string) string    { return part(tok, 0) }
func payloadOf(tok string) string   { return part(tok, 1) }
func signatureOf(tok string) string { return part(tok, 2) }
