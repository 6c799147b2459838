package config

import "log"

// MustNonEmpty aborts startup when a required env value is missing. Token
// secrets go through here so a misconfigured deployment dies loudly instead
// of signing unverifiable tokens.
func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}
