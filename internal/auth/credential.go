package auth

import (
	"encoding/base64"
	"strings"
)

// credentialScheme tags the authorization scheme carried by a request.
type credentialScheme int

const (
	schemeUnknown credentialScheme = iota
	schemeBearer
	schemeBasic
)

// credential is the parsed form of an Authorization header value.
type credential struct {
	scheme credentialScheme
	token  string
}

// parseCredential splits a header value on the first space into scheme and
// payload. An empty scheme or empty payload yields schemeUnknown; no length
// heuristics beyond that.
func parseCredential(header string) credential {
	scheme, rest, found := strings.Cut(header, " ")
	if !found {
		return credential{scheme: schemeUnknown}
	}
	token := strings.TrimSpace(rest)
	if scheme == "" || token == "" {
		return credential{scheme: schemeUnknown}
	}

	switch {
	case strings.EqualFold(scheme, "Bearer"):
		return credential{scheme: schemeBearer, token: token}
	case strings.EqualFold(scheme, "Basic"):
		return credential{scheme: schemeBasic, token: token}
	default:
		return credential{scheme: schemeUnknown}
	}
}

// decodeBasicPayload unpacks a Basic credential into username and password.
// Only the first colon separates the two, so passwords may contain colons.
func decodeBasicPayload(payload string) (username, password string, ok bool) {
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", "", false
	}
	username, password, ok = strings.Cut(string(decoded), ":")
	if !ok {
		return "", "", false
	}
	return username, password, true
}
