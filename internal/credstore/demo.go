package credstore

// demoCredentials are the example key/secret pairs shipped in the
// documentation. They are hard-denied: a request can never authenticate with
// a demo key, nor with a demo secret hiding behind a renamed section.
var demoCredentials = map[string]string{
	"PFFAexample01": "abcdefghijklmnopqrstuvwxyz0123456789abcd",
	"PFFAexample02": "0123456789abcdefghijklmnopqrstuvwxyz0123",
}

// IsDemoKey reports whether apikey is one of the shipped example keys.
func IsDemoKey(apikey string) bool {
	_, ok := demoCredentials[apikey]
	return ok
}

// IsDemoSecret reports whether secret equals one of the shipped example
// secrets, regardless of which key it is stored under.
func IsDemoSecret(secret string) bool {
	for _, s := range demoCredentials {
		if s == secret {
			return true
		}
	}
	return false
}
