// hostbridge-keygen generates an API key / secret pair and appends it to
// the credentials store. The secret is printed exactly once; only its
// SHA-256-signed challenges ever travel over the wire.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-faster/errors"
	"gopkg.in/ini.v1"
)

const (
	keyPrefix = "PFFA"
	// keyRandBytes yields a 24-character key (prefix + 40 hex chars would
	// exceed the 40-char bound; 10 bytes of hex keeps it well inside).
	keyRandBytes = 10
	// secretRandBytes yields a 60-character secret, inside the 40-128 bound.
	secretRandBytes = 30
)

func main() {
	var (
		credentialsPath string
		permit          string
	)
	flag.StringVar(&credentialsPath, "credentials", "/etc/hostbridge/credentials.ini", "path to the credentials store")
	flag.StringVar(&permit, "permit", "", "comma-separated glob patterns of permitted actions (empty allows nothing)")
	flag.Parse()

	apikey, secret, err := generate(credentialsPath, permit)
	if err != nil {
		slog.Error("keygen failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("apikey: %s\nsecret: %s\npermit: %q\n", apikey, secret, permit)
	fmt.Println("store the secret now; it is not recoverable later")
}

func generate(path, permit string) (apikey, secret string, err error) {
	apikey = keyPrefix + randomHex(keyRandBytes)
	secret = randomHex(secretRandBytes)

	f, err := ini.LooseLoad(path)
	if err != nil {
		return "", "", errors.Wrap(err, "load credentials store")
	}
	if f.HasSection(apikey) {
		return "", "", errors.New("generated key collides with an existing section")
	}

	sec, err := f.NewSection(apikey)
	if err != nil {
		return "", "", errors.Wrap(err, "new section")
	}
	sec.Key("secret").SetValue(secret)
	if permit != "" {
		sec.Key("permit").SetValue(permit)
	}

	if err := f.SaveTo(path); err != nil {
		return "", "", errors.Wrap(err, "save credentials store")
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return "", "", errors.Wrap(err, "chmod credentials store")
	}
	return apikey, secret, nil
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	return hex.EncodeToString(buf)
}
