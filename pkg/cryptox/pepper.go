package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"os"
	"path/filepath"
)

// Argon2id parameters. Raising these makes hashing slower (and attacks more
// expensive); existing hashes keep verifying because the parameters are
// encoded into the PHC string.
const (
	memory      = 19 * 1024 // KiB (19 MiB)
	iterations  = 2
	parallelism = 1
	keyLength   = 32
	saltLength  = 16
)

var (
	// pepper is loaded from a file or generated at first use.
	pepper     string
	pepperFile string
)

func SetPepperPath(file string) {
	pepperFile = file
}

func GetPepper() string {
	if pepper != "" {
		return pepper
	}

	var err error
	pepper, err = loadOrGeneratePepper()
	if err != nil {
		slog.Error("failed to load or generate pepper", slog.Any("err", err))
		os.Exit(1)
	}

	return pepper
}

// loadOrGeneratePepper loads the pepper from its file, creating a random one
// on first run.
func loadOrGeneratePepper() (string, error) {
	pepperFile = filepath.Clean(pepperFile)
	if err := os.MkdirAll(filepath.Dir(pepperFile), 0750); err != nil {
		return "", err
	}

	if _, err := os.Stat(pepperFile); os.IsNotExist(err) {
		raw := make([]byte, keyLength)
		if _, err := rand.Read(raw); err != nil {
			return "", err
		}
		generated := base64.RawURLEncoding.EncodeToString(raw)

		if err := os.WriteFile(pepperFile, []byte(generated), 0600); err != nil {
			return "", err
		}
		return generated, nil
	}

	raw, err := os.ReadFile(pepperFile)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
