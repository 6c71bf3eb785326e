package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/walletbuilder/internal/logfields"
)

// Required environment variable names.
const (
	EnvWalletVersion = "TON_WALLET_VERSION"
	EnvKeyWebMain    = "TONCENTER_API_KEY_WEB_MAIN"
	EnvKeyWebTest    = "TONCENTER_API_KEY_WEB_TEST"
	EnvKeyExtMain    = "TONCENTER_API_KEY_EXT_MAIN"
	EnvKeyExtTest    = "TONCENTER_API_KEY_EXT_TEST"
)

// RequiredVariables lists every variable that must be non-empty before a build starts.
var RequiredVariables = []string{
	EnvWalletVersion,
	EnvKeyWebMain,
	EnvKeyWebTest,
	EnvKeyExtMain,
	EnvKeyExtTest,
}

// dotEnvFiles are loaded in order; godotenv never overrides a variable that is
// already set, so .env.local wins over .env and the process environment wins over both.
var dotEnvFiles = []string{".env.local", ".env"}

// DotEnvFiles returns the names of the .env files read from the project root.
func DotEnvFiles() []string { return slices.Clone(dotEnvFiles) }

// LookupFunc reads an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// APIKeys holds the toncenter keys for {web, extension} x {mainnet, testnet}.
type APIKeys struct {
	WebMain string
	WebTest string
	ExtMain string
	ExtTest string
}

// Environment is the validated set of build-time secrets and version strings.
type Environment struct {
	WalletVersion string
	APIKeys       APIKeys
}

// LoadDotEnv loads .env.local and .env from root into the process environment.
// Missing files are skipped. It returns the files that were loaded.
func LoadDotEnv(root string) ([]string, error) {
	var loaded []string
	for _, name := range dotEnvFiles {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, fmt.Errorf("stat %s: %w", path, err)
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, fmt.Errorf("load %s: %w", path, err)
		}
		slog.Debug("Loaded environment file", logfields.Path(path))
		loaded = append(loaded, path)
	}
	return loaded, nil
}

// LoadEnvironment reads every required variable through lookup. Variables that
// are unset or blank are reported together in a MissingEnvError.
func LoadEnvironment(lookup LookupFunc) (Environment, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	values := make(map[string]string, len(RequiredVariables))
	var missing []string
	for _, name := range RequiredVariables {
		v, ok := lookup(name)
		if !ok || strings.TrimSpace(v) == "" {
			missing = append(missing, name)
			continue
		}
		values[name] = v
	}
	if len(missing) > 0 {
		return Environment{}, &MissingEnvError{Names: missing}
	}
	return Environment{
		WalletVersion: values[EnvWalletVersion],
		APIKeys: APIKeys{
			WebMain: values[EnvKeyWebMain],
			WebTest: values[EnvKeyWebTest],
			ExtMain: values[EnvKeyExtMain],
			ExtTest: values[EnvKeyExtTest],
		},
	}, nil
}

// Defines returns the build-time constants substituted into the bundled scripts,
// keyed by identifier, with values encoded as JavaScript string literals.
func (e Environment) Defines() map[string]string {
	return map[string]string{
		EnvKeyWebMain: jsString(e.APIKeys.WebMain),
		EnvKeyWebTest: jsString(e.APIKeys.WebTest),
		EnvKeyExtMain: jsString(e.APIKeys.ExtMain),
		EnvKeyExtTest: jsString(e.APIKeys.ExtTest),
	}
}

// LogValue keeps secrets out of logs.
func (e Environment) LogValue() slog.Value {
	return slog.GroupValue(slog.String("wallet_version", e.WalletVersion), slog.String("api_keys", "[redacted]"))
}

func jsString(s string) string {
	// JSON string literals are valid JavaScript string literals.
	b, _ := json.Marshal(s)
	return string(b)
}

// MissingEnvError reports required environment variables that were not provided.
type MissingEnvError struct {
	Names []string
}

func (e *MissingEnvError) Error() string {
	return "missing required environment variables: " + strings.Join(e.Names, ", ")
}
