package txflow

import (
	"os"

	"github.com/joho/godotenv"
)

// CredentialSource resolves a named secret. Lookup reports false when the
// name is absent.
type CredentialSource interface {
	Lookup(name string) (string, bool)
}

// EnvSource reads credentials from the process environment.
type EnvSource struct{}

// Lookup implements CredentialSource.
func (EnvSource) Lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// MapSource is a static credential source.
type MapSource map[string]string

// Lookup implements CredentialSource.
func (m MapSource) Lookup(name string) (string, bool) {
	v, ok := m[name]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// DotenvSource parses a .env file without touching the process environment.
func DotenvSource(path string) (MapSource, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, err
	}
	return MapSource(values), nil
}

// ChainSource consults each source in order and returns the first hit.
type ChainSource []CredentialSource

// Lookup implements CredentialSource.
func (c ChainSource) Lookup(name string) (string, bool) {
	for _, src := range c {
		if src == nil {
			continue
		}
		if v, ok := src.Lookup(name); ok {
			return v, true
		}
	}
	return "", false
}
