package common

import (
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Storefront configuration struct
// --------------------------------------------------------------------------

// StoreKind selects the persistence backend.
type StoreKind string

const (
	StoreMemory   StoreKind = "memory"
	StoreFile     StoreKind = "file"
	StoreSQLite   StoreKind = "sqlite"
	StorePostgres StoreKind = "postgres"
)

// ParseStoreKind validates a backend name.
func ParseStoreKind(s string) (StoreKind, error) {
	switch kind := StoreKind(strings.ToLower(strings.TrimSpace(s))); kind {
	case StoreMemory, StoreFile, StoreSQLite, StorePostgres:
		return kind, nil
	default:
		return "", fmt.Errorf("invalid store %q (expected one of: memory, file, sqlite, postgres)", s)
	}
}

// Config holds everything the CLI needs to wire the storefront packages.
type Config struct {
	// Store is the persistence backend.
	Store StoreKind
	// Serializer encodes allocator state (json, gob, binary).
	Serializer string
	// DataDir holds the file and sqlite databases.
	DataDir string
	// DSN is the postgres connection string.
	DSN string
	// CredentialsFile is the YAML credential list used for logins.
	CredentialsFile string
	// LogLevel is the level at which logs will be output (debug, info, warn, error)
	LogLevel string
}

// String returns a formatted string representation of the configuration
func (c *Config) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Persistence")
	addField("Store", string(c.Store))
	addField("Serializer", c.Serializer)
	switch c.Store {
	case StoreFile, StoreSQLite:
		addField("Data Directory", c.DataDir)
	case StorePostgres:
		addField("DSN", redactDSN(c.DSN))
	}

	addSection("Auth")
	addField("Credentials", c.CredentialsFile)

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}

// redactDSN hides the password of a postgres url or key=value DSN.
func redactDSN(dsn string) string {
	if dsn == "" {
		return "(unset)"
	}
	fields := strings.Fields(dsn)
	for i, f := range fields {
		if strings.HasPrefix(f, "password=") {
			fields[i] = "password=***"
		}
	}
	out := strings.Join(fields, " ")
	if at := strings.LastIndex(out, "@"); at > 0 {
		if scheme := strings.Index(out, "://"); scheme >= 0 && scheme < at {
			creds := out[scheme+3 : at]
			if colon := strings.Index(creds, ":"); colon >= 0 {
				out = out[:scheme+3] + creds[:colon] + ":***" + out[at:]
			}
		}
	}
	return out
}
