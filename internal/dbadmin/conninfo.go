// Package dbadmin wraps the PostgreSQL administrative surface: dumping with
// pg_dump, CSV export and schema load with psql, and maintenance statements
// that cannot run through the application's regular connection.
package dbadmin

import (
	"fmt"
	"net/url"
	"strings"
)

// ConfigError reports a connection string that cannot be used for
// administrative commands.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid database configuration: %s", e.Reason)
}

// ConnInfo holds the pieces of a PostgreSQL connection needed to drive the
// client tools.
type ConnInfo struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

// ParseURL extracts connection info from a postgres:// URL.
func ParseURL(raw string) (ConnInfo, error) {
	if strings.TrimSpace(raw) == "" {
		return ConnInfo{}, &ConfigError{Reason: "DATABASE_URL is empty"}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ConnInfo{}, &ConfigError{Reason: fmt.Sprintf("unparseable DATABASE_URL: %v", err)}
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return ConnInfo{}, &ConfigError{Reason: fmt.Sprintf("unsupported scheme %q", u.Scheme)}
	}

	info := ConnInfo{
		Host:     u.Hostname(),
		Port:     u.Port(),
		Database: strings.TrimPrefix(u.Path, "/"),
		SSLMode:  u.Query().Get("sslmode"),
	}
	if u.User != nil {
		info.User = u.User.Username()
		info.Password, _ = u.User.Password()
	}
	if info.Host == "" {
		info.Host = "localhost"
	}
	if info.Port == "" {
		info.Port = "5432"
	}

	if info.Database == "" {
		return ConnInfo{}, &ConfigError{Reason: "DATABASE_URL has no database name"}
	}
	if info.User == "" {
		return ConnInfo{}, &ConfigError{Reason: "DATABASE_URL has no user"}
	}

	return info, nil
}

// CommandArgs returns the common flags for pg_dump/psql against the given
// database. Pass info.Database for the application database or "postgres"
// for maintenance work.
func (c ConnInfo) CommandArgs(database string) []string {
	return []string{
		"-h", c.Host,
		"-p", c.Port,
		"-U", c.User,
		"-d", database,
	}
}

// Env returns the process environment additions for the client tools. The
// password travels via PGPASSWORD so it never appears in a command line.
func (c ConnInfo) Env() []string {
	env := []string{"PGPASSWORD=" + c.Password}
	if c.SSLMode != "" {
		env = append(env, "PGSSLMODE="+c.SSLMode)
	}
	return env
}
