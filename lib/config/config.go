// Package config builds the single configuration value the rest of
// the tool runs on. Nothing else reads environment state: the CLI
// constructs one Config at startup and passes it down.
package config

import (
	"fmt"
	"os"
	"time"
)

type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Reason)
}

const dateLayout = "2006-01-02"

type Config struct {
	// portal subdomain, required
	Domain string
	// full portal URL override; normally derived from Domain
	PortalURL string
	// credential login
	Username string
	Password string
	// alternative to credential login
	SessionCookie string

	StartDate time.Time
	EndDate   time.Time

	// output file name; defaults to reservations-<year>.json
	OutputFile string
	OutputDir  string

	// optional sqlite archive of completed runs
	ArchiveDB string

	// object-storage target for the published calendar
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3Insecure  bool
}

// FromEnv reads the STAYSYNC_* environment variables into a Config.
// CLI flags are applied on top by the caller, so flags win over
// environment.
func FromEnv() Config {
	return Config{
		Domain:        os.Getenv("STAYSYNC_DOMAIN"),
		PortalURL:     os.Getenv("STAYSYNC_PORTAL_URL"),
		Username:      os.Getenv("STAYSYNC_USERNAME"),
		Password:      os.Getenv("STAYSYNC_PASSWORD"),
		SessionCookie: os.Getenv("STAYSYNC_SESSION_COOKIE"),
		OutputFile:    os.Getenv("STAYSYNC_OUTPUT_FILE"),
		OutputDir:     os.Getenv("STAYSYNC_OUTPUT_DIR"),
		ArchiveDB:     os.Getenv("STAYSYNC_ARCHIVE_DB"),
		S3Endpoint:    os.Getenv("STAYSYNC_S3_ENDPOINT"),
		S3AccessKey:   os.Getenv("STAYSYNC_S3_ACCESS_KEY"),
		S3SecretKey:   os.Getenv("STAYSYNC_S3_SECRET_KEY"),
		S3Bucket:      os.Getenv("STAYSYNC_S3_BUCKET"),
		S3Insecure:    os.Getenv("STAYSYNC_S3_INSECURE") == "1",
	}
}

// Merge overlays non-zero fields of `override` onto c. Used to apply
// CLI flags over environment values.
func (c Config) Merge(override Config) Config {
	if override.Domain != "" {
		c.Domain = override.Domain
	}
	if override.PortalURL != "" {
		c.PortalURL = override.PortalURL
	}
	if override.Username != "" {
		c.Username = override.Username
	}
	if override.Password != "" {
		c.Password = override.Password
	}
	if override.SessionCookie != "" {
		c.SessionCookie = override.SessionCookie
	}
	if !override.StartDate.IsZero() {
		c.StartDate = override.StartDate
	}
	if !override.EndDate.IsZero() {
		c.EndDate = override.EndDate
	}
	if override.OutputFile != "" {
		c.OutputFile = override.OutputFile
	}
	if override.OutputDir != "" {
		c.OutputDir = override.OutputDir
	}
	if override.ArchiveDB != "" {
		c.ArchiveDB = override.ArchiveDB
	}
	if override.S3Endpoint != "" {
		c.S3Endpoint = override.S3Endpoint
	}
	if override.S3AccessKey != "" {
		c.S3AccessKey = override.S3AccessKey
	}
	if override.S3SecretKey != "" {
		c.S3SecretKey = override.S3SecretKey
	}
	if override.S3Bucket != "" {
		c.S3Bucket = override.S3Bucket
	}
	if override.S3Insecure {
		c.S3Insecure = true
	}
	return c
}

// Finalize fills defaults and validates. The date range defaults to
// the current year, the output file to reservations-<year>.json.
func (c Config) Finalize(now time.Time) (Config, error) {
	if c.Domain == "" {
		return c, &ConfigError{Reason: "portal domain is required"}
	}
	if c.SessionCookie == "" && (c.Username == "" || c.Password == "") {
		return c, &ConfigError{Reason: "either a session cookie or username and password are required"}
	}

	if c.StartDate.IsZero() {
		c.StartDate = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	if c.EndDate.IsZero() {
		c.EndDate = time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	}
	if c.EndDate.Before(c.StartDate) {
		return c, &ConfigError{Reason: "end date precedes start date"}
	}

	if c.OutputFile == "" {
		c.OutputFile = fmt.Sprintf("reservations-%d.json", c.StartDate.Year())
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	return c, nil
}

// ParseDate parses a YYYY-MM-DD flag value; empty input returns the
// zero time so Finalize can supply the default.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, &ConfigError{Reason: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", value)}
	}
	return t, nil
}
