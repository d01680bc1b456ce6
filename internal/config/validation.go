package config

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ValidationError describes one invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation failed for %s: %s", e.Field, e.Message)
}

// Validator collects every configuration problem so startup can report them
// all at once.
type Validator struct {
	errors []ValidationError
}

// AddError records a validation error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, ValidationError{Field: field, Message: message})
}

// HasErrors reports whether any error was recorded.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns the recorded errors.
func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// ErrorString formats all recorded errors as a numbered list.
func (v *Validator) ErrorString() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d error(s):\n", len(v.errors))
	for i, err := range v.errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidateRequired records an error when value is blank.
func (v *Validator) ValidateRequired(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "required value not set")
	}
}

// ValidatePort checks value is a port number, with or without a leading colon.
func (v *Validator) ValidatePort(field, value string) {
	if value == "" {
		return
	}
	port, err := strconv.Atoi(strings.TrimPrefix(value, ":"))
	if err != nil {
		v.AddError(field, "port must be a number")
		return
	}
	if port < 1 || port > 65535 {
		v.AddError(field, "port must be between 1 and 65535")
	}
}

// ValidateEnum checks value is one of allowed.
func (v *Validator) ValidateEnum(field, value string, allowed []string) {
	for _, opt := range allowed {
		if value == opt {
			return
		}
	}
	v.AddError(field, fmt.Sprintf("must be one of: %s (got: %s)", strings.Join(allowed, ", "), value))
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	v := &Validator{}

	v.ValidateRequired("port", c.Port)
	v.ValidatePort("port", c.Port)

	v.ValidateRequired("database_url", c.DatabaseURL)
	if c.DatabaseURL != "" &&
		!strings.HasPrefix(c.DatabaseURL, "postgres://") &&
		!strings.HasPrefix(c.DatabaseURL, "postgresql://") {
		v.AddError("database_url", "must be a PostgreSQL connection URL")
	}

	v.ValidateRequired("s3_endpoint", c.S3Endpoint)
	v.ValidateRequired("s3_access_key", c.S3AccessKey)
	v.ValidateRequired("s3_secret_key", c.S3SecretKey)
	v.ValidateRequired("bucket", c.Bucket)

	if c.MaxUploadBytes <= 0 {
		v.AddError("max_upload_bytes", "must be a positive integer")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		v.AddError("bcrypt_cost", fmt.Sprintf("must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if len(c.CORSOrigins) == 0 {
		v.AddError("cors_origins", "at least one origin is required")
	}

	v.ValidateEnum("log_level", c.LogLevel, []string{"debug", "info", "warn", "error"})
	v.ValidateEnum("log_format", c.LogFormat, []string{"text", "json"})

	if c.ShutdownTimeout <= 0 {
		v.AddError("shutdown_timeout", "must be a positive duration")
	}

	if v.HasErrors() {
		return fmt.Errorf("%s", v.ErrorString())
	}
	return nil
}
