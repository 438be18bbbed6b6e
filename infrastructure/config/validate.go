package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// ValidationError reports a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Checks accumulates field problems so a bad config reports all of them at once.
type Checks struct {
	errs []error
}

// Err returns the collected problems joined, or nil.
func (c *Checks) Err() error {
	return errors.Join(c.errs...)
}

// Add records err when it is non-nil.
func (c *Checks) Add(err error) {
	if err != nil {
		c.errs = append(c.errs, err)
	}
}

// Failf records a problem for field.
func (c *Checks) Failf(field, format string, args ...any) {
	c.errs = append(c.errs, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Required fails when value is empty.
func (c *Checks) Required(field, value string) {
	c.Add(ValidateRequired(field, value))
}

// Port fails when port is outside the TCP range.
func (c *Checks) Port(field string, port int) {
	c.Add(ValidatePort(field, port))
}

// URL fails when a non-empty value is not an absolute http(s) URL.
func (c *Checks) URL(field, value string) {
	c.Add(ValidateURL(field, value))
}

// OneOf fails when value is not in allowed.
func (c *Checks) OneOf(field, value string, allowed ...string) {
	if !slices.Contains(allowed, value) {
		c.Failf(field, "must be one of: %s", strings.Join(allowed, ", "))
	}
}

// ValidateRequired checks that value is not empty.
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	return nil
}

// ValidatePort checks that port is a usable TCP port.
func ValidatePort(field string, port int) error {
	if port < 1 || port > 65535 {
		return &ValidationError{Field: field, Message: "must be between 1 and 65535"}
	}
	return nil
}

// ValidateURL checks that value is an absolute http(s) URL. Empty is allowed.
func ValidateURL(field, value string) error {
	if value == "" {
		return nil
	}
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{Field: field, Message: "must be an absolute http(s) URL"}
	}
	return nil
}

// ValidateLogLevel checks if a log level is valid.
func ValidateLogLevel(level string) error {
	var c Checks
	c.OneOf("logging.level", level, "debug", "info", "warn", "error", "fatal")
	return c.Err()
}

// ValidateLogFormat checks if a log format is valid.
func ValidateLogFormat(format string) error {
	var c Checks
	c.OneOf("logging.format", format, "json", "console")
	return c.Err()
}
