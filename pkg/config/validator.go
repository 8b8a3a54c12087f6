package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// ValidationError represents a validation failure with context.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// Validate checks the whole file and returns every problem found, joined.
func (f *File) Validate() error {
	var errs []error
	if f.HTTP == nil && f.FTP == nil {
		errs = append(errs, &ValidationError{Field: "file", Message: "at least one of http or ftp is required"})
	}
	if f.HTTP != nil {
		errs = append(errs, f.HTTP.validate()...)
	}
	if f.FTP != nil {
		errs = append(errs, f.FTP.validate()...)
	}
	return errors.Join(errs...)
}

func validatePort(field string, port int) error {
	if port < 0 || port > 65535 {
		return &ValidationError{Field: field, Message: fmt.Sprintf("port %d out of range 0-65535", port)}
	}
	return nil
}

func (c *HTTPConfig) validate() []error {
	var errs []error
	if err := validatePort("http.port", c.Port); err != nil {
		errs = append(errs, err)
	}

	for i, e := range c.Expectations {
		field := fmt.Sprintf("http.expectations[%d]", i)
		if e.Name != "" {
			field += fmt.Sprintf(" (%s)", e.Name)
		}

		exp, err := e.Expectation()
		if err != nil {
			errs = append(errs, &ValidationError{Field: field, Message: err.Error()})
			continue
		}
		if err := exp.Matcher.Compile(); err != nil {
			errs = append(errs, &ValidationError{Field: field, Message: err.Error()})
		}
		if err := exp.Response.Validate(); err != nil {
			errs = append(errs, &ValidationError{Field: field + ".response", Message: err.Error()})
		}
	}
	return errs
}

func (c *FTPConfig) validate() []error {
	var errs []error
	if err := validatePort("ftp.port", c.Port); err != nil {
		errs = append(errs, err)
	}
	for name := range c.Files {
		if name == "" {
			errs = append(errs, &ValidationError{Field: "ftp.files", Message: "file name must not be empty"})
		}
	}
	for i, pattern := range c.SeedGlobs {
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			errs = append(errs, &ValidationError{
				Field:   fmt.Sprintf("ftp.seedGlobs[%d]", i),
				Message: fmt.Sprintf("invalid glob pattern %q", pattern),
			})
		}
	}
	return errs
}
