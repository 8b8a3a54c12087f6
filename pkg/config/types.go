package config

import (
	"github.com/getmockd/stubserver/pkg/expect"
)

// File is a parsed stub definition file.
type File struct {
	HTTP *HTTPConfig `json:"http,omitempty" yaml:"http,omitempty"`
	FTP  *FTPConfig  `json:"ftp,omitempty" yaml:"ftp,omitempty"`

	// BaseDir resolves relative paths. Load sets it to the file's directory.
	BaseDir string `json:"-" yaml:"-"`
}

// HTTPConfig configures the HTTP stub.
type HTTPConfig struct {
	Port         int                 `json:"port" yaml:"port"`
	Expectations []ExpectationConfig `json:"expectations" yaml:"expectations"`
}

// ExpectationConfig declares one expectation. The matcher fields (method,
// url, data, headers, query, bodyContains, bodyPattern, bodyJsonPath,
// bodyXPath, when) sit at the top level of the entry.
type ExpectationConfig struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	expect.Matcher `yaml:",inline"`

	// Capture records the request body; the serve command logs captured
	// bodies when it verifies.
	Capture bool `json:"capture,omitempty" yaml:"capture,omitempty"`

	Response ResponseConfig `json:"response" yaml:"response"`
}

// ResponseConfig declares the response to an expectation. Content and File
// are mutually exclusive; with neither set only the status is sent.
type ResponseConfig struct {
	Status   int               `json:"status,omitempty" yaml:"status,omitempty"`
	Content  *string           `json:"content,omitempty" yaml:"content,omitempty"`
	File     string            `json:"file,omitempty" yaml:"file,omitempty"`
	MimeType string            `json:"mimeType,omitempty" yaml:"mimeType,omitempty"`
	Headers  map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// FTPConfig configures the FTP stub.
type FTPConfig struct {
	Port    int    `json:"port" yaml:"port"`
	Welcome string `json:"welcome,omitempty" yaml:"welcome,omitempty"`

	// Files seeds the store with inline content keyed by file name.
	Files map[string]string `json:"files,omitempty" yaml:"files,omitempty"`

	// SeedGlobs seeds the store from disk. Patterns support ** and each
	// match is stored under its base name.
	SeedGlobs []string `json:"seedGlobs,omitempty" yaml:"seedGlobs,omitempty"`
}
