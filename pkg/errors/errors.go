// Package errors defines the typed errors of the reconciliation pipeline.
// Fatal failures (a subgraph fetch, missing configuration) and recoverable
// ones (a single contract read) are distinct types, and each matches a
// sentinel through errors.Is.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// New, Is and As re-export the standard library so callers need one import.
var (
	New = errors.New
	Is  = errors.Is
	As  = errors.As
)

// Sentinels matched by the typed errors below.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrConfigMissing       = errors.New("configuration missing")
	ErrFetchFailed         = errors.New("fetch failed")
	ErrItemFetchFailed     = errors.New("item fetch failed")
	ErrMissingPrerequisite = errors.New("missing prerequisite")
	ErrRateLimited         = errors.New("rate limited")
	ErrSourceUnavailable   = errors.New("source unavailable")
)

// NotFoundError reports a missing resource, such as a snapshot artifact.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError reports an invalid argument or setting.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is matches ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigError reports unusable configuration. When Keys is set the error
// names required settings that are absent and matches ErrConfigMissing;
// it is raised before any fetch starts.
type ConfigError struct {
	Component string
	Keys      []string
	Message   string
	Err       error
}

func (e *ConfigError) Error() string {
	msg := e.Message
	if len(e.Keys) > 0 {
		msg = fmt.Sprintf("%s (keys: %v)", msg, e.Keys)
	}
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, msg)
	}
	return "configuration error: " + msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is matches ErrConfigMissing for errors naming absent keys.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfigMissing && len(e.Keys) > 0
}

// NewConfigError creates a ConfigError for invalid settings.
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// NewMissingConfigError creates a ConfigError for absent required keys.
func NewMissingConfigError(component string, keys ...string) *ConfigError {
	return &ConfigError{Component: component, Keys: keys, Message: "required settings are not set"}
}

// APIError reports a failed request to a subgraph endpoint. Status 429
// matches ErrRateLimited and 5xx matches ErrSourceUnavailable.
type APIError struct {
	Source     string
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Source, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Source, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is matches ErrRateLimited or ErrSourceUnavailable by status code.
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return target == ErrRateLimited
	case e.StatusCode >= http.StatusInternalServerError:
		return target == ErrSourceUnavailable
	}
	return false
}

// NewAPIError creates an APIError.
func NewAPIError(source string, statusCode int, message string) *APIError {
	return &APIError{Source: source, StatusCode: statusCode, Message: message}
}

// FetchError reports a failed page of a paginated fetch. It is fatal for
// the run: no partial token list is kept.
type FetchError struct {
	Source string // left or right
	Offset int    // skip offset of the failing page
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch from %s failed at offset %d: %v", e.Source, e.Offset, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is matches ErrFetchFailed.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}

// NewFetchError creates a FetchError.
func NewFetchError(source string, offset int, err error) *FetchError {
	return &FetchError{Source: source, Offset: offset, Err: err}
}

// ItemError reports a failed read of a single item. Callers log it and
// continue with the remaining items.
type ItemError struct {
	Source string
	ID     string
	Err    error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("read of %s item %s failed: %v", e.Source, e.ID, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// Is matches ErrItemFetchFailed.
func (e *ItemError) Is(target error) bool {
	return target == ErrItemFetchFailed
}

// NewItemError creates an ItemError.
func NewItemError(source, id string, err error) *ItemError {
	return &ItemError{Source: source, ID: id, Err: err}
}

// PrerequisiteError reports that a stage needs an artifact produced by an
// earlier stage that has not been run.
type PrerequisiteError struct {
	Artifact string // file that is missing
	Stage    string // stage that produces it
}

func (e *PrerequisiteError) Error() string {
	return fmt.Sprintf("%s does not exist: run %q first", e.Artifact, e.Stage)
}

// Is matches ErrMissingPrerequisite and ErrNotFound.
func (e *PrerequisiteError) Is(target error) bool {
	return target == ErrMissingPrerequisite || target == ErrNotFound
}

// NewPrerequisiteError creates a PrerequisiteError.
func NewPrerequisiteError(artifact, stage string) *PrerequisiteError {
	return &PrerequisiteError{Artifact: artifact, Stage: stage}
}

// ParseError reports undecodable data: a snapshot, a subgraph response or
// a contract ABI.
type ParseError struct {
	Format string // json, abi, ...
	File   string
	Err    error
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %v", e.Format, e.File, e.Err)
	}
	return fmt.Sprintf("%s parse error: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IOError reports a failed filesystem operation.
type IOError struct {
	Op   string // read, write, create, rename
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("IO error during %s of %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ResourceError reports a failed operation on a named resource.
type ResourceError struct {
	Op       string
	Resource string
	ID       string
	Err      error
}

func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %v", e.Op, e.Resource, e.ID, e.Err)
	}
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Resource, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err matches ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsValidationError reports whether err matches ErrInvalidInput.
func IsValidationError(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsConfigMissing reports whether err names absent settings.
func IsConfigMissing(err error) bool { return errors.Is(err, ErrConfigMissing) }

// IsFetchFailed reports whether err is a fatal fetch failure.
func IsFetchFailed(err error) bool { return errors.Is(err, ErrFetchFailed) }

// IsItemFetchFailed reports whether err is a recoverable per-item failure.
func IsItemFetchFailed(err error) bool { return errors.Is(err, ErrItemFetchFailed) }

// IsMissingPrerequisite reports whether err names a stage to run first.
func IsMissingPrerequisite(err error) bool { return errors.Is(err, ErrMissingPrerequisite) }

// IsRateLimited reports whether err is a 429 from a source.
func IsRateLimited(err error) bool { return errors.Is(err, ErrRateLimited) }

// WrapIO wraps err as an IOError. It returns nil for a nil err.
func WrapIO(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, Err: err}
}

// WrapResource wraps err as a ResourceError. It returns nil for a nil err.
func WrapResource(op, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return &ResourceError{Op: op, Resource: resource, ID: id, Err: err}
}

// WrapParse wraps err as a ParseError. It returns nil for a nil err.
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, File: file, Err: err}
}

// WrapAPI wraps a transport failure as an APIError. It returns nil for a
// nil err.
func WrapAPI(source string, statusCode int, err error) error {
	if err == nil {
		return nil
	}
	return &APIError{Source: source, StatusCode: statusCode, Message: err.Error(), Err: err}
}
