// Package errors provides foundational, type-safe error primitives used across docserver.
//
// This package contains classified error types and helpers for robust error handling,
// including a fluent builder API for constructing ClassifiedError values with context.
//
// Key features:
//   - ErrorCategory: Broad error classification (not_found, content, validation, filesystem, etc.)
//   - ErrorSeverity: Impact level (error, warning, info)
//   - RetryStrategy: Retry behavior (should-retry, no-retry, backoff)
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - HTTP and CLI adapters for error presentation
//
// The document pipeline leans on four categories in particular: CategoryNotFound
// (resolution misses), CategoryContent (malformed metadata headers),
// CategoryValidation (rejected submissions), and CategoryFileSystem (failed
// writes). Handlers never inspect error strings; they route on category.
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryContent, "parse frontmatter").
//		WithContext("file", path).
//		Build()
package errors
