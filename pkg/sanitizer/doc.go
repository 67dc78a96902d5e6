// Package sanitizer normalizes user-entered text before validation and storage.
//
// Every function is idempotent. Invalid input yields an empty value rather
// than an error so callers decide whether emptiness is a validation failure.
package sanitizer
