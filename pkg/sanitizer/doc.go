// Package sanitizer normalizes free-text input before validation and storage.
//
// Every function is idempotent and never fails: input that cannot be cleaned
// comes back as an empty string, which validation then rejects.
package sanitizer
