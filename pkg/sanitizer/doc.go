// Package sanitizer normalizes guest and inventory input before validation
// and storage.
//
// All functions are idempotent. Invalid input yields an empty string rather
// than an error; validation decides whether an empty value is acceptable.
//
// Normalization includes:
//   - Names: collapse whitespace, trim leading/trailing spaces
//   - Emails: trim and lowercase
//   - Phone numbers: E.164 (+[country][number]) using the configured regions
//   - Reference codes: trim and uppercase
package sanitizer
