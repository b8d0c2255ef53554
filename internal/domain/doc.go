// Package domain holds the portfolio content records and their field-level rules.
//
// Records carry JSON tags because handlers encode them directly. Validation is
// limited to required fields, enum membership, numeric ranges and URL shape;
// failures are reported as *ValidationError so handlers can name the field.
package domain
