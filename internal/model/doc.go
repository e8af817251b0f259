// Package model provides the record types shared by every foodmap package.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import model; model imports nothing internal.
//
// Key design constraints:
//   - Record identity (ID) is assigned by the store, never by callers
//   - JSON tags use the camelCase names of the backup file format
//   - Timestamps are milliseconds since the Unix epoch
//   - DeliveryThreshold is tri-state: unknown, free (0), or an amount
package model
