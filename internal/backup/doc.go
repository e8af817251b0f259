// Package backup moves the catalog in and out of the portable JSON backup
// format.
//
// A backup is either the current object form
//
//	{"version": 1, "settings": {...}, "stores": [...]}
//
// or the legacy bare array of store records. Both are accepted on import;
// export always writes the object form.
//
// # Import
//
// Reconciler.Reconcile decodes the payload and writes it inside a single
// store transaction using one of two policies:
//   - ModeReplace: clear every record, then add each imported record
//   - ModeMerge: update the first existing record with the same name
//     (lowest id), otherwise add
//
// Every embedded menu image is checked with imagesig.ValidateEncoded before
// the record is written. A record whose image fails the check is still
// imported, with the image removed, and counted in Result.ImagesRejected.
//
// Settings carried by the payload are applied only after the transaction has
// committed. A settings failure is reported in Result.SettingsErr and never
// undoes the committed records.
//
// # Errors
//
// Reconcile fails with exactly one of:
//   - *ParseError: the input is not JSON
//   - *FormatError: JSON of the wrong shape; nothing is written
//   - *TransactionError: a write failed; the transaction was rolled back
//
// # Lint
//
// Lint checks a backup against an embedded CUE schema and reports every
// problem it finds without touching the store.
package backup
