// Package core profiles delimited data files and checks them against the
// tables declared in EML metadata.
//
// The package has no transport dependencies; the HTTP server and the CLI
// both drive it through [Service] or the components directly.
//
// # Components
//
//   - [Catalog]: fixed lookup tables (date/time formats, NA tokens,
//     missing-value candidates, sentinel rule), built once per process.
//   - [Inferencer]: assigns a column type to a sample and guesses its
//     missing-value code. [BuildDataTable] renders the result as EML.
//   - [Checker]: validates a data file against a declared table and
//     returns a [Report].
//   - [Collapse]: shortens runs of repeated row errors.
//   - [ResultStore]: caches reports per data file and schema hash.
//   - [History]: optional Postgres record of check runs.
//
// # Reading
//
// Files are read with encoding/csv after decoding the declared character
// encoding. UTF-8 input has its byte-order mark removed and invalid
// sequences replaced. At most MaxRows data rows are read; a sample cut
// short sets [DataFile.Truncated].
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError].
// Codes are grouped by area: SCH (metadata), VAL (columns), FILE (data
// files), CHK (check execution), RATE and the ERR000 fallback.
package core
