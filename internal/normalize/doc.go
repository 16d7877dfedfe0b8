// Package normalize converts compact exchange ticker events into semantic,
// typed records.
//
// The pipeline is decode → rename → filter → cast:
//   - base64-decode and JSON-decode, unwrapping double-encoded payloads
//     exactly once
//   - single-letter field codes map to semantic column names
//   - rows missing any required field are dropped whole and counted
//   - prices parse as float64, trade IDs/counts as int64 (0 on parse
//     failure), timestamps as millisecond epochs
package normalize
