// Package dataset loads atlas data files.
//
// Two formats are supported:
//   - JSONL: one JSON object per line (events, patterns)
//   - JSON: a single array (entities, stack layers, action types, entity classes)
//
// Loaders never fail. Missing files, unreadable files and malformed records are
// returned as Problems next to whatever could be parsed, so a run always
// completes and the caller decides how loud to be about it.
package dataset
