// Package model provides the record types of the atlas dataset.
//
// This package contains type definitions and decoding only. Every other
// internal package imports model; model imports nothing internal.
//
// Key design constraints:
//   - Reference data (entities, stack layers, action types, entity classes)
//     decodes strictly into plain structs
//   - Events and patterns decode leniently: any JSON object yields a record,
//     and each field remembers whether it was present and well-typed
//   - Enumerated fields are closed string types with Parse/Valid helpers
//   - All JSON tags use snake_case
package model
