// Package layout defines the in-memory model of the home-screen layout
// database: icons, pages, folders and the folder child mirrors.
//
// This package contains type definitions and pure helpers only. Every other
// internal package imports layout; layout imports nothing internal.
//
// Key constraints:
//   - NullText ("(null)") is data, never absence. Text columns that are SQL
//     NULL are rendered to it on load and matched against it on write.
//   - Positions are slots 0..MaxPos on a page or inside a folder.
//   - A model is rebuilt from the store on every load and carries no
//     identity across loads.
package layout
