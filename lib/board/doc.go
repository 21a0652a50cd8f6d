// Package board loads board catalogs: a shared baseline layer, the dependency
// constraints every board must satisfy, and one override layer per board.
//
// # Catalog layout
//
//	common.yaml                  baseline options and macro symbols
//	constraints.yaml             dependency rules
//	boards/<BOARD_ID>/board.yaml override layer
//
// A board file names the baseline it includes with `baseline:` (default
// common.yaml). Inclusion only decides which baseline is used; precedence is
// always override over baseline, wherever the include appears.
//
// # Values
//
//	filesystem.fat: enabled           # boolean, same as true
//	hardware.uart_count: 3            # integer
//	board.name: "ESP32 Custom"        # string
//	memory.gc_stack_entry_type: !sym size_t
//
// Duplicate keys, unknown fields and floating point or nested values are
// rejected when the catalog is opened.
package board
