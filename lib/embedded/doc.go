// Package embedded provides the built-in board catalog compiled into the
// boardcfg binary.
//
// The catalog is used whenever no catalog directory is configured. It holds
// the common ESP32 baseline, the shared dependency rules and two boards:
// ESP32_GENERIC, which takes the baseline unchanged, and ESP32_GENERIC_CUSTOM,
// which enables DAC, Bluetooth, FAT, asyncio websockets and TLS on top of it.
//
// # Basic Usage
//
//	fsys, err := embedded.Catalog()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cat, err := board.Open(fsys)
//
// Extract copies the catalog to disk as a starting point for a custom one.
package embedded
