// SPDX-License-Identifier: EPL-2.0

// Package schema holds the parameter catalog of every algorithm the engine
// exposes.
//
// # Catalog
//
// The catalog is a YAML document embedded in the binary. Each entry names an
// algorithm, its parameters (type, default, optional string choices) and,
// for algorithms the engine can compute, its input and output ports:
//
//	- name: HighPass
//	  params:
//	    - {name: cutoffFrequency, type: number, default: 1500}
//	    - {name: sampleRate, type: number, default: 44100}
//	  inputs:
//	    - {name: signal, type: realArray}
//	  outputs:
//	    - {name: signal, type: realArray}
//
// Default parses the embedded catalog once and returns a shared, read-only
// Table. Load and LoadFile build a Table from another catalog.
//
// # Resolving configuration
//
// Schema.Resolve merges caller options over the defaults and returns a
// ConfigSet holding one value per declared parameter:
//
//	s, err := schema.Default().Lookup("Windowing")
//	cs, err := s.Resolve(map[string]any{"type": "hamming", "size": 2048})
//
// Unknown option names, type mismatches and strings outside a parameter's
// choices wrap ErrConfiguration. Unknown algorithm names wrap ErrNotFound.
package schema
