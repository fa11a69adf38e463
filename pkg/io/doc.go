// Package io provides JSON and YAML import and export for board files.
//
// # Overview
//
// A board file describes a chart by hand: the unit mode and the people on
// it. Files can be written by hand, exported from a saved board, and
// re-imported without loss.
//
// # Format
//
//	name: Team
//	mode: auto          # auto, cm or ft
//	people:
//	  - name: Ana
//	    height: 168     # centimeters
//	    gender: female
//	    color: "#c44144"
//	  - name: Ben
//	    height: 5'11"   # or any height expression
//	    image: https://example.com/ben.png
//
// The same structure is accepted as JSON. Heights are either numbers
// (centimeters) or strings parsed by [units.ParseHeight], so "1.8m" and
// "5ft 11in" both work. Exports always write numeric centimeters.
//
// # Validation
//
// People are validated like any other entity: names must be non-empty,
// heights positive, colors #rrggbb and images http(s) URLs. Errors carry
// the index of the offending person.
package io
