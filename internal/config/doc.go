// Package config loads, normalizes, and validates octlabel configuration data.
//
// It supplies repository defaults for the label vocabularies (tissue types,
// clinical classifications, other attributes), expands user paths including
// tilde shortcuts, and reads optional TOML files. Components receive the
// Config value explicitly at construction; nothing in this repository reads
// configuration from ambient package state, so multiple configurations can
// coexist in tests.
package config
