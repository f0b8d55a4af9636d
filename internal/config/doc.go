// Package config provides configuration loading, merging, and validation
// for the keystore.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Environment variables (GCREDSTASH_ prefix)
//  2. Command-line flags
//  3. JSON config file
//
// Fields left empty by every source receive the defaults from [Defaults].
// The main entry point is [GetStructuredConfig].
package config
