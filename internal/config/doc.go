// Package config loads the settings for the eodread tool.
//
// # Configuration Sources
//
// Configuration is layered, later sources overriding earlier ones:
//
//  1. Built-in defaults (Default)
//  2. A YAML file passed with --config
//  3. Environment variables, optionally seeded from a .env file
//
// # Environment Variables
//
// Variables are namespaced with EOD_ and follow the struct nesting:
//
//	EOD_LOGGING_LEVEL=debug
//	EOD_LOGGING_OUTPUT=both
//	EOD_INGEST_PRODUCTS=OZN,ZN
//	EOD_INGEST_STRICT=true
//	EOD_TELEMETRY_METRICS_FILE=metrics/eodread.prom
//
// The merged result is validated with struct tags; a failure is returned as
// a CONFIG error.
package config
