// Package config provides centralized configuration management for the dashboard
// pipeline. It loads settings from defaults, an optional YAML file and environment
// variables, validates them and exposes a typed Config.
//
// # Configuration Sources
//
// Configuration is resolved in the following order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Built-in defaults (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern DASH_<SECTION>_<FIELD>:
//
//	DASH_SERVER_PORT=8080
//	DASH_SOURCE_DOCUMENT_ID=1AbC...
//	DASH_SOURCE_CACHE_TTL=5m
//	DASH_LOGGING_LEVEL=debug
//
// # Validation
//
// A missing spreadsheet document identifier is the only data-source problem reported
// as an error: it is a configuration error, not a data error. Everything downstream
// degrades gracefully.
package config
