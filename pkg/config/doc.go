// Package config holds the settings of the localserver command.
//
// Values are layered, each layer overriding the previous one:
//   - Default: built-in values
//   - Load: a YAML file
//   - LoadEnv: a .env file and LOCALSERVER_* environment variables
//   - command-line flags, applied by the cli package
//
// Every field set by a layer is recorded in Config.Sources so the CLI can
// report where a value came from.
//
// Example file:
//
//	port: 8080
//	root: ./public
//	implementation: local
//	pollTimeout: 250ms
//	exclude:
//	  - ".git/**"
//	log:
//	  level: debug
package config
