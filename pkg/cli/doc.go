// Package cli implements the localserver command line.
//
// Commands:
//   - serve: serve a directory with the directory-index servlet
//   - fetch: send one request with the minimal client and print the answer
//   - config: print the effective configuration and where each value came from
//   - version: print build information
package cli
