// Package config loads the server configuration from an HCL file.
//
// Every block and attribute is optional; Default returns the values used for
// anything the file leaves out. Expressions are evaluated with an `env`
// object holding the process environment, so secrets and paths can be
// injected without editing the file:
//
//	store {
//	  kind = "sqlite"
//	  path = env.GRAPH_DB
//	}
//
// Command-line flags are applied on top of the loaded Settings by the cli
// package.
package config
