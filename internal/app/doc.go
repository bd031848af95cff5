// Package app wires the pathfinder components together. It builds the
// logger, opens the graph store, and owns the lifecycle of the HTTP and
// socket.io server, decoupled from any specific entrypoint like the CLI.
// It also hosts the offline operations (route, import, list) that the CLI
// runs without a server.
package app
