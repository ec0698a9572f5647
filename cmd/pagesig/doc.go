// Package main hosts the pagesig CLI entrypoint and command graph.
//
// The Cobra command tree wires configuration, logging and the signature,
// annotation and image stores into the audit engine and the calibration
// session, then renders their results as tables or JSON. Commands stay thin:
// each one resolves the workspace, calls into internal packages and formats
// what comes back.
package main
