// Package cmd implements the hitpull CLI commands using Cobra.
//
// Available commands:
//   - build: Run the request batch over a source tree and write the result
//   - validate: Check config and front matter requests without sending them
//   - list: Show the expanded requests a build would send
//   - init: Create a sample hitpull.yaml and source tree
//   - version: Show hitpull version information
//
// Most flags can also be set through HITPULL_* environment variables.
package cmd
