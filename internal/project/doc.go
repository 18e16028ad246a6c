// Package project defines the kiln.yaml manifest: its Go types, YAML
// parsing, JSON Schema validation, and upward discovery of the project
// root from any working directory inside it.
package project
