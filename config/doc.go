// Package config loads worker settings.
//
// Settings come from up to three layers, later layers winning:
//
//  1. a file (.cue, .yaml, .yml or .json), optional
//  2. GITFARM_* environment variables
//  3. explicit overrides, typically command-line flags
//
// The merged value is unified with the embedded CUE schema #Settings, which
// supplies defaults and constraints, then checked for concreteness and
// decoded into Settings. Every failure carries CodeInvalidConfig.
package config
