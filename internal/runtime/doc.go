// Package runtime implements the workflow engine: first-match step selection
// over the transition table, variable and prompt actions, and marker expansion
// for prompt templates.
//
// The engine is stateless with respect to sessions. Submit clones the session
// it is given, so callers may keep or discard either copy.
package runtime
