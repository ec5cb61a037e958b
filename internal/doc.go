// Package internal contains shared types and utilities for dockline.
//
// It provides configuration parsing, session naming, cleanup orchestration,
// and the output Writer whose underlying stream receives daemon responses.
package internal
