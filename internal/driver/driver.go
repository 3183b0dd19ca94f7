// Package driver defines the language driver contract every front-end
// implements to plug into the lifetime (see internal/lifetime), grounded on
// original_source/cthulhu/include/cthulhu/mediator/mediator.h's language_t
// and original_source/cthulhu/src/mediator/interface.c's driver_t.
package driver

import (
	"github.com/google/uuid"

	"github.com/cthulhu-project/cthulhu/internal/diag"
	"github.com/cthulhu-project/cthulhu/internal/source"
	"github.com/cthulhu-project/cthulhu/internal/tree"
)

// Stage names the fixed sequence of named passes a driver may implement.
// Stages run in this exact order (§4.6); a driver with no callback for a
// given stage is skipped for it rather than treated as an error.
type Stage int

const (
	ForwardSymbols Stage = iota
	CompileImports
	CompileTypes
	CompileSymbols

	numStages = int(CompileSymbols) + 1
)

func (s Stage) String() string {
	switch s {
	case ForwardSymbols:
		return "ForwardSymbols"
	case CompileImports:
		return "CompileImports"
	case CompileTypes:
		return "CompileTypes"
	case CompileSymbols:
		return "CompileSymbols"
	default:
		return "Stage"
	}
}

// Context is the per-translation-unit state a driver's callbacks operate
// on: the owning lifetime-facing Host, the scanner handle it parsed from,
// its driver-owned AST root (opaque to the core), the tree module it is
// building, and a scratch slot for whatever else the driver needs to carry
// between stages.
type Context struct {
	ID      uuid.UUID
	Host    Host
	Driver  *Driver
	Handle  *source.Handle
	AST     any
	Root    *tree.Module
	Scratch any
}

// RequiresCompiling reports whether this context has an AST to lower —
// mirrors context_requires_compiling, which original drivers use to skip
// contexts created for a module stub with no parsed body (e.g. an import
// placeholder).
func (c *Context) RequiresCompiling() bool {
	return c != nil && c.AST != nil
}

// Host is the narrow slice of the lifetime a driver callback is given: just
// enough to register contexts and reach the shared diagnostics sink,
// without exposing the full mediator surface (extension table, other
// drivers) back to driver code.
type Host interface {
	Sink() *diag.Sink
	AddContext(path string, ctx *Context)
}

// StagePass is one named-stage callback a driver registers; absent entries
// in Driver.Passes are no-ops for that stage.
type StagePass func(ctx *Context)

// Driver is the contract a language front-end implements to register
// itself with a lifetime. Every field except ID/DisplayName/Version is
// optional; a driver that only parses (no semantic stages) is valid.
type Driver struct {
	ID          string
	DisplayName string
	Version     string
	Extensions  []string

	// Create is invoked once, immediately after registration — the driver's
	// chance to set up global state or register a builtin root module.
	Create func(h Host)

	// Preparse/Postparse are hooks for a driver to own scanner state around
	// parsing (preparse builds a scan context; postparse is handed the scan
	// handle and whatever AST the driver's own grammar produced). The
	// lifetime never calls them: Lifetime.Parse invokes only Parse.
	Preparse  func(h Host) any
	Postparse func(h Host, scan any, ast any)

	// Parse produces tree-module stubs registered into the lifetime under
	// some canonical path; it is the driver's own responsibility to call
	// Host.AddContext.
	Parse func(h Host, handle *source.Handle)

	// Passes holds the four named semantic stages, indexed by Stage.
	Passes [numStages]StagePass
}

// PassFor returns the callback registered for stage, or nil if the driver
// has none (a no-op for that stage).
func (d *Driver) PassFor(stage Stage) StagePass {
	if int(stage) < 0 || int(stage) >= len(d.Passes) {
		return nil
	}
	return d.Passes[stage]
}
