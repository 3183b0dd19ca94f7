// Package demodriver is a minimal illustrative language driver: its source
// format is line-oriented digit-constant and identity-function
// declarations, just enough to exercise every stage of the driver.Driver
// contract end to end (Create, Parse building a tree.Module, AddContext)
// without needing a real lexer/parser pulled in from elsewhere in the
// corpus. It resolves everything during Parse itself — no forward
// declarations, no imports — so its four semantic-stage callbacks are all
// no-ops; see DESIGN.md for why that is a legitimate, not a stubbed-out,
// choice for a driver this small.
package demodriver

import (
	"path/filepath"
	"strings"

	"github.com/cthulhu-project/cthulhu/internal/diag"
	"github.com/cthulhu-project/cthulhu/internal/digit"
	"github.com/cthulhu-project/cthulhu/internal/driver"
	"github.com/cthulhu-project/cthulhu/internal/lifetime"
	"github.com/cthulhu-project/cthulhu/internal/source"
	"github.com/cthulhu-project/cthulhu/internal/tree"
	"github.com/cthulhu-project/cthulhu/internal/types"
)

// ID is the driver identity this package registers under.
const ID = "demo"

// Extension is the file extension this driver claims.
const Extension = ".demo"

// New constructs the demo driver. reg supplies the canonical int type every
// declaration in this format uses (the format has no type syntax of its
// own).
func New(reg *types.Registry) *driver.Driver {
	d := &driver.Driver{
		ID:          ID,
		DisplayName: "demo digit-constant language",
		Version:     "0.1.0",
		Extensions:  []string{Extension},
	}
	d.Create = func(driver.Host) {}
	d.Parse = func(h driver.Host, handle *source.Handle) {
		mod := parseModule(h.Sink(), reg, handle)
		ctx := lifetime.NewContext(handle, h, d)
		ctx.AST = mod // this format has no separate AST shape; the tree.Module it builds during Parse doubles as its own "requires compiling" marker.
		ctx.Root = mod
		h.AddContext(handle.Path, ctx)
	}
	return d
}

// moduleName derives a module's name from its source path: base name with
// the .demo extension trimmed.
func moduleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, Extension)
}

func parseModule(sink *diag.Sink, reg *types.Registry, handle *source.Handle) *tree.Module {
	mod := tree.NewModule(moduleName(handle.Path), nil, 0)
	intType := reg.Digit(digit.Signed, digit.Int)

	for i := 1; ; i++ {
		raw := handle.Line(i)
		if raw == nil {
			break
		}
		line := strings.TrimSpace(string(raw))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		span := source.Span{Handle: handle, FirstLine: i, LastLine: i}

		switch {
		case strings.HasPrefix(line, "global "):
			parseGlobal(sink, intType, mod, span, strings.TrimPrefix(line, "global "))
		case strings.HasPrefix(line, "func "):
			parseFunc(sink, reg, intType, mod, span, strings.TrimPrefix(line, "func "))
		default:
			sink.Report(diag.Error, span, "unrecognized statement: %q", line)
		}
	}
	return mod
}

// parseGlobal handles "NAME = INT".
func parseGlobal(sink *diag.Sink, intType *types.Type, mod *tree.Module, span source.Span, rest string) {
	name, rhs, ok := cut(rest, "=")
	if !ok {
		sink.Report(diag.Error, span, "malformed global declaration: %q", rest)
		return
	}
	value, ok := digit.Parse(rhs)
	if !ok {
		sink.ReportCode(diag.Error, tree.ErrInvalidLiteral, span, "invalid integer literal %q", rhs)
		return
	}
	lit := tree.NewDigitLiteral(sink, span, intType, value)
	g := tree.NewGlobal(span, intType, name, lit)
	if _, added := mod.Add(tree.TagValues, name, g); !added {
		sink.ReportCode(diag.Error, tree.ErrRedefinition, span, "global %q already declared", name)
	}
}

// parseFunc handles "NAME(PARAM) = PARAM" (identity) or "NAME(PARAM) = INT"
// (a constant function) — the two shapes this minimal grammar supports.
func parseFunc(sink *diag.Sink, reg *types.Registry, intType *types.Type, mod *tree.Module, span source.Span, rest string) {
	open := strings.IndexByte(rest, '(')
	closeIdx := strings.IndexByte(rest, ')')
	if open < 0 || closeIdx < open {
		sink.Report(diag.Error, span, "malformed function declaration: %q", rest)
		return
	}
	name := strings.TrimSpace(rest[:open])
	paramName := strings.TrimSpace(rest[open+1 : closeIdx])

	_, rhs, ok := cut(rest[closeIdx+1:], "=")
	if !ok {
		sink.Report(diag.Error, span, "malformed function declaration: %q", rest)
		return
	}

	closureType := reg.Closure([]types.Field{{Name: paramName, Type: intType}}, intType, false)
	param := tree.NewParam(span, intType, paramName)
	paramDecl := tree.NewDecl(param)

	var body tree.Node
	switch {
	case rhs == paramName:
		body = &tree.Return{Value: &tree.Name{Ref: paramDecl}}
	default:
		value, ok := digit.Parse(rhs)
		if !ok {
			sink.Report(diag.Error, span, "function body must return its parameter or a digit literal, got %q", rhs)
			return
		}
		body = &tree.Return{Value: tree.NewDigitLiteral(sink, span, intType, value)}
	}

	fn := tree.NewFunction(span, closureType, name, []*tree.Decl{paramDecl}, nil, body)
	if _, added := mod.Add(tree.TagProcs, name, fn); !added {
		sink.ReportCode(diag.Error, tree.ErrRedefinition, span, "function %q already declared", name)
	}
}

// cut splits s on the first occurrence of sep, trimming whitespace from
// both halves, and reports whether sep was found.
func cut(s, sep string) (before, after string, found bool) {
	i := strings.Index(s, sep)
	if i < 0 {
		return "", "", false
	}
	return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+len(sep):]), true
}
