// Command cthulhud is the minimal CLI host for the compiler core: it
// registers the known drivers, loads a cthulhu.yaml project file if one is
// present, parses every source file named on argv, resolves and lowers
// each module, verifies the resulting SSA, and prints diagnostics and SSA
// to stdout/stderr.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/cthulhu-project/cthulhu/internal/config"
	"github.com/cthulhu-project/cthulhu/internal/demodriver"
	"github.com/cthulhu-project/cthulhu/internal/driver"
	"github.com/cthulhu-project/cthulhu/internal/lifetime"
	"github.com/cthulhu-project/cthulhu/internal/lower"
	"github.com/cthulhu-project/cthulhu/internal/pipeline"
	"github.com/cthulhu-project/cthulhu/internal/source"
	"github.com/cthulhu-project/cthulhu/internal/ssa"
	"github.com/cthulhu-project/cthulhu/internal/tree"
	"github.com/cthulhu-project/cthulhu/internal/types"
	"github.com/cthulhu-project/cthulhu/internal/verify"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: cthulhud [cthulhu.yaml] <source-file>...")
		return 2
	}

	color := isatty.IsTerminal(os.Stdout.Fd())
	out := newPrinter(color)

	var projectPath string
	var sources []string
	for _, a := range args {
		if strings.HasSuffix(a, ".yaml") || strings.HasSuffix(a, ".yml") {
			projectPath = a
			continue
		}
		sources = append(sources, a)
	}
	if projectPath != "" {
		cfg, err := config.Load(projectPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		out.logProject(cfg)
	}

	reg := types.NewRegistry()
	lt := lifetime.NewLifetime(lifetime.NewMediator("cthulhud", "0.1.0"))
	lt.SetRegionHook(out.region)
	lt.AddLanguage(demodriver.New(reg))

	for _, path := range sources {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		ext := extensionOf(path)
		handle := source.NewHandle(path, demodriver.ID, data)
		lt.ParseExtension(ext, handle)
	}

	p := pipeline.New(
		pipeline.Step{Name: "resolve", Run: func() { lt.Region("resolve", lt.Resolve) }},
		pipeline.Step{Name: "forward-symbols", Run: func() { lt.Region("forward-symbols", func() { lt.RunStage(driver.ForwardSymbols) }) }},
		pipeline.Step{Name: "compile-imports", Run: func() { lt.Region("compile-imports", func() { lt.RunStage(driver.CompileImports) }) }},
		pipeline.Step{Name: "compile-types", Run: func() { lt.Region("compile-types", func() { lt.RunStage(driver.CompileTypes) }) }},
		pipeline.Step{Name: "compile-symbols", Run: func() { lt.Region("compile-symbols", func() { lt.RunStage(driver.CompileSymbols) }) }},
	)
	ran := p.Run(lt.Sink())
	out.logSteps(ran)

	var lowerer *lower.Lowerer
	var modules map[string]*tree.Module
	if !lt.Sink().HasErrors() {
		lowerer = lower.New(lt.Sink())
		modules = lt.CollectModules()
		lt.Region("codegen", func() { lowerer.LowerAll(modules) })
	}

	lt.Sink().Format(os.Stderr, color)
	if lt.Sink().HasErrors() {
		return 1
	}

	failed := false
	for _, modName := range sortedModuleNames(modules) {
		out.logModule(modName)
		symbols := lowerer.Module(modName)
		for _, name := range sortedSymbolNames(symbols) {
			sym := symbols[name]
			res := verify.Symbol(sym)
			if !res.OK() {
				failed = true
				for _, e := range res.Errors {
					fmt.Fprintf(os.Stderr, "verify: %s: %s\n", name, e)
				}
				continue
			}
			out.symbol(sym)
		}
	}
	if failed {
		return 1
	}
	return 0
}

// sortedModuleNames returns each module's own Path (the qualifying prefix
// lower.Lowerer.Module groups by), not the context path modules is keyed
// by — a driver's registered path (e.g. "a.demo") and its tree.Module's own
// name (e.g. "a") need not match.
func sortedModuleNames(modules map[string]*tree.Module) []string {
	names := make([]string, 0, len(modules))
	for _, m := range modules {
		names = append(names, m.Path())
	}
	sort.Strings(names)
	return names
}

func extensionOf(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i:]
	}
	return ""
}

func sortedSymbolNames(symbols map[string]*ssa.Symbol) []string {
	names := make([]string, 0, len(symbols))
	for name := range symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type printer struct {
	color bool
}

func newPrinter(color bool) *printer { return &printer{color: color} }

func (p *printer) paint(code, text string) string {
	if !p.color {
		return text
	}
	return "\x1b[" + code + "m" + text + "\x1b[0m"
}

func (p *printer) logProject(cfg *config.ProjectConfig) {
	fmt.Printf("project: %d driver(s), %d root(s), stdlib preamble: %v\n",
		len(cfg.DriverIDs()), len(cfg.Roots()), cfg.StdlibPreamble)
}

func (p *printer) logSteps(ran []string) {
	fmt.Printf("ran: %s\n", strings.Join(ran, " -> "))
}

// region is a lifetime.RegionHook: it logs each region's start and end,
// the way the original mediator's fnRegion plugin callback let a listener
// observe eRegionLoadCompiler..eRegionEnd as they began.
func (p *printer) region(name string, ending bool) {
	if ending {
		fmt.Printf("region %s: end\n", name)
		return
	}
	fmt.Printf("region %s: begin\n", name)
}

func (p *printer) logModule(name string) {
	fmt.Printf("module %s:\n", p.paint("36", name))
}

func (p *printer) symbol(sym *ssa.Symbol) {
	fmt.Printf("%s %s\n", sym.Type, p.paint("35", sym.Name))
	if sym.Value != nil {
		fmt.Printf("  = %s\n", valueString(sym.Value))
		return
	}
	for _, blk := range sym.Blocks {
		fmt.Printf("%s:\n", blk.Name)
		for _, step := range blk.Steps {
			fmt.Printf("  %s\n", stepString(step))
		}
	}
}

func valueString(v *ssa.Value) string {
	switch v.Type.Kind {
	case ssa.TypeBool:
		return fmt.Sprintf("%v", v.Bool)
	case ssa.TypeString:
		return fmt.Sprintf("%q", v.String)
	case ssa.TypeDigit:
		return v.Digit.String()
	default:
		return v.Type.String()
	}
}

func operandString(op ssa.Operand) string {
	switch op.Kind {
	case ssa.OperandEmpty:
		return "empty"
	case ssa.OperandImm:
		return valueString(op.Imm)
	case ssa.OperandBlock:
		return op.Block.Name
	case ssa.OperandGlobal:
		return "@" + op.Global.Name
	case ssa.OperandFunction:
		return "@" + op.Function.Name
	case ssa.OperandLocal:
		return fmt.Sprintf("local%d", op.Local)
	case ssa.OperandParam:
		return fmt.Sprintf("param%d", op.Param)
	case ssa.OperandReg:
		return fmt.Sprintf("%%%p", op.Reg)
	default:
		return op.Kind.String()
	}
}

func stepString(s *ssa.Step) string {
	switch s.Opcode {
	case ssa.OpStore:
		return fmt.Sprintf("store %s, %s", operandString(s.Dst), operandString(s.Src))
	case ssa.OpLoad, ssa.OpAddress:
		return fmt.Sprintf("%s %s", s.Opcode, operandString(s.Operand))
	case ssa.OpImm:
		return fmt.Sprintf("imm %s", valueString(s.Value))
	case ssa.OpUnary:
		return fmt.Sprintf("unary %s %s", s.UnaryOp, operandString(s.Operand))
	case ssa.OpBinary:
		return fmt.Sprintf("binary %s %s, %s", s.BinaryOp, operandString(s.LHS), operandString(s.RHS))
	case ssa.OpCompare:
		return fmt.Sprintf("compare %s %s, %s", s.CompareOp, operandString(s.LHS), operandString(s.RHS))
	case ssa.OpCast:
		return fmt.Sprintf("cast %s to %s", operandString(s.Operand), s.CastTo)
	case ssa.OpCall:
		args := make([]string, len(s.Args))
		for i, a := range s.Args {
			args[i] = operandString(a)
		}
		return fmt.Sprintf("call %s(%s)", operandString(s.Function), strings.Join(args, ", "))
	case ssa.OpIndex:
		return fmt.Sprintf("index %s[%s]", operandString(s.Array), operandString(s.Index))
	case ssa.OpMember:
		return fmt.Sprintf("member %s.%s", operandString(s.Object), s.Field)
	case ssa.OpReturn:
		return fmt.Sprintf("return %s", operandString(s.ReturnValue))
	case ssa.OpBranch:
		return fmt.Sprintf("branch %s, %s, %s", operandString(s.Cond), operandString(s.Then), operandString(s.Else))
	case ssa.OpJump:
		return fmt.Sprintf("jump %s", operandString(s.Target))
	default:
		return s.Opcode.String()
	}
}
