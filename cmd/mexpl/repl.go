package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"
	"gopkg.in/ini.v1"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"

	"github.com/kallfass/mex"
	"github.com/kallfass/mex/expand"
	"github.com/kallfass/mex/lang"
	"github.com/kallfass/mex/macro"
	"github.com/kallfass/mex/template"
)

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2024 Janek Kallfass <janek@kallfass.io>

*/

// tracer traces with key 'mex.repl'.
func tracer() tracing.Trace {
	return tracing.Select("mex.repl")
}

// main() starts an interactive CLI ("MEXPL"), where users may enter
// expressions of the mex expression language. MEXPL runs the macro expansion
// pass over each input and prints the expanded syntax tree. It is intended
// as a sandbox for experimenting with macro signatures, shape matching and
// templates; a handful of demonstration macros is pre-registered.
//
// Compile-time configuration for the demonstration macros is loaded from an
// INI file given with -config, e.g.
//
//	[warn]
//	enabled = true
//
func main() {
	// set up logging
	initDisplay()
	gtrace.SyntaxTracer = gologadapter.New()
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	configf := flag.String("config", "", "Compile-time configuration (INI file)")
	depth := flag.Int("depth", expand.DefaultMaxDepth, "Expansion depth limit")
	flag.Parse()
	tracer().SetTraceLevel(tracing.TraceLevelFromString(*tlevel))
	pterm.Info.Println("Welcome to MEXPL") // colored welcome message
	tracer().Infof("Trace level is %s", *tlevel)
	//
	// set up the macro registry and compile-time configuration
	reg := macro.NewRegistry()
	if err := registerDemoMacros(reg); err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	reg.Freeze()
	config, err := loadConfig(*configf)
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	//
	// set up REPL
	repl, err := readline.New("mex> ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp := &Intp{
		repl:     repl,
		registry: reg,
		config:   config,
		maxDepth: *depth,
	}
	tracer().Infof("Registered macros: %s", strings.Join(reg.Names(), ", "))
	tracer().Infof("Quit with <ctrl>D") // inform user how to stop the CLI
	intp.REPL()
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// loadConfig reads compile-time configuration from an INI file into a flat
// key/value map. Keys of named sections are prefixed with "section.".
func loadConfig(path string) (map[string]string, error) {
	values := make(map[string]string)
	if path == "" {
		return values, nil
	}
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("cannot load configuration: %v", err)
	}
	for _, section := range cfg.Sections() {
		prefix := ""
		if section.Name() != ini.DefaultSection {
			prefix = section.Name() + "."
		}
		for _, key := range section.Keys() {
			values[prefix+key.Name()] = key.Value()
		}
	}
	return values, nil
}

// Intp is our interpreter object
type Intp struct {
	repl     *readline.Instance
	registry *macro.Registry
	config   map[string]string
	maxDepth int
	unitno   int
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		if line == "quit" {
			break
		}
		if err := intp.Eval(line); err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
	}
	println("Good bye!")
}

// Eval parses a single input expression, runs the expansion pass over it and
// prints the expanded tree.
func (intp *Intp) Eval(line string) error {
	intp.unitno++
	unitname := fmt.Sprintf("repl-%d", intp.unitno)
	root, err := lang.Parse(unitname, line)
	if err != nil {
		return err
	}
	diags := expand.NewDiagnostics()
	expanded, err := expand.Expand(expand.Unit{Name: unitname, Root: root}, intp.registry,
		expand.WithConfig(intp.config),
		expand.MaxDepth(intp.maxDepth),
		expand.WithDiagnostics(diags))
	if err != nil {
		diags.WriteTo(os.Stderr)
		return err
	}
	if expanded == nil {
		pterm.Info.Println("(deleted)") // the expansion compiled to nothing
		return nil
	}
	pterm.Info.Println(expanded.String())
	printTree(expanded)
	return nil
}

// printTree renders an expanded syntax tree with pterm.
func printTree(n *mex.Node) {
	ll := leveledNode(n, pterm.LeveledList{}, 0)
	root := pterm.NewTreeFromLeveledList(ll)
	pterm.DefaultTree.WithRoot(root).Render()
}

func leveledNode(n *mex.Node, ll pterm.LeveledList, level int) pterm.LeveledList {
	if n == nil {
		return append(ll, pterm.LeveledListItem{Level: level, Text: "nil"})
	}
	text := n.Kind.String()
	switch n.Kind {
	case mex.LiteralKind:
		text = n.String()
	case mex.IdentKind:
		text = n.Name
	case mex.UnaryKind, mex.BinaryKind:
		text = n.Name
	case mex.CallKind:
		text = n.Name + "(…)"
	case mex.LambdaKind:
		text = "{" + strings.Join(n.Params, ", ") + " ->}"
	}
	if !n.Location().IsSynthetic() {
		text += "   @ " + n.Location().String()
	}
	ll = append(ll, pterm.LeveledListItem{Level: level, Text: text})
	for _, ch := range n.Children {
		ll = leveledNode(ch, ll, level+1)
	}
	return ll
}

// --- Demonstration macros ----------------------------------------------

// registerDemoMacros populates the registry with a few macros exercising
// shape matching, templates, configuration reads and call-site deletion.
//
//	warn(cond, msg)    compile-time assertion; compiles to nothing unless
//	                   the 'warn.enabled' flag is set
//	unless(cond) {…}   expands to !(cond) && body
//	stringify(expr)    replaces the call by the source notation of expr
//	twice(f)           expands to f() + f(), re-scanned for macro calls
//
func registerDemoMacros(reg *macro.Registry) error {
	warnT := template.Must(`!($cond) && println(%loc + ": " + $msg)`)
	warnSig, err := macro.DeclaredSignature("warn", macro.ContextType, "Expr", "Expr")
	if err != nil {
		return err
	}
	err = reg.Register(warnSig, func(ctx *macro.Context, args []*mex.Node) (macro.Replacement, error) {
		if !ctx.Config().Bool("warn.enabled") {
			return macro.Delete(), nil
		}
		result, err := warnT.Materialize(
			map[string]*mex.Node{"cond": args[0], "msg": args[1]},
			map[string]interface{}{"loc": ctx.Location().String()},
		)
		if err != nil {
			return macro.Replacement{}, err
		}
		return macro.Replace(result), nil
	})
	if err != nil {
		return err
	}

	unlessT := template.Must(`!($cond) && $body`)
	unlessSig, err := macro.DeclaredSignature("unless", macro.ContextType, "Expr", "Fn")
	if err != nil {
		return err
	}
	err = reg.Register(unlessSig, func(ctx *macro.Context, args []*mex.Node) (macro.Replacement, error) {
		body := mex.Lit(true) // empty lambda guards nothing
		if len(args[1].Children) > 0 {
			body = args[1].Children[0]
		}
		result, err := unlessT.Materialize(
			map[string]*mex.Node{"cond": args[0], "body": body}, nil)
		if err != nil {
			return macro.Replacement{}, err
		}
		return macro.Replace(result), nil
	})
	if err != nil {
		return err
	}

	stringifySig, err := macro.DeclaredSignature("stringify", macro.ContextType, "Expr")
	if err != nil {
		return err
	}
	err = reg.Register(stringifySig, func(ctx *macro.Context, args []*mex.Node) (macro.Replacement, error) {
		return macro.Replace(mex.Lit(args[0].String())), nil
	})
	if err != nil {
		return err
	}

	twiceSig, err := macro.DeclaredSignature("twice", macro.ContextType, "Ident")
	if err != nil {
		return err
	}
	return reg.Register(twiceSig, func(ctx *macro.Context, args []*mex.Node) (macro.Replacement, error) {
		// emits two calls, themselves candidates for further expansion
		return macro.Replace(mex.Binary("+",
			mex.Call(args[0].Name),
			mex.Call(args[0].Name))), nil
	})
}
