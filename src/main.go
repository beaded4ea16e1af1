// Command qtjirc wires the Lowerer, Validator, Transform Kernel and LLVM
// Emitter together in the order of SPEC §2's data-flow line. The
// source-language parser and the real AST snapshot store remain external
// collaborators (SPEC §1): this driver accepts a small JSON interchange
// format (see loadSnapshot) good enough to exercise lowering end to end
// without depending on a real frontend.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/janus-lang/janus-sub005/src/astsnap"
	"github.com/janus-lang/janus-sub005/src/foreign"
	"github.com/janus-lang/janus-sub005/src/llvmemit"
	"github.com/janus-lang/janus-sub005/src/lower"
	"github.com/janus-lang/janus-sub005/src/passes"
	"github.com/janus-lang/janus-sub005/src/registry"
	"github.com/janus-lang/janus-sub005/src/transform"
	"github.com/janus-lang/janus-sub005/src/util"
	"github.com/janus-lang/janus-sub005/src/validate"
)

// jsonToken/jsonNode/jsonSnapshot are the on-disk interchange format this
// driver reads instead of real frontend output, since the parser and
// snapshot store are external collaborators (SPEC §1 Out-of-scope). The
// last entry in Nodes is taken as the program's root block, mirroring the
// unit-id-doubles-as-root-node-id convention lower.LowerUnit relies on.
type jsonToken struct {
	Kind astsnap.TokenKind
	Text string
}

type jsonNode struct {
	Kind     astsnap.Kind
	Token    int // index into Tokens, or -1.
	Children []int
}

type jsonSnapshot struct {
	Source string
	Tokens []jsonToken
	Nodes  []jsonNode
}

// loadSnapshot decodes path's JSON contents into an astsnap.Builder-backed
// Snapshot, returning the unit ID lower.LowerUnit expects as its root.
func loadSnapshot(path string) (astsnap.Snapshot, int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("could not read snapshot %q: %w", path, err)
	}
	var doc jsonSnapshot
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, 0, fmt.Errorf("could not parse snapshot %q: %w", path, err)
	}

	b := astsnap.NewBuilder()
	tokenIDs := make([]int, len(doc.Tokens))
	for i, t := range doc.Tokens {
		tokenIDs[i] = b.AddToken(astsnap.Token{Kind: t.Kind, Text: t.Text})
	}

	var lastNode int
	for _, n := range doc.Nodes {
		tok := -1
		if n.Token >= 0 && n.Token < len(tokenIDs) {
			tok = tokenIDs[n.Token]
		}
		lastNode = b.AddNode(astsnap.ASTNode{Kind: n.Kind, FirstToken: tok, LastToken: tok}, n.Children...)
	}

	var unitID int
	for i := 0; i <= lastNode; i++ {
		unitID = b.AddUnit(doc.Source)
	}
	return b.Build(), unitID, nil
}

// run executes every phase this repo implements against the snapshot named
// by opt.Src, writing the resulting LLVM IR to opt.Out or stdout.
func run(opt util.Options) error {
	if opt.Src == "" {
		return fmt.Errorf("no input snapshot given (pass a path as the final argument)")
	}

	snap, unitID, err := loadSnapshot(opt.Src)
	if err != nil {
		return err
	}

	builtins := registry.NewBuiltins()
	externs := registry.NewExtern()
	parser := foreign.NewDeclParser()

	result, err := lower.LowerUnit(snap, unitID, opt.SourceDir, builtins, externs, parser, func(msg string) {
		if opt.Verbose {
			fmt.Fprintln(os.Stderr, "warning:", msg)
		}
	})
	if err != nil {
		return fmt.Errorf("lowering error: %w", err)
	}

	mgr := transform.NewManager(
		passes.ConstantFold{},
		passes.DeadCodeElimination{},
		passes.CommonSubexpressionElimination{},
		passes.MatmulReluFusion{},
		passes.QuantumGateCancellation{},
	)

	for _, g := range result.Graphs {
		iterations := mgr.Run(g)
		if opt.Verbose {
			fmt.Fprintf(os.Stderr, "transform: %s converged after %d iteration(s)\n", g.FunctionName, iterations)
		}

		res := validate.Validate(g)
		for _, d := range res.Diagnostics {
			fmt.Fprintln(os.Stderr, d.String())
		}
		if res.HasErrors() {
			return fmt.Errorf("validation failed for %s", g.FunctionName)
		}
	}

	e := llvmemit.NewEmitter("qtjir_module", builtins, externs)
	defer e.Dispose()

	if err := e.EmitGraphs(result.Graphs); err != nil {
		return fmt.Errorf("llvm emission error: %w", err)
	}
	if err := e.Verify(); err != nil {
		return fmt.Errorf("module verification failed: %w", err)
	}

	w := util.NewWriter()
	w.WriteString(e.String())
	w.Close()
	return nil
}

func main() {
	opt, err := util.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Printf("Command line argument error: %s\n", err)
		os.Exit(1)
	}

	wg := sync.WaitGroup{}
	if opt.Out != "" {
		f, err := os.OpenFile(opt.Out, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		defer f.Close()
		util.ListenWrite(f, &wg)
	} else {
		util.ListenWrite(nil, &wg)
	}
	defer util.Close()

	if err := run(opt); err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}

	wg.Wait()
}
