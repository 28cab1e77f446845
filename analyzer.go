// Package qualflow provides a go/analysis based analyzer reporting dereferences of
// values that may be nil at the point of use.
package qualflow

import (
	"context"
	"flag"
	"go/ast"
	"maps"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/sirkon/qualflow/internal/cfg"
	"github.com/sirkon/qualflow/internal/config"
	"github.com/sirkon/qualflow/internal/gofront"
	"github.com/sirkon/qualflow/internal/lattice"
	"github.com/sirkon/qualflow/internal/refine"
	"github.com/sirkon/qualflow/internal/report"
	"github.com/sirkon/qualflow/internal/rules"
	"github.com/sirkon/qualflow/internal/store"
	"github.com/sirkon/qualflow/internal/transfer"
)

const doc = `qualflow reports dereferences of values that may be nil

Nullness of locals, parameters and field paths is refined along control flow:
nil checks, early returns, loops, panics and calls known to never return.
Parameters, receivers, fields and call results are expected to be set unless
annotated with //qualflow:nullable directives. Stores of values that may be nil
into fields annotated with //qualflow:nonnull are reported too.`

// Flags for the analyzer.
var (
	configPath string
	trace      bool
	workers    int
)

func init() {
	Analyzer.Flags.StringVar(&configPath, "config", "",
		"path to a YAML qualifier profile, the embedded nullness profile is used when empty")
	Analyzer.Flags.BoolVar(&trace, "trace", false, "log solving progress and print collected reports to stderr")
	Analyzer.Flags.IntVar(&workers, "workers", 0, "functions of a package analyzed at once, the number of CPUs when not positive")
}

// Analyzer is the main entry point for the linter.
var Analyzer = &analysis.Analyzer{
	Name:      "qualflow",
	Doc:       doc,
	Requires:  []*analysis.Analyzer{inspect.Analyzer},
	Run:       run,
	Flags:     flag.FlagSet{},
	FactTypes: []analysis.Fact{new(nullableResult)},
}

// ErrNoInspector is returned when the inspect analyzer result is missing from the pass.
var ErrNoInspector = errors.New("inspector analyzer result not found")

// nullableResult marks functions annotated with nullable results, so that calls
// from dependent packages see them.
type nullableResult struct {
	Ref string
}

func (*nullableResult) AFact() {}

func (f *nullableResult) String() string {
	return "nullableResult(" + f.Ref + ")"
}

func run(pass *analysis.Pass) (any, error) {
	pector, ok := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	if !ok {
		return nil, ErrNoInspector
	}

	profile, err := loadProfile()
	if err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	if trace {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, errors.Wrap(err, "setup logger")
		}
		defer func() {
			_ = logger.Sync()
		}()
	}

	annotations := gofront.FieldAnnotations(pass.TypesInfo, pass.Files)
	translator := gofront.NewTranslator(pass.Pkg, pass.TypesInfo)

	var funcs []*gofront.Function
	nodeFilter := []ast.Node{
		(*ast.FuncDecl)(nil),
	}
	pector.Preorder(nodeFilter, func(node ast.Node) {
		decl := node.(*ast.FuncDecl)
		if isGenerated(pass, decl) {
			return
		}

		fn := translator.Func(decl)
		if fn == nil {
			return
		}
		funcs = append(funcs, fn)

		if obj := pass.TypesInfo.Defs[decl.Name]; obj != nil && fn.NullableResult {
			ref, _ := fn.Ref()
			pass.ExportObjectFact(obj, &nullableResult{Ref: ref.String()})
		}
	})

	engine, err := refine.New(
		passRules(pass, profile),
		refine.WithLogger(logger.With(zap.String("package", pass.Pkg.Path()))),
		refine.WithWorkers(workers),
	)
	if err != nil {
		return nil, errors.Wrap(err, "setup refinement engine")
	}

	fields := fieldQualifiers(profile, annotations)
	jobs := make([]refine.Job, len(funcs))
	for i, fn := range funcs {
		jobs[i] = refine.Job{
			Method:   fn.Method,
			Declared: declaredOf(profile, fn, fields),
		}
	}

	outcomes, err := engine.AnalyzeAll(context.Background(), jobs)
	if err != nil {
		return nil, err
	}

	var collector report.Collector
	build := collector.Phase(report.PhaseBuild)
	check := collector.Phase(report.PhaseCheck)
	for i, out := range outcomes {
		fn := funcs[i]
		if out.Err != nil {
			reportUnanalyzable(build, fn, out.Err)
			continue
		}

		checkUses(check, out.Result, fn, profile)
		checkWrites(check, out.Result, fn, profile, annotations)
	}

	for _, rep := range collector.Sorted() {
		pass.Report(analysis.Diagnostic{
			Pos:      rep.Pos,
			Category: rep.RuleCode.Code(),
			Message:  rep.RuleCode.Code() + ": " + rep.Message,
		})
	}
	if trace {
		collector.PrintSummary(os.Stderr, pass.Fset)
	}

	return nil, nil
}

func loadProfile() (*config.Profile, error) {
	conf := config.Default()
	if configPath != "" {
		var err error
		conf, err = config.Load(configPath)
		if err != nil {
			return nil, errors.Wrap(err, "load qualifier profile")
		}
	}

	profile, err := conf.Resolve()
	if err != nil {
		return nil, errors.Wrap(err, "resolve qualifier profile")
	}

	return profile, nil
}

// passRules extends rules of the profile with nullable results of functions of the
// package and its dependencies.
func passRules(pass *analysis.Pass, profile *config.Profile) *transfer.Rules {
	res := *profile.Rules
	res.Returns = maps.Clone(profile.Rules.Returns)
	for _, fact := range pass.AllObjectFacts() {
		if _, ok := fact.Fact.(*nullableResult); !ok {
			continue
		}
		if ref, ok := gofront.FuncRef(fact.Object); ok {
			res.Returns[ref] = profile.Nullable
		}
	}

	return &res
}

func fieldQualifiers(profile *config.Profile, annotations map[string]gofront.Annotation) map[string]lattice.Qualifier {
	res := make(map[string]lattice.Qualifier, len(annotations))
	for key, a := range annotations {
		switch a {
		case gofront.AnnotationNullable:
			res[key] = profile.Nullable
		case gofront.AnnotationNonNull:
			res[key] = profile.NonNull
		}
	}

	return res
}

func declaredOf(profile *config.Profile, fn *gofront.Function, fields map[string]lattice.Qualifier) *store.Declared {
	d := profile.Declared
	d.Fields = fields
	d.Paths = map[string]lattice.Qualifier{}
	if fn.Receiver != "" {
		d.Paths[fn.Receiver] = profile.Declared.Receiver
	}
	for _, name := range fn.Nullable {
		d.Paths[name] = profile.Nullable
	}

	return &d
}

func reportUnanalyzable(r *report.Phased, fn *gofront.Function, err error) {
	pos := fn.Decl.Name.Pos()
	msg := err.Error()

	var ce *cfg.ConstructionError
	if errors.As(err, &ce) {
		if ce.Loc.Valid() {
			pos = ce.Loc.Start
		}
		msg = ce.Error()
	}

	r.Reportf(rules.Unanalyzable(), pos, "cannot analyze %s: %s", fn.Decl.Name.Name, msg)
}

// checkUses reports dereferences of values that are not non-nil where they are evaluated.
// Unreachable uses are skipped.
func checkUses(r *report.Phased, res *refine.Result, fn *gofront.Function, profile *config.Profile) {
	for _, use := range fn.Uses {
		s := res.StoreOf(use.Point, use.Expr)
		if s == nil {
			continue
		}
		if profile.Lattice.IsSubtype(res.Qualifier(s, use.Expr), profile.NonNull) {
			continue
		}

		r.Reportf(rules.NilDereference(), use.Pos, "possible nil dereference of %s", use.Text)
	}
}

// checkWrites reports stores into fields annotated as non-nil.
func checkWrites(
	r *report.Phased,
	res *refine.Result,
	fn *gofront.Function,
	profile *config.Profile,
	annotations map[string]gofront.Annotation,
) {
	for _, w := range fn.Writes {
		if annotations[store.FieldKey(w.Owner, w.Name)] != gofront.AnnotationNonNull {
			continue
		}

		s := res.StoreOf(w.Point, w.Value)
		if s == nil {
			continue
		}
		if profile.Lattice.IsSubtype(res.Qualifier(s, w.Value), profile.NonNull) {
			continue
		}

		r.Reportf(rules.NilToNonNullField(), w.Pos, "possible nil stored into non-nil field %s", w.Name)
	}
}

func isGenerated(pass *analysis.Pass, decl *ast.FuncDecl) bool {
	for _, file := range pass.Files {
		if file.FileStart <= decl.Pos() && decl.Pos() < file.FileEnd {
			return ast.IsGenerated(file)
		}
	}

	return false
}
