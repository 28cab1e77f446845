package config

import (
	"maps"

	"github.com/sirkon/qualflow/internal/mir"
)

// Some funcs are known for stopping the whole program or the current goroutine, some just
// print their arguments and some always return a value. These are predefined here, a profile
// may add its own or override predefined ones.
type knownFuncs struct {
	known map[mir.Reference]FuncKind
}

func newKnownFuncs(custom map[mir.Reference]FuncKind) *knownFuncs {
	predefined := map[mir.Reference]FuncKind{
		// Stdlib.
		mir.Func("os", "Exit"):                   FuncKindTerminator,
		mir.Func("log", "Fatal"):                 FuncKindTerminator,
		mir.Func("log", "Fatalf"):                FuncKindTerminator,
		mir.Func("log", "Fatalln"):               FuncKindTerminator,
		mir.Func("log", "Panic"):                 FuncKindTerminator,
		mir.Func("log", "Panicf"):                FuncKindTerminator,
		mir.Func("log", "Panicln"):               FuncKindTerminator,
		mir.Func("runtime", "Goexit"):            FuncKindTerminator,
		mir.MethodOf("log", "Logger", "Fatal"):   FuncKindTerminator,
		mir.MethodOf("log", "Logger", "Fatalf"):  FuncKindTerminator,
		mir.MethodOf("log", "Logger", "Fatalln"): FuncKindTerminator,
		mir.MethodOf("log", "Logger", "Panic"):   FuncKindTerminator,
		mir.MethodOf("log", "Logger", "Panicf"):  FuncKindTerminator,
		mir.MethodOf("log", "Logger", "Panicln"): FuncKindTerminator,

		// Testing.
		mir.MethodOf("testing", "T", "Fatal"):    FuncKindTerminator,
		mir.MethodOf("testing", "T", "Fatalf"):   FuncKindTerminator,
		mir.MethodOf("testing", "T", "FailNow"):  FuncKindTerminator,
		mir.MethodOf("testing", "T", "Skip"):     FuncKindTerminator,
		mir.MethodOf("testing", "T", "Skipf"):    FuncKindTerminator,
		mir.MethodOf("testing", "T", "SkipNow"):  FuncKindTerminator,
		mir.MethodOf("testing", "B", "Fatal"):    FuncKindTerminator,
		mir.MethodOf("testing", "B", "Fatalf"):   FuncKindTerminator,
		mir.MethodOf("testing", "B", "FailNow"):  FuncKindTerminator,
		mir.MethodOf("testing", "TB", "Fatal"):   FuncKindTerminator,
		mir.MethodOf("testing", "TB", "Fatalf"):  FuncKindTerminator,
		mir.MethodOf("testing", "TB", "FailNow"): FuncKindTerminator,

		// Zap.
		mir.MethodOf("go.uber.org/zap", "Logger", "Fatal"):         FuncKindTerminator,
		mir.MethodOf("go.uber.org/zap", "Logger", "Panic"):         FuncKindTerminator,
		mir.MethodOf("go.uber.org/zap", "SugaredLogger", "Fatal"):  FuncKindTerminator,
		mir.MethodOf("go.uber.org/zap", "SugaredLogger", "Fatalf"): FuncKindTerminator,
		mir.MethodOf("go.uber.org/zap", "SugaredLogger", "Fatalw"): FuncKindTerminator,
		mir.MethodOf("go.uber.org/zap", "SugaredLogger", "Panic"):  FuncKindTerminator,
		mir.MethodOf("go.uber.org/zap", "SugaredLogger", "Panicf"): FuncKindTerminator,
		mir.MethodOf("go.uber.org/zap", "SugaredLogger", "Panicw"): FuncKindTerminator,

		// Builtins.
		mir.Func("builtin", "len"):     FuncKindPure,
		mir.Func("builtin", "cap"):     FuncKindPure,
		mir.Func("builtin", "append"):  FuncKindPure,
		mir.Func("builtin", "min"):     FuncKindPure,
		mir.Func("builtin", "max"):     FuncKindPure,
		mir.Func("builtin", "complex"): FuncKindPure,
		mir.Func("builtin", "real"):    FuncKindPure,
		mir.Func("builtin", "imag"):    FuncKindPure,
		mir.Func("builtin", "print"):   FuncKindPure,
		mir.Func("builtin", "println"): FuncKindPure,

		// Printing and logging.
		mir.Func("fmt", "Print"):                           FuncKindPure,
		mir.Func("fmt", "Printf"):                          FuncKindPure,
		mir.Func("fmt", "Println"):                         FuncKindPure,
		mir.Func("fmt", "Sprint"):                          FuncKindPure,
		mir.Func("fmt", "Sprintf"):                         FuncKindPure,
		mir.Func("fmt", "Sprintln"):                        FuncKindPure,
		mir.Func("log", "Print"):                           FuncKindPure,
		mir.Func("log", "Printf"):                          FuncKindPure,
		mir.Func("log", "Println"):                         FuncKindPure,
		mir.Func("log/slog", "Debug"):                      FuncKindPure,
		mir.Func("log/slog", "Info"):                       FuncKindPure,
		mir.Func("log/slog", "Warn"):                       FuncKindPure,
		mir.Func("log/slog", "Error"):                      FuncKindPure,
		mir.MethodOf("log/slog", "Logger", "Debug"):        FuncKindPure,
		mir.MethodOf("log/slog", "Logger", "Info"):         FuncKindPure,
		mir.MethodOf("log/slog", "Logger", "Warn"):         FuncKindPure,
		mir.MethodOf("log/slog", "Logger", "Error"):        FuncKindPure,
		mir.MethodOf("go.uber.org/zap", "Logger", "Debug"): FuncKindPure,
		mir.MethodOf("go.uber.org/zap", "Logger", "Info"):  FuncKindPure,
		mir.MethodOf("go.uber.org/zap", "Logger", "Warn"):  FuncKindPure,
		mir.MethodOf("go.uber.org/zap", "Logger", "Error"): FuncKindPure,
		mir.MethodOf("testing", "T", "Log"):                FuncKindPure,
		mir.MethodOf("testing", "T", "Logf"):               FuncKindPure,
		mir.MethodOf("testing", "T", "Error"):              FuncKindPure,
		mir.MethodOf("testing", "T", "Errorf"):             FuncKindPure,

		// Error constructors.
		mir.Func("errors", "New"):                   FuncKindNonNil,
		mir.Func("fmt", "Errorf"):                   FuncKindNonNil,
		mir.Func("github.com/pkg/errors", "New"):    FuncKindNonNil,
		mir.Func("github.com/pkg/errors", "Errorf"): FuncKindNonNil,
		mir.Func("golang.org/x/xerrors", "New"):     FuncKindNonNil,
		mir.Func("golang.org/x/xerrors", "Errorf"):  FuncKindNonNil,
	}

	// Custom definitions win.
	known := maps.Clone(predefined)
	maps.Insert(known, maps.All(custom))

	return &knownFuncs{known: known}
}

// of returns functions of the given kind.
func (k *knownFuncs) of(kind FuncKind) map[mir.Reference]struct{} {
	res := map[mir.Reference]struct{}{}
	for ref, v := range k.known {
		if v == kind {
			res[ref] = struct{}{}
		}
	}

	return res
}
