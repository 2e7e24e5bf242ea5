package generators

import (
	"fmt"
	"reflect"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"github.com/roach88/uniqname/internal/attr"
	"github.com/roach88/uniqname/internal/config"
	"github.com/roach88/uniqname/internal/resolver"
)

// ExprGenerator evaluates a compiled expr-lang program per attempt.
type ExprGenerator struct {
	source  string
	program *exprvm.Program
	ids     IDSource
}

// CompileExpr compiles source. The program sees base (string), scope
// (map of field to value) and attempt (int), and may call uuid().
func CompileExpr(source string, ids IDSource) (*ExprGenerator, error) {
	if source == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	if ids == nil {
		ids = UUIDv7Source
	}

	g := &ExprGenerator{source: source, ids: ids}
	program, err := exprlang.Compile(source,
		exprlang.Env(g.env("", nil, 0)),
		exprlang.AsKind(reflect.String),
	)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", source, err)
	}
	g.program = program
	return g, nil
}

// Source returns the expression text.
func (g *ExprGenerator) Source() string { return g.source }

// Generate implements resolver.GenerateFunc.
func (g *ExprGenerator) Generate(base string, scope attr.Scope, attempt int) (string, error) {
	out, err := exprlang.Run(g.program, g.env(base, scope, attempt))
	if err != nil {
		return "", fmt.Errorf("run %q: %w", g.source, err)
	}
	s, ok := out.(string)
	if !ok {
		return "", fmt.Errorf("run %q: result is %T, want string", g.source, out)
	}
	return s, nil
}

func (g *ExprGenerator) env(base string, scope attr.Scope, attempt int) map[string]any {
	return map[string]any{
		"base":    base,
		"scope":   scope.Native(),
		"attempt": attempt,
		"uuid":    func() string { return g.ids() },
	}
}

// FromConfig turns a configured generator into a resolver.Generator. Nil
// selects the default suffix algorithm. Expression errors are config errors.
func FromConfig(gc *config.GeneratorConfig, ids IDSource) (resolver.Generator, error) {
	switch {
	case gc == nil:
		return resolver.Generator{}, nil
	case gc.Name != "" && gc.Expr != "":
		return resolver.Generator{}, resolver.NewConfigError("generator must set name or expr, not both", nil)
	case gc.Name != "":
		return resolver.Named(gc.Name), nil
	case gc.Expr != "":
		g, err := CompileExpr(gc.Expr, ids)
		if err != nil {
			return resolver.Generator{}, resolver.NewConfigError("invalid generator expression", err)
		}
		return resolver.Func(g.Generate), nil
	default:
		return resolver.Generator{}, resolver.NewConfigError("generator must be a method name or a callable", nil)
	}
}
