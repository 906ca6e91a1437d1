package manifest

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
)

// Env is the data a manifest `when` condition can reference.
type Env struct {
	// Version is the host contract version, e.g. "3.2.0".
	Version string

	// Features maps feature names to availability.
	Features map[string]bool

	// Permissions lists the permissions granted to the plugin.
	Permissions []string

	// Platform identifies the host platform, e.g. "linux" or "darwin".
	Platform string
}

var (
	celOnce sync.Once
	celEnv  *cel.Env
	celErr  error
)

// conditionEnv builds the shared CEL environment once per process. The
// declarations are fixed, so a single environment serves every manifest.
func conditionEnv() (*cel.Env, error) {
	celOnce.Do(func() {
		celEnv, celErr = cel.NewEnv(
			cel.Variable("version", cel.StringType),
			cel.Variable("features", cel.MapType(cel.StringType, cel.BoolType)),
			cel.Variable("permissions", cel.ListType(cel.StringType)),
			cel.Variable("platform", cel.StringType),
		)
	})
	return celEnv, celErr
}

// CompileWhen checks that a `when` expression is a valid boolean CEL
// expression. Empty expressions are valid: an absent condition means
// "always". Validation uses this; it never evaluates.
func CompileWhen(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}

	env, err := conditionEnv()
	if err != nil {
		return fmt.Errorf("condition environment unavailable: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("invalid when condition %q: %w", expr, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return fmt.Errorf("when condition %q must evaluate to a boolean, not %s", expr, ast.OutputType())
	}
	return nil
}

// EvalWhen evaluates a `when` expression against the host environment.
// Empty expressions are true. Any compile or evaluation failure yields
// false: a surface whose condition cannot be decided stays hidden
// rather than taking the host down at render time.
func EvalWhen(expr string, e Env) bool {
	if strings.TrimSpace(expr) == "" {
		return true
	}

	env, err := conditionEnv()
	if err != nil {
		return false
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return false
	}

	prg, err := env.Program(ast)
	if err != nil {
		return false
	}

	features := e.Features
	if features == nil {
		features = map[string]bool{}
	}
	permissions := e.Permissions
	if permissions == nil {
		permissions = []string{}
	}

	out, _, err := prg.Eval(map[string]any{
		"version":     e.Version,
		"features":    features,
		"permissions": permissions,
		"platform":    e.Platform,
	})
	if err != nil {
		return false
	}

	b, ok := out.Value().(bool)
	return ok && b
}
