package catalog

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

func newRuleEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("props", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}
	return env, nil
}

func compileRules(env *cel.Env, comp *Component) error {
	comp.programs = make([]cel.Program, 0, len(comp.Rules))
	for i, rule := range comp.Rules {
		ast, issues := env.Compile(rule.Expr)
		if issues != nil && issues.Err() != nil {
			return fmt.Errorf("component %s rule %d: CEL compile error: %w", comp.Name, i, issues.Err())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return fmt.Errorf("component %s rule %d: CEL program error: %w", comp.Name, i, err)
		}
		comp.programs = append(comp.programs, prg)
	}
	return nil
}

// checkRules returns the message of the first rule that does not hold.
// Evaluation errors count as failures.
func (c *Component) checkRules(props map[string]any) (string, bool) {
	activation := map[string]any{"props": props}
	for i, prg := range c.programs {
		out, _, err := prg.Eval(activation)
		if err != nil {
			return fmt.Sprintf("%s (%v)", c.Rules[i].Message, err), false
		}
		if ok, isBool := out.Value().(bool); !isBool || !ok {
			return c.Rules[i].Message, false
		}
	}
	return "", true
}
