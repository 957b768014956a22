package authz

import (
	"regexp"
	"strings"

	"github.com/PaesslerAG/gval"
)

// methodCallSyntax rewrites the method-call spelling spec §6 requires
// for string containment, ident.contains("x"), into the plain function
// call the language actually understands, contains(ident, "x"). Doing
// this as a textual rewrite instead of leaning on gval's reflection
// based member resolution keeps evaluation free of reflection into
// caller-controlled types, as spec §6 requires.
var methodCallSyntax = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)\.contains\(`)

func rewriteMethodCalls(expr string) string {
	return methodCallSyntax.ReplaceAllString(expr, "contains($1, ")
}

// conditionLanguage is the sandboxed expression language used for
// policy.condition: gval's full language (arithmetic, bitmask and
// comparison operators, boolean connectives, string concatenation and
// regex match, array/object literals, "in", and the ternary operator)
// plus a registered contains function. No I/O, no loops.
var conditionLanguage = gval.Full(
	gval.Function("contains", func(s, substr string) bool {
		return strings.Contains(s, substr)
	}),
)

// evaluateCondition runs expr against a fixed context built from the
// request. A non-bool result or an evaluation error is reported to
// the caller as a failure; the engine turns that into a deny.
func evaluateCondition(expr string, req Request) (bool, error) {
	scope := map[string]any{
		"agent_id": req.AgentID,
		"skill_id": req.SkillID,
		"purpose":  req.Purpose,
		"amount":   amountOrZero(req.Amount),
		"currency": req.Currency,
		"action":   req.Action,
	}
	for k, v := range req.Context {
		scope[k] = v
	}

	value, err := conditionLanguage.Evaluate(rewriteMethodCalls(expr), scope)
	if err != nil {
		return false, err
	}

	result, ok := value.(bool)
	if !ok {
		return false, errNonBooleanCondition
	}
	return result, nil
}

func amountOrZero(amount *float64) float64 {
	if amount == nil {
		return 0
	}
	return *amount
}
