package manifest

import (
	"errors"
	"fmt"

	"go.starlark.net/syntax"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

const (
	varFunction = "Var"
	strFunction = "Str"
	varsName    = "vars"
)

// DEPSDialect reads the DEPS format through the Starlark grammar and then
// walks the tree, accepting only assignments of literals, dicts, lists,
// tuples, "+" and the Var and Str primitives. Nothing is executed, so a
// manifest cannot reach any state outside its own text.
type DEPSDialect struct{}

// NewDEPSDialect creates a new DEPSDialect.
func NewDEPSDialect() *DEPSDialect {
	return &DEPSDialect{}
}

// Name returns the dialect identifier.
func (d *DEPSDialect) Name() string { return "deps" }

// Detect accepts every file name; the DEPS dialect is the fallback.
func (d *DEPSDialect) Detect(string) bool { return true }

// Parse parses DEPS text into a manifest.
func (d *DEPSDialect) Parse(name string, content []byte) (*entities.Manifest, error) {
	file, err := (&syntax.FileOptions{}).Parse(name, content, 0)
	if err != nil {
		var syntaxErr syntax.Error
		if errors.As(err, &syntaxErr) {
			return nil, &entities.ManifestParseError{
				Source: name, Line: int(syntaxErr.Pos.Line), Reason: syntaxErr.Msg,
			}
		}
		return nil, &entities.ManifestParseError{Source: name, Reason: err.Error()}
	}

	w := &walker{source: name, scope: map[string]any{}}
	for _, stmt := range file.Stmts {
		if walkErr := w.assign(stmt); walkErr != nil {
			return nil, walkErr
		}
	}
	return buildManifest(name, w.scope)
}

// walker turns an allowed syntax tree into plain Go values: string, int64,
// bool, nil, map[string]any and []any. Assignments are applied in order, so
// Var sees the vars bound by an earlier statement.
type walker struct {
	source string
	scope  map[string]any
}

func (w *walker) errorf(node syntax.Node, format string, args ...any) error {
	start, _ := node.Span()
	return &entities.ManifestParseError{Source: w.source, Line: int(start.Line), Reason: fmt.Sprintf(format, args...)}
}

func (w *walker) assign(stmt syntax.Stmt) error {
	assignment, ok := stmt.(*syntax.AssignStmt)
	if !ok || assignment.Op != syntax.EQ {
		return w.errorf(stmt, "only plain assignments are allowed")
	}
	target, ok := assignment.LHS.(*syntax.Ident)
	if !ok {
		return w.errorf(assignment.LHS, "assignment target must be a name")
	}

	value, err := w.eval(assignment.RHS)
	if err != nil {
		return err
	}
	w.scope[target.Name] = value
	return nil
}

func (w *walker) eval(expr syntax.Expr) (any, error) {
	switch node := expr.(type) {
	case *syntax.Literal:
		return w.literal(node)
	case *syntax.Ident:
		return w.ident(node)
	case *syntax.UnaryExpr:
		return w.negative(node)
	case *syntax.BinaryExpr:
		return w.concat(node)
	case *syntax.CallExpr:
		return w.call(node)
	case *syntax.ParenExpr:
		return w.eval(node.X)
	case *syntax.DictExpr:
		return w.dict(node)
	case *syntax.ListExpr:
		return w.sequence(node.List)
	case *syntax.TupleExpr:
		return w.sequence(node.List)
	}
	return nil, w.errorf(expr, "unsupported expression %T", expr)
}

func (w *walker) literal(node *syntax.Literal) (any, error) {
	switch value := node.Value.(type) {
	case string:
		if node.Token == syntax.STRING {
			return value, nil
		}
	case int64:
		return value, nil
	}
	return nil, w.errorf(node, "unsupported literal %s", node.Raw)
}

func (w *walker) ident(node *syntax.Ident) (any, error) {
	switch node.Name {
	case "True":
		return true, nil
	case "False":
		return false, nil
	case "None":
		return nil, nil
	}
	return nil, w.errorf(node, "reference to %s is not allowed", node.Name)
}

func (w *walker) negative(node *syntax.UnaryExpr) (any, error) {
	if node.Op == syntax.MINUS {
		if literal, ok := node.X.(*syntax.Literal); ok {
			if number, isInt := literal.Value.(int64); isInt {
				return -number, nil
			}
		}
	}
	return nil, w.errorf(node, "unsupported operator %s", node.Op)
}

// concat handles "+" on two strings or two lists.
func (w *walker) concat(node *syntax.BinaryExpr) (any, error) {
	if node.Op != syntax.PLUS {
		return nil, w.errorf(node, "unsupported operator %s", node.Op)
	}
	left, err := w.eval(node.X)
	if err != nil {
		return nil, err
	}
	right, err := w.eval(node.Y)
	if err != nil {
		return nil, err
	}

	switch l := left.(type) {
	case string:
		if r, ok := right.(string); ok {
			return l + r, nil
		}
	case []any:
		if r, ok := right.([]any); ok {
			return append(append([]any{}, l...), r...), nil
		}
	}
	return nil, w.errorf(node, "operands of + must both be strings or both be lists")
}

func (w *walker) call(node *syntax.CallExpr) (any, error) {
	fn, ok := node.Fn.(*syntax.Ident)
	if !ok {
		return nil, w.errorf(node, "unsupported call")
	}
	if fn.Name != varFunction && fn.Name != strFunction {
		return nil, w.errorf(node, "call to %s is not allowed", fn.Name)
	}
	if len(node.Args) != 1 {
		return nil, w.errorf(node, "%s expects exactly one argument", fn.Name)
	}

	argument, err := w.eval(node.Args[0])
	if err != nil {
		return nil, err
	}
	text, ok := argument.(string)
	if !ok {
		return nil, w.errorf(node, "%s expects a string argument", fn.Name)
	}
	if fn.Name == strFunction {
		return text, nil
	}

	vars, _ := w.scope[varsName].(map[string]any)
	value, found := vars[text]
	if !found {
		return nil, w.errorf(node, "undefined variable %q", text)
	}
	return value, nil
}

func (w *walker) dict(node *syntax.DictExpr) (any, error) {
	result := make(map[string]any, len(node.List))
	for _, item := range node.List {
		entry, ok := item.(*syntax.DictEntry)
		if !ok {
			return nil, w.errorf(item, "unsupported dict entry")
		}
		key, err := w.eval(entry.Key)
		if err != nil {
			return nil, err
		}
		keyText, ok := key.(string)
		if !ok {
			return nil, w.errorf(entry.Key, "dict keys must be strings")
		}
		value, err := w.eval(entry.Value)
		if err != nil {
			return nil, err
		}
		result[keyText] = value
	}
	return result, nil
}

func (w *walker) sequence(items []syntax.Expr) (any, error) {
	result := make([]any, 0, len(items))
	for _, item := range items {
		value, err := w.eval(item)
		if err != nil {
			return nil, err
		}
		result = append(result, value)
	}
	return result, nil
}
