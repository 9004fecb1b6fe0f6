package manifest

import (
	"fmt"
	"math/big"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

const hclExtension = ".hcl"

// HCLDialect parses manifests written as HCL attributes (vars, deps, deps_os,
// recursedeps). Expressions may only call Var and Str; no variables exist.
type HCLDialect struct{}

// NewHCLDialect creates a new HCLDialect.
func NewHCLDialect() *HCLDialect {
	return &HCLDialect{}
}

// Name returns the dialect identifier.
func (d *HCLDialect) Name() string { return "hcl" }

// Detect accepts files with the .hcl extension.
func (d *HCLDialect) Detect(name string) bool {
	return strings.EqualFold(filepath.Ext(name), hclExtension)
}

// Parse parses HCL text into a manifest.
func (d *HCLDialect) Parse(name string, content []byte) (*entities.Manifest, error) {
	file, diags := hclparse.NewParser().ParseHCL(content, name)
	if diags.HasErrors() {
		return nil, diagnosticsError(name, diags)
	}

	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diagnosticsError(name, diags)
	}

	scope := map[string]any{}
	vars := map[string]cty.Value{}

	if attr, found := attrs[varsName]; found {
		value, valueDiags := attr.Expr.Value(evalContext(nil))
		if valueDiags.HasErrors() {
			return nil, diagnosticsError(name, valueDiags)
		}
		if value.CanIterateElements() {
			for it := value.ElementIterator(); it.Next(); {
				key, element := it.Element()
				vars[key.AsString()] = element
			}
		}
		converted, err := fromCty(value)
		if err != nil {
			return nil, &entities.ManifestParseError{Source: name, Line: attr.Range.Start.Line, Reason: err.Error()}
		}
		scope[varsName] = converted
	}

	for attrName, attr := range attrs {
		if attrName == varsName {
			continue
		}
		value, valueDiags := attr.Expr.Value(evalContext(vars))
		if valueDiags.HasErrors() {
			return nil, diagnosticsError(name, valueDiags)
		}
		converted, err := fromCty(value)
		if err != nil {
			return nil, &entities.ManifestParseError{Source: name, Line: attr.Range.Start.Line, Reason: err.Error()}
		}
		scope[attrName] = converted
	}

	return buildManifest(name, scope)
}

// evalContext exposes Str always and Var once the vars are known.
func evalContext(vars map[string]cty.Value) *hcl.EvalContext {
	functions := map[string]function.Function{
		strFunction: function.New(&function.Spec{
			Params: []function.Parameter{{Name: "value", Type: cty.String}},
			Type:   function.StaticReturnType(cty.String),
			Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
				return args[0], nil
			},
		}),
	}
	if vars != nil {
		lookup := func(args []cty.Value) (cty.Value, error) {
			value, found := vars[args[0].AsString()]
			if !found {
				return cty.NilVal, fmt.Errorf("undefined variable %q", args[0].AsString())
			}
			return value, nil
		}
		functions[varFunction] = function.New(&function.Spec{
			Params: []function.Parameter{{Name: "name", Type: cty.String}},
			Type: func(args []cty.Value) (cty.Type, error) {
				if !args[0].IsKnown() {
					return cty.DynamicPseudoType, nil
				}
				value, err := lookup(args)
				if err != nil {
					return cty.NilType, err
				}
				return value.Type(), nil
			},
			Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
				return lookup(args)
			},
		})
	}
	return &hcl.EvalContext{Functions: functions}
}

// fromCty converts an evaluated value into the plain Go values buildManifest reads.
func fromCty(value cty.Value) (any, error) {
	if value.IsNull() {
		return nil, nil
	}
	if !value.IsWhollyKnown() {
		return nil, fmt.Errorf("value is not known")
	}

	valueType := value.Type()
	switch {
	case valueType == cty.String:
		return value.AsString(), nil
	case valueType == cty.Bool:
		return value.True(), nil
	case valueType == cty.Number:
		number, accuracy := value.AsBigFloat().Int64()
		if accuracy != big.Exact {
			return nil, fmt.Errorf("number %s is not a 64-bit integer", value.AsBigFloat().Text('g', -1))
		}
		return number, nil
	case valueType.IsObjectType() || valueType.IsMapType():
		result := map[string]any{}
		for it := value.ElementIterator(); it.Next(); {
			key, element := it.Element()
			converted, err := fromCty(element)
			if err != nil {
				return nil, err
			}
			result[key.AsString()] = converted
		}
		return result, nil
	case valueType.IsTupleType() || valueType.IsListType() || valueType.IsSetType():
		result := []any{}
		for it := value.ElementIterator(); it.Next(); {
			_, element := it.Element()
			converted, err := fromCty(element)
			if err != nil {
				return nil, err
			}
			result = append(result, converted)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %s", valueType.FriendlyName())
	}
}

func diagnosticsError(name string, diags hcl.Diagnostics) error {
	line := 0
	for _, diag := range diags {
		if diag.Subject != nil {
			line = diag.Subject.Start.Line
			break
		}
	}
	return &entities.ManifestParseError{Source: name, Line: line, Reason: diags.Error()}
}
