package executor

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	language "github.com/hanpama/graphbind/internal/language"
	schema "github.com/hanpama/graphbind/internal/schema"
)

// coerceVariableValues checks the request variables against the operation's
// variable definitions. Defaults fill omitted variables; omitted nullable
// variables without a default stay absent so arguments fed by them fall back
// to their own defaults.
func coerceVariableValues(
	sch *schema.Schema,
	operation *language.OperationDefinition,
	variableValues map[string]any,
) (map[string]any, error) {
	coerced := make(map[string]any, len(operation.VariableDefinitions))
	for _, def := range operation.VariableDefinitions {
		name, typ := def.Variable, def.Type
		val, provided := lookupVariable(variableValues, name)
		switch {
		case provided:
		case def.DefaultValue != nil:
			val = literalValue(def.DefaultValue, nil)
		case typ.NonNull:
			return nil, errors.Errorf("variable $%s of required type %s was not provided", name, typ.String())
		default:
			continue
		}
		if val == nil && typ.NonNull {
			return nil, errors.Errorf("variable $%s of type %s cannot be null", name, typ.String())
		}
		cv, err := coerceValue(sch, val, typeRefFromAST(typ))
		if err != nil {
			return nil, errors.Errorf("variable $%s of type %s cannot be coerced: %v", name, typ.String(), err)
		}
		coerced[name] = cv
	}
	return coerced, nil
}

// coerceArgumentValues builds the argument map for one field. It records a
// located error and reports false when an argument is unusable.
func coerceArgumentValues(
	sch *schema.Schema,
	fieldDef *schema.Field,
	arguments language.ArgumentList,
	variableValues map[string]any,
	state *executionState,
	path Path,
) (map[string]any, bool) {
	coerced := make(map[string]any, len(fieldDef.Arguments))
	for _, def := range fieldDef.Arguments {
		arg := arguments.ForName(def.Name)
		if arg != nil && arg.Value != nil && arg.Value.Kind == language.Variable {
			if _, ok := lookupVariable(variableValues, arg.Value.Raw); !ok {
				arg = nil
			}
		}
		if arg == nil {
			switch {
			case def.DefaultValue != nil:
				coerced[def.Name] = coerceDefault(sch, def)
			case schema.IsNonNull(def.Type):
				state.addError(fmt.Sprintf("argument '%s' of required type was not provided", def.Name), path)
				return nil, false
			}
			continue
		}
		cv, err := coerceValue(sch, literalValue(arg.Value, variableValues), def.Type)
		if err != nil {
			state.addError(fmt.Sprintf("argument '%s' cannot be coerced: %v", def.Name, err), path)
			return nil, false
		}
		coerced[def.Name] = cv
	}
	return coerced, true
}

// coerceDefault brings a schema default to the Go types a literal of the
// same input type would have. SDL defaults keep their parsed form otherwise.
func coerceDefault(sch *schema.Schema, def *schema.InputValue) any {
	if v, err := coerceValue(sch, def.DefaultValue, def.Type); err == nil {
		return v
	}
	return def.DefaultValue
}

func lookupVariable(variableValues map[string]any, name string) (any, bool) {
	if v, ok := variableValues[name]; ok {
		return v, true
	}
	v, ok := variableValues[strings.TrimPrefix(name, "$")]
	return v, ok
}

// literalValue converts a query literal into plain Go values, substituting
// variables at any depth. Unknown variables read as null.
func literalValue(value *language.Value, variableValues map[string]any) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case language.Variable:
		v, _ := lookupVariable(variableValues, value.Raw)
		return v
	case language.IntValue:
		n, _ := strconv.Atoi(value.Raw)
		return n
	case language.FloatValue:
		f, _ := strconv.ParseFloat(value.Raw, 64)
		return f
	case language.StringValue, language.BlockValue, language.EnumValue:
		return value.Raw
	case language.BooleanValue:
		return value.Raw == "true"
	case language.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			out[i] = literalValue(c.Value, variableValues)
		}
		return out
	case language.ObjectValue:
		out := make(map[string]any, len(value.Children))
		for _, c := range value.Children {
			out[c.Name] = literalValue(c.Value, variableValues)
		}
		return out
	}
	return nil
}

// builtinInputScalars coerce the built-in scalars on input. Custom scalars
// pass through unchanged.
var builtinInputScalars = map[string]func(any) (any, error){
	"Int":     coerceInt,
	"Float":   coerceFloat,
	"String":  coerceString,
	"Boolean": coerceBoolean,
	"ID":      coerceID,
}

// coerceValue coerces value to the input type ref.
func coerceValue(sch *schema.Schema, value any, ref *schema.TypeRef) (any, error) {
	if schema.IsNonNull(ref) {
		if value == nil {
			return nil, errors.New("cannot provide null for non-null type")
		}
		return coerceValue(sch, value, schema.Unwrap(ref))
	}
	if value == nil {
		return nil, nil
	}
	if schema.IsList(ref) {
		return coerceList(sch, value, schema.Unwrap(ref))
	}

	name := schema.GetNamedType(ref)
	if coerce, ok := builtinInputScalars[name]; ok {
		return coerce(value)
	}
	var t *schema.Type
	if sch != nil {
		t = sch.Types[name]
	}
	switch {
	case t == nil:
		return value, nil
	case t.Kind == schema.TypeKindEnum:
		return coerceEnum(t, value)
	case t.Kind == schema.TypeKindInputObject:
		return coerceInputObject(sch, t, value)
	}
	return value, nil
}

// coerceList accepts a list or a single item, which becomes a list of one.
func coerceList(sch *schema.Schema, value any, item *schema.TypeRef) (any, error) {
	items, ok := value.([]any)
	if !ok {
		items = []any{value}
	}
	out := make([]any, len(items))
	for i, v := range items {
		cv, err := coerceValue(sch, v, item)
		if err != nil {
			return nil, err
		}
		out[i] = cv
	}
	return out, nil
}

func coerceEnum(t *schema.Type, value any) (any, error) {
	if name, ok := value.(string); ok {
		for _, ev := range t.EnumValues {
			if ev.Name == name {
				return name, nil
			}
		}
	}
	return nil, errors.Errorf("value %v is not a valid %s", value, t.Name)
}

func coerceInputObject(sch *schema.Schema, t *schema.Type, value any) (any, error) {
	fields, ok := value.(map[string]any)
	if !ok {
		return nil, errors.Errorf("expected an object for %s, got %T", t.Name, value)
	}
	defs := make(map[string]*schema.InputValue, len(t.InputFields))
	for _, f := range t.InputFields {
		defs[f.Name] = f
	}
	for name := range fields {
		if defs[name] == nil {
			return nil, errors.Errorf("field '%s' is not defined by type %s", name, t.Name)
		}
	}

	out := make(map[string]any, len(t.InputFields))
	for _, f := range t.InputFields {
		v, present := fields[f.Name]
		if !present {
			switch {
			case f.DefaultValue != nil:
				out[f.Name] = coerceDefault(sch, f)
			case schema.IsNonNull(f.Type):
				return nil, errors.Errorf("required field '%s' of type %s was not provided", f.Name, t.Name)
			}
			continue
		}
		cv, err := coerceValue(sch, v, f.Type)
		if err != nil {
			return nil, errors.Errorf("field '%s': %v", f.Name, err)
		}
		out[f.Name] = cv
	}
	if t.OneOf && len(out) != 1 {
		return nil, errors.Errorf("exactly one field of %s must be provided", t.Name)
	}
	return out, nil
}

// inputNumber widens the numeric forms that literals and JSON decoders
// produce. JSON decoders produce float64 for every number.
func inputNumber(value any) (float64, bool) {
	switch n := value.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func coerceInt(value any) (any, error) {
	if n, ok := inputNumber(value); ok && n == math.Trunc(n) && n >= math.MinInt32 && n <= math.MaxInt32 {
		return int(n), nil
	}
	return nil, errors.Errorf("cannot coerce %v (%T) to Int", value, value)
}

func coerceFloat(value any) (any, error) {
	if n, ok := inputNumber(value); ok && !math.IsInf(n, 0) && !math.IsNaN(n) {
		return n, nil
	}
	return nil, errors.Errorf("cannot coerce %v (%T) to Float", value, value)
}

func coerceString(value any) (any, error) {
	if s, ok := value.(string); ok {
		return s, nil
	}
	return nil, errors.Errorf("cannot coerce %v (%T) to String", value, value)
}

func coerceBoolean(value any) (any, error) {
	if b, ok := value.(bool); ok {
		return b, nil
	}
	return nil, errors.Errorf("cannot coerce %v (%T) to Boolean", value, value)
}

func coerceID(value any) (any, error) {
	if s, ok := value.(string); ok {
		return s, nil
	}
	if n, ok := inputNumber(value); ok && n == math.Trunc(n) && math.Abs(n) < 1<<53 {
		return strconv.FormatInt(int64(n), 10), nil
	}
	return nil, errors.Errorf("cannot coerce %v (%T) to ID", value, value)
}
