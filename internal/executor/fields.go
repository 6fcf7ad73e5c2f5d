package executor

import (
	language "github.com/hanpama/graphbind/internal/language"
	schema "github.com/hanpama/graphbind/internal/schema"
)

// fieldGroup is every query field answering to one response name, in the
// order the query mentions them.
type fieldGroup struct {
	ResponseName string
	Fields       []*language.Field
}

// collectFields flattens selectionSet for objectType. Fragments apply when
// their type condition admits objectType, nodes excluded by @skip or
// @include are dropped, and groups keep the order in which their response
// names first appear.
func collectFields(state *executionState, objectType *schema.Type, selectionSet language.SelectionSet) []fieldGroup {
	c := &fieldCollector{
		state:      state,
		objectType: objectType,
		index:      make(map[string]int),
		visited:    make(map[string]bool),
	}
	c.walk(selectionSet)
	return c.groups
}

type fieldCollector struct {
	state      *executionState
	objectType *schema.Type
	groups     []fieldGroup
	index      map[string]int
	visited    map[string]bool
}

func (c *fieldCollector) walk(selectionSet language.SelectionSet) {
	for _, selection := range selectionSet {
		switch sel := selection.(type) {
		case *language.Field:
			if c.included(sel.Directives) {
				c.add(sel)
			}
		case *language.InlineFragment:
			if c.included(sel.Directives) && c.applies(sel.TypeCondition) {
				c.walk(sel.SelectionSet)
			}
		case *language.FragmentSpread:
			if !c.included(sel.Directives) || c.visited[sel.Name] {
				continue
			}
			c.visited[sel.Name] = true
			def := c.state.document.Fragments.ForName(sel.Name)
			if def == nil || !c.applies(def.TypeCondition) || !c.included(def.Directives) {
				continue
			}
			c.walk(def.SelectionSet)
		}
	}
}

func (c *fieldCollector) add(f *language.Field) {
	name := f.Alias
	if name == "" {
		name = f.Name
	}
	if i, ok := c.index[name]; ok {
		c.groups[i].Fields = append(c.groups[i].Fields, f)
		return
	}
	c.index[name] = len(c.groups)
	c.groups = append(c.groups, fieldGroup{ResponseName: name, Fields: []*language.Field{f}})
}

// included evaluates @skip and @include. A missing or non-boolean "if"
// leaves the node in.
func (c *fieldCollector) included(directives language.DirectiveList) bool {
	if skip, ok := c.condition(directives.ForName("skip")); ok && skip {
		return false
	}
	if include, ok := c.condition(directives.ForName("include")); ok && !include {
		return false
	}
	return true
}

func (c *fieldCollector) condition(d *language.Directive) (value bool, ok bool) {
	if d == nil {
		return false, false
	}
	arg := d.Arguments.ForName("if")
	if arg == nil {
		return false, false
	}
	value, ok = literalValue(arg.Value, c.state.variableValues).(bool)
	return value, ok
}

// applies matches a type condition against the object type being executed:
// the type itself, an interface it implements, or a union containing it.
func (c *fieldCollector) applies(condition string) bool {
	if condition == "" || condition == c.objectType.Name {
		return true
	}
	for _, iface := range c.objectType.Interfaces {
		if iface == condition {
			return true
		}
	}
	return c.state.schema.IsPossibleType(condition, c.objectType.Name)
}
