package executor

import (
	language "github.com/hanpama/bookgraph/internal/language"
	schema "github.com/hanpama/bookgraph/internal/schema"
	"github.com/samber/lo"
)

// fieldGroup holds the query fields merged under one response name.
type fieldGroup struct {
	ResponseName string
	Fields       []*language.Field
}

// fieldCollector merges fields by response name in query order.
type fieldCollector struct {
	state   *executionState
	object  *schema.Type
	groups  []fieldGroup
	byName  map[string]int
	visited map[string]bool
}

// collectFields flattens selectionSet for objectType, applying @skip,
// @include and fragment type conditions.
func collectFields(state *executionState, objectType *schema.Type, selectionSet language.SelectionSet) []fieldGroup {
	c := &fieldCollector{
		state:   state,
		object:  objectType,
		byName:  map[string]int{},
		visited: map[string]bool{},
	}
	c.collect(selectionSet)
	return c.groups
}

func (c *fieldCollector) collect(set language.SelectionSet) {
	for _, selection := range set {
		switch sel := selection.(type) {
		case *language.Field:
			if c.included(sel.Directives) {
				c.add(sel)
			}
		case *language.InlineFragment:
			if c.included(sel.Directives) && appliesTo(sel.TypeCondition, c.object) {
				c.collect(sel.SelectionSet)
			}
		case *language.FragmentSpread:
			if !c.included(sel.Directives) || c.visited[sel.Name] {
				continue
			}
			c.visited[sel.Name] = true
			def := c.state.document.Fragments.ForName(sel.Name)
			if def == nil || !appliesTo(def.TypeCondition, c.object) || !c.included(def.Directives) {
				continue
			}
			c.collect(def.SelectionSet)
		}
	}
}

func (c *fieldCollector) add(f *language.Field) {
	name := f.Alias
	if name == "" {
		name = f.Name
	}
	if i, ok := c.byName[name]; ok {
		c.groups[i].Fields = append(c.groups[i].Fields, f)
		return
	}
	c.byName[name] = len(c.groups)
	c.groups = append(c.groups, fieldGroup{ResponseName: name, Fields: []*language.Field{f}})
}

// included evaluates @skip and @include. A directive whose "if" is not a
// boolean is ignored.
func (c *fieldCollector) included(dirs language.DirectiveList) bool {
	if skip, ok := c.directiveIf(dirs, "skip"); ok && skip {
		return false
	}
	if include, ok := c.directiveIf(dirs, "include"); ok && !include {
		return false
	}
	return true
}

func (c *fieldCollector) directiveIf(dirs language.DirectiveList, name string) (bool, bool) {
	d := dirs.ForName(name)
	if d == nil {
		return false, false
	}
	arg := d.Arguments.ForName("if")
	if arg == nil || arg.Value == nil {
		return false, false
	}
	b, ok := valueFromAST(arg.Value, c.state.variableValues).(bool)
	return b, ok
}

// appliesTo reports whether a fragment with the given type condition
// applies to objectType, by name or through an implemented interface.
func appliesTo(condition string, objectType *schema.Type) bool {
	return condition == "" || condition == objectType.Name || lo.Contains(objectType.Interfaces, condition)
}
