package language

import (
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
)

func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func ParseSchema(name, source string) (*SchemaDocument, error) {
	doc, err := parser.ParseSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadSchema parses and validates SDL together with the built-in prelude.
func LoadSchema(name, source string) (*ValidatedSchema, error) {
	s, err := gqlparser.LoadSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// LoadQuery parses a query document and validates it against s.
// The returned list is empty when the document is valid.
func LoadQuery(s *ValidatedSchema, source string) (*QueryDocument, ErrorList) {
	doc, errs := gqlparser.LoadQuery(s, source)
	if len(errs) > 0 {
		return nil, errs
	}
	return doc, nil
}

// Messages flattens err into one message per located problem.
func Messages(err error) []string {
	switch e := err.(type) {
	case nil:
		return nil
	case ErrorList:
		out := make([]string, 0, len(e))
		for _, item := range e {
			out = append(out, item.Error())
		}
		return out
	case *gqlerror.Error:
		return []string{e.Error()}
	default:
		return []string{err.Error()}
	}
}
