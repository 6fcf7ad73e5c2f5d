package binder

import (
	"reflect"
	"strings"
)

// ExportedName converts a GraphQL field name to the Go identifier expected
// for it: "defaultGreeting" becomes "DefaultGreeting" and "first_name"
// becomes "FirstName".
func ExportedName(field string) string {
	if field == "" {
		return field
	}
	var b strings.Builder
	b.Grow(len(field))
	upper := true
	for i := 0; i < len(field); i++ {
		c := field[i]
		if c == '_' {
			upper = true
			continue
		}
		if upper && 'a' <= c && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper = false
		b.WriteByte(c)
	}
	return b.String()
}

// methodByName finds a method named after field. Exact matches win over
// case-insensitive ones so that "userId" still finds UserID.
func methodByName(v reflect.Value, field string, prefixes ...string) (reflect.Value, string, bool) {
	if !v.IsValid() {
		return reflect.Value{}, "", false
	}
	name := ExportedName(field)
	candidates := []string{name}
	for _, p := range prefixes {
		candidates = append(candidates, p+name)
	}
	for _, c := range candidates {
		if m := v.MethodByName(c); m.IsValid() {
			return m, c, true
		}
	}
	t := v.Type()
	for i := 0; i < t.NumMethod(); i++ {
		mn := t.Method(i).Name
		for _, c := range candidates {
			if strings.EqualFold(mn, c) {
				return v.Method(i), mn, true
			}
		}
	}
	return reflect.Value{}, "", false
}

// structField finds the struct field backing a GraphQL field: a `graphql`
// tag first, then the exported name, then a case-insensitive match.
// Embedded structs are searched breadth first.
func structField(v reflect.Value, field string) (reflect.Value, bool) {
	name := ExportedName(field)
	queue := []reflect.Value{v}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		t := cur.Type()
		var folded reflect.Value
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if sf.Anonymous {
				fv := cur.Field(i)
				if fv.Kind() == reflect.Ptr {
					if fv.IsNil() {
						continue
					}
					fv = fv.Elem()
				}
				if fv.Kind() == reflect.Struct {
					queue = append(queue, fv)
				}
				continue
			}
			if !sf.IsExported() {
				continue
			}
			if tag, _, _ := strings.Cut(sf.Tag.Get("graphql"), ","); tag != "" {
				if tag == field {
					return cur.Field(i), true
				}
				continue
			}
			if sf.Name == name {
				return cur.Field(i), true
			}
			if !folded.IsValid() && strings.EqualFold(sf.Name, name) {
				folded = cur.Field(i)
			}
		}
		if folded.IsValid() {
			return folded, true
		}
	}
	return reflect.Value{}, false
}
