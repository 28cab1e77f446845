package gofront

import (
	"fmt"
	"go/ast"
	"go/types"
	"strings"

	"github.com/sirkon/qualflow/internal/store"
)

// Directive prefixes recognized in doc and line comments.
const (
	directiveNullable = "//qualflow:nullable"
	directiveNonNull  = "//qualflow:nonnull"
)

// ResultName is the directive argument naming results of a function.
const ResultName = "result"

// Annotation is an explicit nullness annotation of a declaration.
type Annotation int

const (
	AnnotationNone Annotation = iota
	AnnotationNullable
	AnnotationNonNull
)

func (a Annotation) String() string {
	switch a {
	case AnnotationNone:
		return "none"
	case AnnotationNullable:
		return "nullable"
	case AnnotationNonNull:
		return "nonnull"
	default:
		return fmt.Sprintf("annotation-invalid(%d)", a)
	}
}

// directiveArgs returns arguments of the directive found in comment groups.
func directiveArgs(prefix string, groups ...*ast.CommentGroup) (args []string, found bool) {
	for _, g := range groups {
		if g == nil {
			continue
		}
		for _, c := range g.List {
			rest, ok := strings.CutPrefix(c.Text, prefix)
			if !ok || (rest != "" && rest[0] != ' ' && rest[0] != '\t') {
				continue
			}
			found = true
			args = append(args, strings.Fields(rest)...)
		}
	}

	return args, found
}

func annotationOf(groups ...*ast.CommentGroup) Annotation {
	if _, ok := directiveArgs(directiveNullable, groups...); ok {
		return AnnotationNullable
	}
	if _, ok := directiveArgs(directiveNonNull, groups...); ok {
		return AnnotationNonNull
	}

	return AnnotationNone
}

// FieldAnnotations collects annotated struct fields of named types declared in files.
// Keys are [store.FieldKey] of the owner type and the field name.
//
//	type List struct {
//		next *List //qualflow:nullable
//	}
func FieldAnnotations(info *types.Info, files []*ast.File) map[string]Annotation {
	res := map[string]Annotation{}
	for _, file := range files {
		ast.Inspect(file, func(n ast.Node) bool {
			spec, ok := n.(*ast.TypeSpec)
			if !ok {
				return true
			}
			st, ok := spec.Type.(*ast.StructType)
			if !ok {
				return true
			}
			obj := info.Defs[spec.Name]
			if obj == nil {
				return true
			}

			owner := ownerName(obj.Type())
			for _, field := range st.Fields.List {
				a := annotationOf(field.Doc, field.Comment)
				if a == AnnotationNone {
					continue
				}
				for _, name := range field.Names {
					res[store.FieldKey(owner, name.Name)] = a
				}
			}
			return true
		})
	}

	return res
}
