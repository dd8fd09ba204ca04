package luhn

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/zoobzio/sentinel"
)

// tagName is the struct tag read by Redactor.
const tagName = "luhn"

func init() {
	sentinel.Tag(tagName)
}

// Redactor masks card numbers in the tagged fields of T.
//
// Supported field types are string, []byte, []string and map[K]string,
// including fields of nested structs and non-nil pointers to structs.
//
// Redactors are safe for concurrent use. Field plans are computed once at
// construction.
type Redactor[T Cloner[T]] struct {
	fields   []fieldPlan
	typeName string
}

// fieldPlan describes how to reach a single tagged field.
type fieldPlan struct {
	index      []int  // reflect.Value.FieldByIndex access path
	name       string // dotted field name for errors
	isBytes    bool   // []byte field
	isSlice    bool   // []string field
	isMap      bool   // map[K]string field
	ptrIndices []int  // positions in index that need a pointer dereference
}

// NewRedactor creates a Redactor for T. It fails with ErrInvalidTag if a
// luhn tag carries an unknown action or sits on an unsupported field type.
func NewRedactor[T Cloner[T]]() (*Redactor[T], error) {
	spec := sentinel.Scan[T]()
	r := &Redactor[T]{typeName: spec.TypeName}

	fields := make([]taggedField, 0, len(spec.Fields))
	for _, f := range spec.Fields {
		action, tagged := f.Tags[tagName]
		fields = append(fields, taggedField{
			name:   f.Name,
			index:  f.Index,
			typ:    f.ReflectType,
			action: action,
			tagged: tagged,
		})
	}
	visiting := map[reflect.Type]bool{reflect.TypeFor[T](): true}
	if err := collectPlans(&r.fields, fields, nil, nil, "", visiting); err != nil {
		return nil, err
	}
	return r, nil
}

// Fields returns the dotted names of the fields this redactor masks.
func (r *Redactor[T]) Fields() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.name
	}
	return names
}

// taggedField is an exported struct field and its luhn tag, if any.
type taggedField struct {
	name   string
	index  []int
	typ    reflect.Type
	action string
	tagged bool
}

// structFields lists the exported fields of a nested struct type.
func structFields(rt reflect.Type) []taggedField {
	fields := make([]taggedField, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		action, tagged := sf.Tag.Lookup(tagName)
		fields = append(fields, taggedField{
			name:   sf.Name,
			index:  sf.Index,
			typ:    sf.Type,
			action: action,
			tagged: tagged,
		})
	}
	return fields
}

// collectPlans appends a plan for every tagged field, descending into
// untagged nested structs and pointers to structs. ptrIndices marks the
// positions in the access path that need a pointer dereference. Types already
// on the path are not entered again.
func collectPlans(plans *[]fieldPlan, fields []taggedField, parentIndex, ptrIndices []int, namePrefix string, visiting map[reflect.Type]bool) error {
	for _, f := range fields {
		index := append(append([]int{}, parentIndex...), f.index...)
		name := f.name
		if namePrefix != "" {
			name = namePrefix + "." + f.name
		}

		if !f.tagged {
			nested, deref := f.typ, ptrIndices
			if nested.Kind() == reflect.Pointer {
				nested = nested.Elem()
				deref = append(append([]int{}, ptrIndices...), len(index)-1)
			}
			if nested.Kind() != reflect.Struct || visiting[nested] {
				continue
			}
			visiting[nested] = true
			err := collectPlans(plans, structFields(nested), index, deref, name, visiting)
			delete(visiting, nested)
			if err != nil {
				return err
			}
			continue
		}

		if !IsValidRedactAction(RedactAction(f.action)) {
			return newConfigError(ErrInvalidTag, name, f.action)
		}
		plan, ok := planFor(f.typ)
		if !ok {
			return newConfigError(ErrInvalidTag, name, f.typ.String())
		}
		plan.index = index
		plan.name = name
		plan.ptrIndices = ptrIndices
		*plans = append(*plans, plan)
	}
	return nil
}

// planFor classifies a tagged field type. It reports false for types that
// cannot hold text.
func planFor(rt reflect.Type) (fieldPlan, bool) {
	switch rt.Kind() {
	case reflect.String:
		return fieldPlan{}, true
	case reflect.Slice:
		switch rt.Elem().Kind() {
		case reflect.Uint8:
			return fieldPlan{isBytes: true}, true
		case reflect.String:
			return fieldPlan{isSlice: true}, true
		}
	case reflect.Map:
		if rt.Elem().Kind() == reflect.String {
			return fieldPlan{isMap: true}, true
		}
	}
	return fieldPlan{}, false
}

// Redact returns a clone of obj with card numbers masked in every tagged
// field. obj itself is never modified. A nil obj yields nil.
func (r *Redactor[T]) Redact(ctx context.Context, obj *T) (_ *T, err error) {
	if obj == nil {
		return nil, nil
	}

	start := time.Now()
	masked := 0
	defer func() {
		emitRedactComplete(ctx, r.typeName, len(r.fields), masked, time.Since(start), err)
	}()

	clone := (*obj).Clone()
	scanner := NewScanner()
	mask := func(s string) string {
		buf := []byte(s)
		n := scanner.MaskBytes(buf)
		if n == 0 {
			return s
		}
		masked += n
		return string(buf)
	}

	if s, ok := any(&clone).(Scrubbable); ok {
		if err := s.Scrub(mask); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRedact, err)
		}
		return &clone, nil
	}

	rv := reflect.ValueOf(&clone).Elem()
	for _, plan := range r.fields {
		field, ok := getField(rv, plan)
		if !ok {
			continue
		}
		masked += applyMask(field, plan, scanner, mask)
	}
	return &clone, nil
}

// applyMask masks a single field and returns the number of digits masked in
// []byte fields. String-valued fields are counted by mask itself.
func applyMask(field reflect.Value, plan fieldPlan, scanner *Scanner, mask func(string) string) int {
	switch {
	case plan.isSlice:
		if field.IsNil() {
			return 0
		}
		// Copy so the clone does not share a backing array with the original.
		out := reflect.MakeSlice(field.Type(), field.Len(), field.Len())
		for i := 0; i < field.Len(); i++ {
			out.Index(i).SetString(mask(field.Index(i).String()))
		}
		field.Set(out)
		return 0

	case plan.isMap:
		if field.IsNil() {
			return 0
		}
		out := reflect.MakeMapWithSize(field.Type(), field.Len())
		iter := field.MapRange()
		for iter.Next() {
			v := reflect.New(field.Type().Elem()).Elem()
			v.SetString(mask(iter.Value().String()))
			out.SetMapIndex(iter.Key(), v)
		}
		field.Set(out)
		return 0

	case plan.isBytes:
		if !field.CanSet() || field.IsNil() {
			return 0
		}
		buf := append([]byte(nil), field.Bytes()...)
		n := scanner.MaskBytes(buf)
		field.SetBytes(buf)
		return n

	default:
		if field.CanSet() {
			field.SetString(mask(field.String()))
		}
		return 0
	}
}

// getField navigates a field path, dereferencing pointers as needed.
// It reports false when a pointer on the path is nil.
func getField(rv reflect.Value, plan fieldPlan) (reflect.Value, bool) {
	if len(plan.ptrIndices) == 0 {
		return rv.FieldByIndex(plan.index), true
	}

	ptrSet := make(map[int]bool, len(plan.ptrIndices))
	for _, idx := range plan.ptrIndices {
		ptrSet[idx] = true
	}

	current := rv
	for i, idx := range plan.index {
		current = current.Field(idx)
		if ptrSet[i] {
			if current.IsNil() {
				return reflect.Value{}, false
			}
			current = current.Elem()
		}
	}
	return current, true
}
