package postgres

import (
	"reflect"
	"sync"
)

// ExtractDBColumns returns the "db" tag of every field of T, descending into
// embedded structs such as entity.BaseEntity.
//
//	columns := ExtractDBColumns[material.Material]()
//	// ["id", "created_at", "updated_at", "code", "name", ...]
func ExtractDBColumns[T any]() []string {
	var zero T
	return columnsOf(reflect.TypeOf(zero))
}

func columnsOf(t reflect.Type) []string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var cols []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			cols = append(cols, columnsOf(field.Type)...)
			continue
		}
		if tag := field.Tag.Get("db"); tag != "" && tag != "-" {
			cols = append(cols, tag)
		}
	}
	return cols
}

type fieldInfo struct {
	index int
	dbTag string
}

type typeMetadata struct {
	fields   []fieldInfo
	embedded []int
}

var typeCache sync.Map // map[reflect.Type]*typeMetadata

func metadataOf(t reflect.Type) *typeMetadata {
	if cached, ok := typeCache.Load(t); ok {
		return cached.(*typeMetadata)
	}

	meta := &typeMetadata{}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			meta.embedded = append(meta.embedded, i)
			continue
		}
		if tag := field.Tag.Get("db"); tag != "" && tag != "-" {
			meta.fields = append(meta.fields, fieldInfo{index: i, dbTag: tag})
		}
	}
	typeCache.Store(t, meta)
	return meta
}

// StructToMap converts a struct (or pointer to one) to a column map using
// its "db" tags. Reflection metadata is cached per type.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	meta := metadataOf(rv.Type())
	res := make(map[string]any, len(meta.fields))
	for _, fi := range meta.fields {
		res[fi.dbTag] = rv.Field(fi.index).Interface()
	}
	for _, idx := range meta.embedded {
		for k, val := range StructToMap(rv.Field(idx).Interface()) {
			res[k] = val
		}
	}
	return res
}

// Pick returns the entries of data whose keys are in cols.
func Pick(data map[string]any, cols []string) map[string]any {
	out := make(map[string]any, len(cols))
	for _, col := range cols {
		if val, ok := data[col]; ok {
			out[col] = val
		}
	}
	return out
}
