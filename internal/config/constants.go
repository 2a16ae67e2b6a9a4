package config

import "strings"

// SchemaFileExt is the extension of schema definition files.
const SchemaFileExt = ".yaml"

// SourceFileExt is the extension of language source files.
const SourceFileExt = ".tot"

// NamespaceSeparator separates namespace segments in a type path (a::b::Name).
const NamespaceSeparator = "::"

// LegacyNamespaceSeparator is accepted inside schema files (ns.Name).
const LegacyNamespaceSeparator = "."

// ConfigFileName is the name of the tool configuration file.
const ConfigFileName = "tot.toml"

// Scalar type keywords
const (
	BoolTypeName    = "bool"
	I8TypeName      = "i8"
	I16TypeName     = "i16"
	I32TypeName     = "i32"
	I64TypeName     = "i64"
	F64TypeName     = "f64"
	DecimalTypeName = "decimal"
	BigIntTypeName  = "bigint"
	BytesTypeName   = "bytes"
	StringTypeName  = "string"
	JsonTypeName    = "json"
	ListTypeName    = "list"
	MapTypeName     = "map"
)

// ScalarTypeNames are all keywords that resolve without a namespace.
var ScalarTypeNames = []string{
	BoolTypeName, I8TypeName, I16TypeName, I32TypeName, I64TypeName, F64TypeName,
	DecimalTypeName, BigIntTypeName, BytesTypeName, StringTypeName, JsonTypeName,
}

// IsScalarTypeName reports whether name is one of the fixed scalar keywords.
func IsScalarTypeName(name string) bool {
	for _, s := range ScalarTypeNames {
		if s == name {
			return true
		}
	}
	return false
}

// HasSchemaExt reports whether path names a schema file.
func HasSchemaExt(path string) bool {
	return strings.HasSuffix(path, SchemaFileExt)
}

// TrimSchemaExt removes the schema extension from path, if present.
func TrimSchemaExt(path string) string {
	return strings.TrimSuffix(path, SchemaFileExt)
}

// Names of the host functions every builtin behavior provides.
const (
	JsonFuncName   = "json"
	PrintFuncName  = "print"
	LenFuncName    = "len"
	ConcatFuncName = "concat"
)

// SyntheticParamPrefix prefixes the per-position locals a call binds its arguments to.
const SyntheticParamPrefix = "_"

// IteratorLocalName is the hidden local holding the iterator of a for loop.
const IteratorLocalName = "$iter"
