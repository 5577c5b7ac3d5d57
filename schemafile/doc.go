// Package schemafile loads operation declarations from YAML, JSON, or TOML files.
//
// Format is auto-detected from extension (.yaml, .json, .toml). Field rules use the compact
// directive syntax "required,default:10,min:1,max:100,oneof:a,b,secret".
//
// Example:
//
//	catalog, err := schemafile.Load("operations.yaml", schemafile.Options{})
//	op, ok := catalog.Lookup("query_history")
package schemafile
