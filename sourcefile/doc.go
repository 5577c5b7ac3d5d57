// Package sourcefile loads uploaded files from multipart/form-data bodies.
//
// Each file part is copied into a temporary directory owned by the reqargs.Request and exposed
// as *reqargs.File. Closing the request removes the directory, so handlers must finish with the
// files before the request is closed.
//
// Example:
//
//	loader := sourcefile.New(sourcefile.Options{MaxFileSize: 10 << 20})
//	schema := reqargs.MustSchema([]*reqargs.Field{reqargs.Upload("file").Required()})
package sourcefile
