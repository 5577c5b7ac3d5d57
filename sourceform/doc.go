// Package sourceform loads value fields of urlencoded and multipart form bodies.
//
// File parts of multipart bodies are handled by sourcefile. Bodies of any other media type
// yield no values.
package sourceform
