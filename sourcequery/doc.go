// Package sourcequery loads arguments from the URL query string.
//
// A key sent once yields a string; a repeated key, or a key with a "[]" suffix, yields []string.
//
// Example:
//
//	// GET /history?timestamp=100&ids[]=1&ids[]=2
//	loader := sourcequery.New()
package sourcequery
