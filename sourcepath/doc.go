// Package sourcepath loads arguments from path segments matched by the router.
//
// By default values come from reqargs.WithPathParams when set, otherwise from the chi route
// context. Values are always strings.
//
// Example:
//
//	r := chi.NewRouter()
//	r.Get("/assets/{asset}/balances", handler) // handler builds the resolver with sourcepath.New(sourcepath.Options{})
package sourcepath
