// Package httpargs serves reqargs operations as net/http handlers.
//
// Each request is wrapped in a reqargs.Request, run through the pipeline and answered with
// JSON. Validation failures produce 400 with one issue per field; transport failures produce
// 400, 413 or 415; collaborator errors use their HTTPStatus method when present, otherwise 500.
//
// Example:
//
//	adapter := httpargs.New(pipeline, httpargs.Options{Logger: logger})
//	r := chi.NewRouter()
//	r.Method("GET", "/history", adapter.Handle(queryHistory, historyService))
package httpargs
