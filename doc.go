// Package reqargs resolves and validates request arguments gathered from several request locations.
//
// Quick Start:
//
//	schema := reqargs.MustSchema([]*reqargs.Field{
//	    reqargs.Int("timestamp").Required(),
//	    reqargs.Bool("async_query").Default(false),
//	})
//	op := reqargs.MustOperation("query_history", schema, reqargs.InQuery, reqargs.InBody)
//
//	pipeline := reqargs.NewPipeline(reqargs.NewResolver(
//	    sourcequery.New(),
//	    sourcebody.New(sourcebody.Options{}),
//	))
//
//	req := reqargs.NewRequest(r)
//	defer req.Close()
//	args, err := pipeline.Run(ctx, req, op)
//
// Locations are consulted in declaration order; a later location overrides a key only when it
// supplies that key. Field errors are aggregated into *ValidationError; malformed transport
// encodings are reported alone as *TransportError.
//
// Loaders: sourcebody, sourcequery, sourcepath, sourceform, sourcefile.
// See example_test.go for detailed usage.
package reqargs
