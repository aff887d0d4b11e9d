// Package pipeline provides a typed request dispatcher that runs every command
// and query through a composable chain of cross-cutting behaviors before it
// reaches its handler.
//
// Each request type maps to exactly one handler. Behaviors wrap the handler
// like HTTP middleware: the first behavior is the outermost, its before-phase
// runs first and its after-phase runs last.
//
// # Quick Start
//
//	import "github.com/retailhub/foundation/core/pipeline"
//
//	type GetProduct struct{ SKU string }
//
//	func (q GetProduct) CacheKey() string { return "product:" + q.SKU }
//	func (q GetProduct) CachePolicy() pipeline.CachePolicy {
//	    return pipeline.CachePolicy{TTL: time.Minute, Tags: []string{"products"}}
//	}
//
//	d := pipeline.NewDispatcher(
//	    pipeline.WithBehaviors(
//	        pipeline.Logging(log),
//	        pipeline.Performance(log),
//	        pipeline.Validation(productRules),
//	        pipeline.Caching(store),
//	        pipeline.Transaction(uowFactory),
//	        pipeline.Retry(),
//	    ),
//	)
//
//	pipeline.Register(d, func(ctx context.Context, q GetProduct) (Product, error) {
//	    return repo.Product(ctx, q.SKU)
//	})
//
//	product, err := pipeline.Send[Product](ctx, d, GetProduct{SKU: "sku-1"})
//
// # Behaviors
//
//   - Validation: runs all validators concurrently, fails once with every failure.
//   - Caching: serves Cacheable requests from a CacheStore, stores successful responses.
//   - Logging: logs start and outcome of each request.
//   - Performance: warns about requests slower than a threshold (500ms by default).
//   - Retry: re-attempts Retryable requests with fixed, linear or exponential backoff.
//   - Transaction: begins, commits or rolls back a request-scoped UnitOfWork.
//   - Tracing: wraps each request in an OpenTelemetry span.
//
// Behaviors opt in per request through capability interfaces (Cacheable,
// Retryable). A request without the capability passes straight through.
//
// # Per-Request Pipelines
//
// Services may order behaviors differently for a single request type:
//
//	pipeline.Register(d, createSale,
//	    pipeline.WithPipeline(
//	        pipeline.Logging(log),
//	        pipeline.Validation(saleRules),
//	        pipeline.Transaction(uowFactory),
//	    ),
//	)
//
// # Errors
//
// Behaviors return failures unchanged. Classification travels with the error:
//
//	err := pipeline.Transient(io.ErrUnexpectedEOF)
//	pipeline.Classify(err) // KindTransientNetwork
//
// Validation failures arrive as *ValidationError (errors.Is(err, ErrValidation)),
// exhausted retries as *RetryExhaustedError (errors.Is(err, ErrRetryExhausted)),
// commit failures as *Error with KindTransaction.
package pipeline
