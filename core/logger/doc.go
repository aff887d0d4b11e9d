// Package logger provides structured logging utilities built on Go's standard slog package.
// It offers context-aware attribute extraction, environment-specific configurations,
// and a set of pre-built attributes for the request pipeline and its collaborators.
//
// # Basic Usage
//
//	import "github.com/retailhub/foundation/core/logger"
//
//	log := logger.New(
//		logger.WithDevelopment("inventory"),
//		logger.WithLevel(slog.LevelDebug),
//	)
//
//	log.Info("service starting",
//		logger.Component("inventory"),
//		logger.Event("startup"),
//	)
//
// # Context-Aware Logging
//
// Extractors run for every record logged with a context. The pipeline package
// ships extractors for the call ID and the request name:
//
//	log := logger.New(
//		logger.WithProduction("sales"),
//		logger.WithContextExtractors(pipeline.CallIDExtractor, pipeline.RequestNameExtractor),
//	)
//
//	log.InfoContext(ctx, "processing")
//	// {"level":"INFO","msg":"processing","call_id":"5f0c...","request":"CreateSale"}
//
// # Attribute Helpers
//
//	log.Warn("retrying request",
//		logger.Request("CreateSale"),
//		logger.Attempt(2),
//		logger.Delay(200*time.Millisecond),
//		logger.Error(err),
//	)
//
// Helpers return an empty slog.Attr for nil or empty input so they can be
// passed unconditionally.
//
// # Testing with Custom Output
//
//	var buf bytes.Buffer
//	log := logger.New(logger.WithJSONFormatter(), logger.WithOutput(&buf))
//	log.Info("test message", logger.Component("test"))
//	assert.Contains(t, buf.String(), `"component":"test"`)
package logger
