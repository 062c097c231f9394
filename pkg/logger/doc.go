// Package logger provides structured logging with context-based attribute
// injection.
//
// This package extends the standard library's log/slog with a decorator
// that pulls request- or job-scoped values (request IDs, job IDs, task
// names) out of a context.Context and attaches them to every record,
// without every call site having to pass them explicitly.
//
// # Overview
//
// The package provides:
//   - Context extractors that automatically inject request-scoped values (e.g., request IDs, user IDs)
//   - A decorator pattern that wraps any slog.Handler to add extraction behavior
//   - Multi-handler support for routing logs to multiple destinations
//
// # Basic Usage
//
// Create a logger with context extractors:
//
//	// Define an extractor for request ID
//	requestIDExtractor := func(ctx context.Context) (slog.Attr, bool) {
//		if reqID, ok := ctx.Value("request_id").(string); ok && reqID != "" {
//			return slog.String("request_id", reqID), true
//		}
//		return slog.Attr{}, false
//	}
//
//	// Create logger with extractors
//	log := logger.New(requestIDExtractor)
//
//	// Use with context - request_id is automatically included
//	ctx := context.WithValue(context.Background(), "request_id", "abc-123")
//	log.InfoContext(ctx, "request processed", slog.Int("status", 200))
//	// Output: {"level":"INFO","msg":"request processed","status":200,"request_id":"abc-123"}
//
// # Context Extractors
//
// A ContextExtractor is a function that extracts a log attribute from context:
//
//	type ContextExtractor func(ctx context.Context) (slog.Attr, bool)
//
// Extractors are called on every log call, ensuring fresh values for request-scoped data.
// Return false from the extractor to skip adding the attribute for that log entry.
//
// Common extractors include:
//   - Request ID extractor for HTTP request tracing
//   - User ID extractor for authentication context
//   - Tenant ID extractor for multi-tenant applications
//
// # Handler Decoration
//
// The LogHandlerDecorator can wrap any slog.Handler to add context extraction:
//
//	// Wrap a custom handler
//	jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
//	decorated := logger.NewLogHandlerDecorator(jsonHandler, extractors...)
//	log := slog.New(decorated)
//
// This allows using context extractors with any handler implementation.
//
// # Architecture
//
// Decorator Pattern: LogHandlerDecorator wraps any slog.Handler, intercepting
// Handle calls to inject extracted attributes before delegating to the underlying handler.
//
// Multi-Handler Pattern: an unexported multiHandler forwards logs to multiple
// destinations. internal/logging builds its own instance of the same pattern
// on top of this package's decorator, fanning out to a job-log store handler
// and an email-based sysadmin alert handler in place of this package's former
// Sentry sink.
package logger
