// Package logger provides structured logging based on Zap.
//
// New builds a logger from Config: the debug level uses the development
// preset, other levels the production preset, and Format picks json or
// console encoding.
//
// # Context Awareness
//
// WithRayID attaches the request's ray id from the Fiber context, so every
// log line of one request can be correlated.
//
// # Usage
//
//	log, _ := logger.New(&cfg.Log)
//	log.Info("Server started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
