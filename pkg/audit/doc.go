// Package audit records access denials.
//
// The layout guard and the action guard emit an Event for every request they refuse.
// DBLogger stores events in the access_audit table, LogLogger writes them as
// structured log lines, and AsyncLogger moves the writes off the request path:
//
//	store, _ := audit.NewDBLogger(db)
//	sink := audit.NewAsyncLogger(ctx,
//		audit.NewMultiLogger(store, audit.NewLogLogger(logger)),
//		audit.DefaultAsyncConfig(), logger)
//	defer sink.Close()
//
//	guard := rbac.NewGuard(resolver, table, metrics).WithAudit(sink)
package audit
