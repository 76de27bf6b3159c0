// Package servicex is the composition root of the opentele service.
//
// Run builds one logger from the configuration and hands a component-scoped
// child to every collaborator: the document store (storex), the broker
// consumer (brokerx), the idle monitor (idlex), the HTTP listener (httpx)
// and, when METRICS_PORT is set, the ops listener serving /metrics (obsx)
// and /healthz. The lifecycle orchestrator (runtimex) then drives bring-up
// and teardown.
//
// Usage:
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	os.Exit(servicex.Run(ctx, servicex.Options{}))
package servicex
