// Package runtimex orchestrates the service lifecycle.
//
// # Overview
//
// A Runtime moves through
//
//	idle → connecting_store → connecting_broker → serving → shutting_down → stopped
//
// or ends in failed when bring-up does not complete. Dependencies are
// connected strictly one after the other: the broker is never attempted
// before the store is connected, and no listener opens before both are up.
// Teardown runs the reverse: broker, listeners, background tasks, store.
//
// # Usage
//
//	rt, err := runtimex.New(runtimex.Options{
//		Logger:   logger,
//		Store:    store,
//		Broker:   broker,
//		Listener: server,
//		Tasks:    []runtimex.Task{{Name: "idle", Run: monitor.Run}},
//	})
//	if err != nil {
//		return 1
//	}
//	return runtimex.Run(ctx, rt)
package runtimex
