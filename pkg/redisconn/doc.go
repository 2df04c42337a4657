// Package redisconn establishes the shared Redis connection backing the
// status store. It wraps the go-redis client with a retrying Connect and a
// health-check helper for the gateway's readiness endpoint.
//
// # Usage
//
//	client, err := redisconn.Connect(ctx, cfg)
//	if err != nil {
//	    // redis never became ready, terminate startup
//	}
//	defer client.Close()
//
//	check := redisconn.Healthcheck(client)
//	if err := check(ctx); err != nil {
//	    // report degraded
//	}
package redisconn
