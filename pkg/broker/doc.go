// Package broker owns the RabbitMQ connection and the static queue topology
// of the dispatch gateway.
//
// The topology is declared once at startup and never mutated per request:
// a direct exchange, one durable priority queue per delivery channel (bound
// with the channel name as routing key, declared with x-max-priority so the
// broker orders pending messages by priority metadata), and the
// delivery-report queue with its dead-letter pair for malformed or
// unauthorized reports.
//
// # Usage
//
//	conn, err := broker.Dial(ctx, cfg)
//	if err != nil {
//	    // broker never became ready
//	}
//	defer conn.Close()
//
//	ch, err := conn.Channel()
//	if err != nil { ... }
//	if err := broker.DeclareTopology(ch); err != nil { ... }
//
// Destinations being fixed at startup removes routing-table races: a publish
// can never trigger a queue declaration.
package broker
