/*
Bus implements the in-process message bus of the trading platform.

# Module
  - endpoint table: point-to-point send to exactly one handler per name
  - correlation table: request/response linking with at-most-once dispatch
  - subscription index: wildcard topic patterns with dispatch priorities
  - resolution cache: per concrete topic, the ordered matching subscriptions,
    populated lazily on first publish and rewritten on subscribe/unsubscribe

# Source
  - market data from the feed components
  - order events from execution
  - commands and queries from strategy runtimes

# Produce
  - serialized publish payloads to the external sink (optional)

# Sharded
  - none: single owning thread, handlers run synchronously and may re-enter
*/
package bus
