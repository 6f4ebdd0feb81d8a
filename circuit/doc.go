/*
Package circuit implements per-backend circuit breakers for the gateway.

It provides two breaker types, consecutive-failure and failure-rate based.
Breakers are keyed by endpoint (identified by the matched routing-table
entry's prefix), so a run of failures against one endpoint's backend never
affects the breaker guarding a different endpoint. The Registry owns the
active breakers, synchronizes access to them, and recycles the ones that
go idle.

# Breaker Type - Consecutive Failures

Opens once N requests to an endpoint's backend fail in a row (a failed
connection or a >=500 response). While open, the middleware skips the
backend call and responds 503 without leaving the gateway. After the
configured timeout it goes half-open: a bounded number of trial requests
are let through concurrently, and any failure among them reopens the
breaker; if they all succeed, it closes again.

# Breaker Type - Failure Rate

Same trip/half-open/close state machine, but instead of counting
consecutive failures it keeps a sliding window of the last M outcomes
(success or failure) and opens once the failures within that window reach
N. This keeps the breaker's sensitivity independent of request volume.

# Configuration

Settings come from the process-wide `middlewares.performance.circuit_breaking`
config block (see package config), which the gateway installs as the
registry defaults and applies to every endpoint.
BreakerSettings.mergeSettings fills in any field left at its zero value
from the defaults, so a caller of Registry.Get only needs to set what it
cares about.

# Registry

Breakers are created on demand for the settings requested. The registry
synchronizes access to the shared breakers and evicts the ones that have
been idle past their IdleTTL, lazily, whenever a new breaker is requested.
This keeps state from accumulating forever for endpoints that stop being
proxied.
*/
package circuit
