/*
Package observability provides tools for monitoring the wizard engine.

It includes lifecycle hooks that log transitions and prompt calls, Prometheus
collectors fed by the same hooks, and Aggregate for combining hook sets.
*/
package observability
