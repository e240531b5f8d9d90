/*
Package observability exposes Prometheus collectors for grammar compilation
and utterance recognition.

A Metrics value satisfies both the compiler and recognizer observer hooks, so
one instance can be passed to a build and to every recognizer it feeds.
*/
package observability
