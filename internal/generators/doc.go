// Package generators provides the built-in named generators and
// config-defined expression generators.
//
// A generator produces a replacement candidate from the original value, the
// scope and the attempt number (starting at 0). The resolver checks each
// result and calls again with the next attempt until one is free.
//
// Built-ins:
//
//	uuid     base-<8 hex chars of a fresh UUIDv7>
//	scope    base-<scope values joined by "-">, then base-<values>-2, -3...
//	attempt  base-1, base-2, ...
//
// Expression generators are expr-lang programs evaluated with base, scope and
// attempt in the environment, plus a uuid() function. They must evaluate to a
// string:
//
//	generator:
//	  expr: "base + '-' + string(attempt + 1)"
package generators
