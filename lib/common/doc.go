// Package common holds the types shared by the storefront libraries and the
// command line: the persisted CounterState of an id namespace, the runtime
// Config, and the logger factory plugged into dragonboat's logger registry.
//
// Logging:
//
//	All packages obtain their logger via logger.GetLogger(<name>) at package
//	initialisation. InitLoggers replaces the default factory with a compact
//	"LEVEL | name | message" format and sets the level of every name in
//	LoggerNames. Loggers write to stderr.
package common
