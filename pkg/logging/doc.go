// Package logging provides a thin subsystem-scoped wrapper around log/slog.
//
// Every component logs through the package-level helpers with a stable
// subsystem tag, e.g.:
//
//	logging.Info("Aggregator", "discovery cycle %s finished", id)
//	logging.Error("SourceClient", err, "failed to connect to %s", name)
//
// InitForCLI must be called once at startup before any helper is used;
// messages logged earlier are dropped.
package logging
