// Package log provides the leveled, printf-style Logger used across
// langgraphlab.
//
// Two implementations are provided: DefaultLogger, built on the standard
// library logger, and GologLogger, a thin wrapper over github.com/kataras/golog
// that the command line tool installs at startup.
//
//	logger := log.NewConsoleLogger(os.Stderr, log.LogLevelDebug)
//	log.SetDefaultLogger(logger)
//	log.Info("indexed %d chunks", n)
//
// Components that accept a Logger fall back to GetDefaultLogger when none is
// given, so a single SetDefaultLogger call configures the whole process.
package log
