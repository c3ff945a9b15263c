// Package logger provides structured logging backed by zerolog.
//
// Loggers are created from a Config (level, format, output) and tagged
// per component so stream, gateway and dev server output can be told apart.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "console"
//	  output: "stderr"
//
// # Usage
//
//	log := logger.Get("stream")
//	log.Info("connected", logger.Fields("endpoint", url))
package logger
