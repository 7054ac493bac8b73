// Package logging configures the log/slog loggers used by localserver.
//
// Every component accepts a *slog.Logger through a WithLogger option and
// falls back to Nop when none is given, so embedding the engine in a test
// stays silent unless asked otherwise.
//
//	log, closer, err := logging.Open(logging.Config{
//		Level:  logging.ParseLevel("debug"),
//		Format: logging.FormatText,
//		File:   "server.log",
//	})
//	if err != nil {
//		return err
//	}
//	defer closer.Close()
//
// When File is set, records go to both Output and the file; the file always
// receives JSON so it can be processed afterwards.
package logging
