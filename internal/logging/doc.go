// Package logging provides structured logging and the driver trace sink.
//
// Two separate outputs live here:
//
//   - A package-level zap logger for developers. It is silent unless a
//     level is given explicitly or through CROSSPOINT_LOG_LEVEL.
//   - Sink, a bounded in-memory trace of timestamped lines meant for users.
//     The device driver owns one and writes human-readable events to it.
//
// # Structured Logging
//
//	logging.Info("Device discovered",
//	    zap.String("host", "192.168.4.1"),
//	    zap.Int("port", 81),
//	)
//
// # Trace Sink
//
//	sink := logging.NewSink(logging.DefaultSinkCapacity)
//	sink.Append("discovered 192.168.4.1 81")
//	fmt.Println(sink.Render())
//	// [14:02:11] discovered 192.168.4.1 81
//
// # Thread Safety
//
// All functions and Sink methods are safe for concurrent use.
package logging
