// Package ulog writes ULog files: append-only binary logs of fixed-size,
// timestamped records, described by a schema at the start of every file.
//
// Writing a log happens in two phases. While the header is being built,
// infos, parameters and record layouts are registered with a Writer. Once
// CompleteHeader has been called, layouts can be subscribed to, and every
// subscription yields a numeric handle that records are then written under:
//
//	w, err := ulog.Open("/var/log/flight.ulg")
//	if err != nil {
//		...
//	}
//	defer w.Close()
//
//	_, err = w.RegisterLayout("Sample", []ulog.Field{
//		ulog.TimestampField,
//		ulog.Scalar(ulog.Float32, "value"),
//	})
//	...
//	err = w.CompleteHeader()
//	handle, err := w.Subscribe("Sample", 0)
//	err = w.Write(handle, packed)
//
// Layouts are checked when they are registered: the first field must be the
// 64-bit timestamp, names must follow the format's naming rules, and fields
// must be laid out so that no padding is needed between them.
//
// A Writer opened with Open rotates to a new file once the current one has
// reached its size budget (see the RotateSize option). Every file in the
// sequence, flight.ulg, flight.1.ulg, flight.2.ulg and so on, is a complete
// log on its own: the Writer repeats every declaration made so far at the
// start of each new file, and handles keep their numbers across rotations.
//
// A Writer is safe for concurrent use. If you wish to have the output synced
// to disk at a specific time interval, see the documentation for the
// ulog/ulogutil.FlushInterval function.
//
// This package also provides the means of reading a log back, without
// requiring a Writer. For more details, see the NewReader and Summarize
// functions.
package ulog
