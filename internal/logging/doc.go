// Package logging implements the NetView backend's rotating log writer.
//
// A RotatingLogger appends one line per record to timestamp-named files in a
// single directory. Before a write that would push the current file past its
// size limit, a new file is started; after every write the oldest files are
// removed until the directory fits its total size budget. The current file is
// never removed.
//
// The package also bridges log/slog onto the rotating writer (Setup, Handler),
// and provides a Viewer that tails and follows the files it produces.
package logging
