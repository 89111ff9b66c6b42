// File: internal/trace/errors.go
package trace

import "errors"

var (
	// ErrUnknownRecord is returned by RecordAfter when the sequence index was
	// never issued by RecordBefore in this session.
	ErrUnknownRecord = errors.New("no pending record with that sequence index")

	// ErrAlreadyFinalized is returned by RecordAfter when the record was
	// already finalized. Only the first finalize call wins.
	ErrAlreadyFinalized = errors.New("record already finalized")

	// ErrSessionEnded is returned when recording is attempted after End.
	ErrSessionEnded = errors.New("trace session already ended")
)
