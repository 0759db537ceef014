package delivery

import "fmt"

// TransferError reports a failure while moving bytes from the source
// stream to the scratch file.
type TransferError struct {
	URL string
	Err error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer %s: %v", e.URL, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// TooLargeError is a policy rejection, not a fault: the fully written
// file exceeds the transport's upload ceiling.
type TooLargeError struct {
	SizeBytes  int64
	LimitBytes int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("video is %.1fMB, over the %dMB upload limit", float64(e.SizeBytes)/(1<<20), e.LimitBytes>>20)
}

// TransportError reports a failed send or upload to the messaging
// transport.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
