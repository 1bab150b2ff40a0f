package strip

import (
	"errors"
	"fmt"
)

var (
	// ErrHardware matches every ConfigurationError and TransferError with
	// errors.Is.
	ErrHardware = errors.New("led strip hardware error")
	// ErrTransferTooLarge is wrapped by a TransferError when the frame is
	// larger than the connection accepts in one transfer.
	ErrTransferTooLarge = errors.New("frame exceeds maximum transfer size")
	// ErrClosed is wrapped by a TransferError when Update is called after
	// Close.
	ErrClosed = errors.New("strip is closed")
)

// ConfigurationError reports that the SPI bus could not be opened or
// configured.
type ConfigurationError struct {
	Op     string
	Device string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Device == "" {
		return fmt.Sprintf("strip %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("strip %s %s: %v", e.Op, e.Device, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func (e *ConfigurationError) Is(target error) bool { return target == ErrHardware }

// TransferError reports a failed write of a frame of Size bytes.
type TransferError struct {
	Size int
	Err  error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("strip update of %d bytes: %v", e.Size, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

func (e *TransferError) Is(target error) bool { return target == ErrHardware }
