package control

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// Dial best-effort opens the control FIFO at dir+FileName for writing.
// Absence of the control FIFO is not an error (the server may not have
// enabled it): Dial returns a nil file and a nil error in that case. Any
// other failure to open is returned as an error.
func Dial(dir string) (*os.File, error) {
	f, err := os.OpenFile(dir+FileName, os.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return f, nil
}

// Send writes data to the control FIFO. The server has no acknowledgement
// protocol; Send returns once the write completes.
func Send(f *os.File, data []byte) error {
	_, err := f.Write(data)
	return err
}
