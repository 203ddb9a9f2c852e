package wire

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncated is returned when an argument extends past the
	// end of the message that the header promised.
	ErrTruncated = errors.New("argument extends past end of message")

	// ErrTrailingData is returned by Done when arguments did not
	// consume the entire message.
	ErrTrailingData = errors.New("trailing bytes after last argument")

	// ErrNoFD is returned when a message needs more file
	// descriptors than arrived with it.
	ErrNoFD = errors.New("no file descriptor queued")
)

// NewID is the decoded form of a polymorphic new_id argument.
type NewID struct {
	Interface string
	Version   uint32
	ID        uint32
}

// Reader decodes the argument block of a single message. File
// descriptor arguments are popped from the connection's ancillary
// queue, not the byte stream.
type Reader struct {
	data []byte
	off  int
	fds  *fdQueue
}

// NewReader returns a Reader over an argument block without an
// associated file descriptor queue. It is intended for tests.
func NewReader(data []byte) *Reader {
	return &Reader{data: data, fds: new(fdQueue)}
}

func (r *Reader) bytes(n int) ([]byte, error) {
	if r.off+n > len(r.data) {
		return nil, ErrTruncated
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

// Consumed reports the number of bytes read so far.
func (r *Reader) Consumed() int {
	return r.off
}

// Done verifies that the arguments consumed the message exactly.
func (r *Reader) Done() error {
	if r.off != len(r.data) {
		return fmt.Errorf("%w: %v of %v consumed", ErrTrailingData, r.off, len(r.data))
	}
	return nil
}

func (r *Reader) Uint() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return byteOrder.Uint32(b), nil
}

func (r *Reader) Int() (int32, error) {
	v, err := r.Uint()
	return int32(v), err
}

func (r *Reader) Fixed() (Fixed, error) {
	v, err := r.Uint()
	return Fixed(v), err
}

// String decodes a length-prefixed, NUL-terminated, padded string.
// The returned string does not include the NUL.
func (r *Reader) String() (string, error) {
	n, err := r.Uint()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	b, err := r.bytes(align4(int(n)))
	if err != nil {
		return "", err
	}
	if b[n-1] != 0 {
		return "", errors.New("string argument is not NUL-terminated")
	}
	return string(b[:n-1]), nil
}

func (r *Reader) Array() ([]byte, error) {
	n, err := r.Uint()
	if err != nil {
		return nil, err
	}
	b, err := r.bytes(align4(int(n)))
	if err != nil {
		return nil, err
	}
	return b[:n], nil
}

// Object decodes an object id argument. 0 means null.
func (r *Reader) Object() (uint32, error) {
	return r.Uint()
}

// NewIDFixed decodes a new_id whose interface is implied by the
// request signature.
func (r *Reader) NewIDFixed() (uint32, error) {
	return r.Uint()
}

// NewID decodes a polymorphic new_id: interface name, version, id.
func (r *Reader) NewID() (NewID, error) {
	iface, err := r.String()
	if err != nil {
		return NewID{}, err
	}
	version, err := r.Uint()
	if err != nil {
		return NewID{}, err
	}
	id, err := r.Uint()
	if err != nil {
		return NewID{}, err
	}
	return NewID{Interface: iface, Version: version, ID: id}, nil
}

// FD pops the next queued file descriptor.
func (r *Reader) FD() (int, error) {
	fd, ok := r.fds.pop()
	if !ok {
		return -1, ErrNoFD
	}
	return fd, nil
}
