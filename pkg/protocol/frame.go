package protocol

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

// DefaultMaxFrameSize bounds the size of a single envelope.
const DefaultMaxFrameSize = 64 * 1024

// ErrFrameTooLarge is returned when a length prefix exceeds the reader's
// limit. The stream cannot be resynchronized after it.
var ErrFrameTooLarge = errors.New("frame too large")

// AppendFrame appends the length-prefixed encoding of m to b.
func AppendFrame(b []byte, m *Message) []byte {
	body := Marshal(nil, m)
	b = protowire.AppendVarint(b, uint64(len(body)))
	return append(b, body...)
}

// WriteMessage writes m as a single frame with one Write call. It does no
// locking; callers sharing w must serialize.
func WriteMessage(w io.Writer, m *Message) error {
	_, err := w.Write(AppendFrame(nil, m))
	return err
}

// Reader reads framed messages from a stream.
type Reader struct {
	r       *bufio.Reader
	maxSize int
}

// NewReader wraps r. A maxFrameSize of zero or less uses DefaultMaxFrameSize.
func NewReader(r io.Reader, maxFrameSize int) *Reader {
	if maxFrameSize <= 0 {
		maxFrameSize = DefaultMaxFrameSize
	}
	return &Reader{r: bufio.NewReader(r), maxSize: maxFrameSize}
}

// ReadFrame returns the body of the next frame.
func (r *Reader) ReadFrame() ([]byte, error) {
	size, err := binary.ReadUvarint(r.r)
	if err != nil {
		return nil, err
	}
	if size > uint64(r.maxSize) {
		return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, size, r.maxSize)
	}
	body := make([]byte, size)
	if _, err := io.ReadFull(r.r, body); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return body, nil
}

// ReadMessage reads and decodes the next frame.
//
// Errors wrapping ErrMalformed, ErrUnknownType or ErrUnsupportedVersion
// concern that frame only and the stream stays usable; any other error means
// the stream is broken.
func (r *Reader) ReadMessage() (*Message, error) {
	body, err := r.ReadFrame()
	if err != nil {
		return nil, err
	}
	return Unmarshal(body)
}

// IsFrameError reports whether err concerns a single frame's contents rather
// than the stream.
func IsFrameError(err error) bool {
	return errors.Is(err, ErrMalformed) || errors.Is(err, ErrUnknownType) ||
		errors.Is(err, ErrUnsupportedVersion)
}
