// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	// MaxVarIntPayload is the maximum payload size for a variable length integer.
	MaxVarIntPayload = 9

	// binaryFreeListMaxItems is the number of buffers to keep in the free
	// list to use for binary serialization and deserialization.
	binaryFreeListMaxItems = 1024

	// unixToInternal is the number of seconds between year 1 of the Go time
	// value and the unix epoch.
	unixToInternal = 62135596800
)

// bigEndian is a convenience variable since binary.BigEndian is quite long.
// Every fixed width integer in the canonical encoding is big endian.
var bigEndian = binary.BigEndian

// binaryFreeList defines a concurrent safe free list of byte slices (up to the
// maximum number defined by the binaryFreeListMaxItems constant) that have a
// cap of 8 (thus it supports up to a uint64).  It is used to provide temporary
// buffers for serializing and deserializing primitive numbers to and from their
// binary encoding in order to greatly reduce the number of allocations
// required.
type binaryFreeList chan []byte

// Borrow returns a byte slice from the free list with a length of 8.  A new
// buffer is allocated if there are not any available on the free list.
func (l binaryFreeList) Borrow() []byte {
	var buf []byte
	select {
	case buf = <-l:
	default:
		buf = make([]byte, 8)
	}
	return buf[:8]
}

// Return puts the provided byte slice back on the free list.  The buffer MUST
// have been obtained via the Borrow function and therefore have a cap of 8.
func (l binaryFreeList) Return(buf []byte) {
	select {
	case l <- buf:
	default:
		// Let it go to the garbage collector.
	}
}

// binarySerializer provides a free list of buffers to use for serializing and
// deserializing primitive integer values to and from io.Readers and io.Writers.
var binarySerializer binaryFreeList = make(chan []byte, binaryFreeListMaxItems)

// nonCanonicalVarIntFormat is the common format string used for non-canonically
// encoded variable length integer errors.
var nonCanonicalVarIntFormat = "non-canonical varint %x - discriminant " +
	"%x must encode a value greater than %x"

// uint64Time represents a unix timestamp encoded with a uint64.  It is used as
// a way to signal the readElement function how to decode a timestamp into a Go
// time.Time since it is otherwise ambiguous.  The uint64 value is rejected if
// it is larger than the maximum usable seconds for a Go time value for
// worry-free comparisons which also has the side effect of preventing overflow
// when converting to an int64 for the time.Unix call.
type uint64Time time.Time

// shortRead optimizes short (<= 8 byte) reads from r by special casing
// buffer allocations for specific reader types.
//
// The callback is called with a short buffer of 8 bytes in length, and only
// size bytes should be read from this array.
//
// This function will panic if called with a size greater than 8.
func shortRead(r io.Reader, size int, cb func(p [8]byte)) error {
	var data [8]byte

	switch r := r.(type) {
	// A *bytes.Reader is the reader used by all of the FromBytes functions.
	case *bytes.Reader:
		n, _ := r.Read(data[:size])
		if n == 0 {
			return io.EOF
		}
		if n != size {
			return io.ErrUnexpectedEOF
		}
		cb(data)

	case *bytes.Buffer:
		n, _ := r.Read(data[:size])
		if n == 0 {
			return io.EOF
		}
		if n != size {
			return io.ErrUnexpectedEOF
		}
		cb(data)

	default:
		p := binarySerializer.Borrow()
		n, err := io.ReadFull(r, p[:size])
		if err != nil {
			binarySerializer.Return(p)
			if n > 0 && errors.Is(err, io.EOF) {
				return io.ErrUnexpectedEOF
			}
			return err
		}
		cb(*(*[8]byte)(p))
		binarySerializer.Return(p)
	}

	return nil
}

// ReadUint8 reads a single byte from r.
func ReadUint8(r io.Reader) (uint8, error) {
	var value uint8
	err := shortRead(r, 1, func(p [8]byte) {
		value = p[0]
	})
	return value, err
}

// ReadUint16BE reads the big endian encoding of a uint16 from r.
func ReadUint16BE(r io.Reader) (uint16, error) {
	var value uint16
	err := shortRead(r, 2, func(p [8]byte) {
		value = bigEndian.Uint16(p[:])
	})
	return value, err
}

// ReadUint32BE reads the big endian encoding of a uint32 from r.
func ReadUint32BE(r io.Reader) (uint32, error) {
	var value uint32
	err := shortRead(r, 4, func(p [8]byte) {
		value = bigEndian.Uint32(p[:])
	})
	return value, err
}

// ReadUint64BE reads the big endian encoding of a uint64 from r.
func ReadUint64BE(r io.Reader) (uint64, error) {
	var value uint64
	err := shortRead(r, 8, func(p [8]byte) {
		value = bigEndian.Uint64(p[:])
	})
	return value, err
}

// insufficientData converts a premature end of data reported while reading
// into an ErrInsufficientData error.  Other errors are returned unchanged.
func insufficientData(op string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		str := fmt.Sprintf("unexpected end of data: %v", err)
		return messageError(op, ErrInsufficientData, str)
	}
	return err
}

// readElement reads the next sequence of bytes from r using big endian
// depending on the concrete type of element pointed to.  Running out of data
// is reported as ErrInsufficientData.
func readElement(r io.Reader, element interface{}) error {
	return insufficientData("readElement", decodeElement(r, element))
}

// decodeElement reads element from r and returns any underlying reader
// errors unchanged.
func decodeElement(r io.Reader, element interface{}) error {
	var err error
	switch e := element.(type) {
	case *uint8:
		*e, err = ReadUint8(r)
		return err

	case *uint16:
		*e, err = ReadUint16BE(r)
		return err

	case *uint32:
		*e, err = ReadUint32BE(r)
		return err

	case *int64:
		var value uint64
		value, err = ReadUint64BE(r)
		*e = int64(value)
		return err

	case *uint64:
		*e, err = ReadUint64BE(r)
		return err

	case *PowAlgo:
		var value uint16
		value, err = ReadUint16BE(r)
		*e = PowAlgo(value)
		return err

	// Unix timestamp encoded as an uint64.
	case *uint64Time:
		var ts uint64
		ts, err = ReadUint64BE(r)
		if err != nil {
			return err
		}

		// Reject timestamps that would overflow the maximum usable number of
		// seconds for worry-free comparisons.
		if ts > math.MaxInt64-unixToInternal {
			const str = "timestamp exceeds maximum allowed value"
			return messageError("readElement", ErrInvalidTimestamp, str)
		}
		*e = uint64Time(time.Unix(int64(ts), 0))
		return nil

	case *[32]byte:
		_, err = io.ReadFull(r, e[:])
		return err

	case *chainhash.Hash:
		_, err = io.ReadFull(r, e[:])
		return err
	}

	str := fmt.Sprintf("unsupported element type %T", element)
	return messageError("readElement", ErrInvalidMsg, str)
}

// readElements reads multiple items from r.  It is equivalent to multiple
// calls to readElement.
func readElements(r io.Reader, elements ...interface{}) error {
	for _, element := range elements {
		err := readElement(r, element)
		if err != nil {
			return err
		}
	}
	return nil
}

// shortWrite optimizes short (<= 8 byte) writes to w by special casing
// buffer allocations for specific writer types.
//
// The callback returns a short buffer to 8 bytes in length and a size
// specifying how much of the buffer to write.
func shortWrite(w io.Writer, cb func() (data [8]byte, size int)) error {
	data, size := cb()

	switch w := w.(type) {
	// The most common case is that the writer is a *bytes.Buffer.  Optimize
	// for that case by appending binary serializations to its existing
	// capacity instead of serializing to temporary buffers pulled from the
	// binary freelist.
	case *bytes.Buffer:
		w.Write(data[:size])
		return nil

	default:
		p := binarySerializer.Borrow()[:size]
		copy(p, data[:size])
		_, err := w.Write(p)
		binarySerializer.Return(p)
		return err
	}
}

// WriteUint8 writes the byte value to the writer.
func WriteUint8(w io.Writer, value uint8) error {
	return shortWrite(w, func() (buf [8]byte, size int) {
		buf[0] = value
		return buf, 1
	})
}

// WriteUint16BE writes the big endian encoding of value to the writer.
func WriteUint16BE(w io.Writer, value uint16) error {
	return shortWrite(w, func() (buf [8]byte, size int) {
		bigEndian.PutUint16(buf[:], value)
		return buf, 2
	})
}

// WriteUint32BE writes the big endian encoding of value to the writer.
func WriteUint32BE(w io.Writer, value uint32) error {
	return shortWrite(w, func() (buf [8]byte, size int) {
		bigEndian.PutUint32(buf[:], value)
		return buf, 4
	})
}

// WriteUint64BE writes the big endian encoding of value to the writer.
func WriteUint64BE(w io.Writer, value uint64) error {
	return shortWrite(w, func() (buf [8]byte, size int) {
		bigEndian.PutUint64(buf[:], value)
		return buf, 8
	})
}

// writeElement writes the big endian representation of element to w.
func writeElement(w io.Writer, element interface{}) error {
	switch e := element.(type) {
	case *uint8:
		return WriteUint8(w, *e)

	case *uint16:
		return WriteUint16BE(w, *e)

	case *uint32:
		return WriteUint32BE(w, *e)

	case *int64:
		return WriteUint64BE(w, uint64(*e))

	case *uint64:
		return WriteUint64BE(w, *e)

	case *PowAlgo:
		return WriteUint16BE(w, uint16(*e))

	case *uint64Time:
		// Reject timestamps that would overflow the maximum usable number of
		// seconds for worry-free comparisons.  Negative values wrap and are
		// caught here as well.
		secs := uint64(time.Time(*e).Unix())
		if secs > math.MaxInt64-unixToInternal {
			const str = "timestamp exceeds maximum allowed value"
			return messageError("writeElement", ErrInvalidTimestamp, str)
		}
		return WriteUint64BE(w, secs)

	case *[32]byte:
		_, err := w.Write(e[:])
		return err

	case *chainhash.Hash:
		_, err := w.Write(e[:])
		return err
	}

	str := fmt.Sprintf("unsupported element type %T", element)
	return messageError("writeElement", ErrInvalidMsg, str)
}

// writeElements writes multiple items to w.  It is equivalent to multiple
// calls to writeElement.
func writeElements(w io.Writer, elements ...interface{}) error {
	for _, element := range elements {
		err := writeElement(w, element)
		if err != nil {
			return err
		}
	}
	return nil
}

// ReadVarInt reads a variable length integer from r and returns it as a uint64.
// An error with ErrNonCanonicalVarInt is returned when the value was not
// encoded with the shortest possible form.
func ReadVarInt(r io.Reader) (uint64, error) {
	const op = "ReadVarInt"
	discriminant, err := ReadUint8(r)
	if err != nil {
		return 0, insufficientData(op, err)
	}

	var rv uint64
	switch discriminant {
	case 0xff:
		sv, err := ReadUint64BE(r)
		if err != nil {
			return 0, insufficientData(op, err)
		}
		rv = sv

		// The encoding is not canonical if the value could have been
		// encoded using fewer bytes.
		min := uint64(0x100000000)
		if rv < min {
			msg := fmt.Sprintf(nonCanonicalVarIntFormat, rv, discriminant, min)
			return 0, messageError(op, ErrNonCanonicalVarInt, msg)
		}

	case 0xfe:
		sv, err := ReadUint32BE(r)
		if err != nil {
			return 0, insufficientData(op, err)
		}
		rv = uint64(sv)

		// The encoding is not canonical if the value could have been
		// encoded using fewer bytes.
		min := uint64(0x10000)
		if rv < min {
			msg := fmt.Sprintf(nonCanonicalVarIntFormat, rv, discriminant, min)
			return 0, messageError(op, ErrNonCanonicalVarInt, msg)
		}

	case 0xfd:
		sv, err := ReadUint16BE(r)
		if err != nil {
			return 0, insufficientData(op, err)
		}
		rv = uint64(sv)

		// The encoding is not canonical if the value could have been
		// encoded using fewer bytes.
		min := uint64(0xfd)
		if rv < min {
			msg := fmt.Sprintf(nonCanonicalVarIntFormat, rv, discriminant, min)
			return 0, messageError(op, ErrNonCanonicalVarInt, msg)
		}

	default:
		rv = uint64(discriminant)
	}

	return rv, nil
}

// WriteVarInt serializes val to w using the shortest variable length
// encoding for its value.
func WriteVarInt(w io.Writer, val uint64) error {
	if val < 0xfd {
		return WriteUint8(w, uint8(val))
	}

	if val <= math.MaxUint16 {
		return shortWrite(w, func() (p [8]byte, size int) {
			p[0] = 0xfd
			bigEndian.PutUint16(p[1:], uint16(val))
			return p, 3
		})
	}

	if val <= math.MaxUint32 {
		return shortWrite(w, func() (p [8]byte, size int) {
			p[0] = 0xfe
			bigEndian.PutUint32(p[1:], uint32(val))
			return p, 5
		})
	}

	// shortWrite is not designed for writes > 8 bytes.
	err := WriteUint8(w, 0xff)
	if err != nil {
		return err
	}
	return WriteUint64BE(w, val)
}

// VarIntSerializeSize returns the number of bytes it would take to serialize
// val as a variable length integer.
func VarIntSerializeSize(val uint64) int {
	// The value is small enough to be represented by itself, so it's
	// just 1 byte.
	if val < 0xfd {
		return 1
	}

	// Discriminant 1 byte plus 2 bytes for the uint16.
	if val <= math.MaxUint16 {
		return 3
	}

	// Discriminant 1 byte plus 4 bytes for the uint32.
	if val <= math.MaxUint32 {
		return 5
	}

	// Discriminant 1 byte plus 8 bytes for the uint64.
	return 9
}

// ReadVarBytes reads a variable length byte array.  A byte array is encoded
// as a varInt containing the length of the array followed by the bytes
// themselves.  An error is returned if the length is greater than the
// passed maxAllowed parameter which helps protect against memory exhaustion
// attacks and forced panics through malformed messages.  The fieldName
// parameter is only used for the error message so it provides more context in
// the error.
func ReadVarBytes(r io.Reader, maxAllowed uint32, fieldName string) ([]byte, error) {
	const op = "ReadVarBytes"
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}

	// Prevent byte array larger than the max message size.  It would
	// be possible to cause memory exhaustion and panics without a sane
	// upper bound on this count.
	if count > uint64(maxAllowed) {
		msg := fmt.Sprintf("%s is larger than the max allowed size "+
			"[count %d, max %d]", fieldName, count, maxAllowed)
		return nil, messageError(op, ErrVarBytesTooLong, msg)
	}

	b := make([]byte, count)
	_, err = io.ReadFull(r, b)
	if err != nil {
		return nil, insufficientData(op, err)
	}
	return b, nil
}

// WriteVarBytes serializes a variable length byte array to w as a varInt
// containing the number of bytes, followed by the bytes themselves.
func WriteVarBytes(w io.Writer, bytes []byte) error {
	slen := uint64(len(bytes))
	err := WriteVarInt(w, slen)
	if err != nil {
		return err
	}

	_, err = w.Write(bytes)
	return err
}

// decodeFromBytes runs decode over b and translates the conditions shared by
// every FromBytes function into typed errors: running out of data yields
// ErrInsufficientData and leftover data yields ErrExcessData.
func decodeFromBytes(op string, b []byte, decode func(r *bytes.Reader) error) error {
	r := bytes.NewReader(b)
	if err := decode(r); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
			errors.Is(err, ErrInsufficientData) {
			str := fmt.Sprintf("unexpected end of data after %d of %d bytes",
				len(b)-r.Len(), len(b))
			return messageError(op, ErrInsufficientData, str)
		}
		return err
	}
	if r.Len() != 0 {
		str := fmt.Sprintf("%d trailing bytes after decoding %d bytes",
			r.Len(), len(b)-r.Len())
		return messageError(op, ErrExcessData, str)
	}
	return nil
}
