// Copyright 2024 The recordattack Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package recordfile implements the binary header shared by the
// record-file source and sink: a fixed 268-byte preamble followed by a
// tight array of fixed-width records. It is adapted from the low-level
// binary (de)serialization style of
// github.com/grailbio/base/recordio/header.go, fixed-offset byte
// slices rather than a struct plus encoding/binary.Read, generalized
// to this module's simpler single-section header.
package recordfile

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/grailbio/recordattack/atkerrors"
)

// Magic is the constant that opens every record file.
const Magic uint32 = 0x11BA77AC

// DescriptionLen is the fixed width, in bytes, of the header's
// description field.
const DescriptionLen = 256

// HeaderSize is the total size in bytes of the header; records begin
// at this offset.
const HeaderSize = 4 + DescriptionLen + 4 + 2 + 2

const (
	offMagic       = 0
	offDescription = 4
	offFileOrder   = offDescription + DescriptionLen
	offRecordSize  = offFileOrder + 4
	offReserved    = offRecordSize + 2
)

// Header is the fixed-layout preamble of a record file. All integers
// are network byte order (big-endian) on the wire.
type Header struct {
	// Magic must equal the constant Magic on read; it is always
	// written as Magic.
	Magic uint32
	// Description is an arbitrary caller-supplied tag, NUL-terminated
	// and compared bytewise up to the first NUL on both sides.
	Description string
	// FileOrder is a caller-defined tag that must match between
	// producer and consumer.
	FileOrder uint32
	// RecordSize is the number of bytes per record that follow the
	// header.
	RecordSize uint16
}

// Marshal encodes h into the wire format, a HeaderSize-byte buffer.
// It returns atkerrors.Invalid if Description does not fit within
// DescriptionLen bytes, including its NUL terminator.
func (h Header) Marshal() ([]byte, error) {
	if len(h.Description) >= DescriptionLen {
		return nil, atkerrors.E(atkerrors.Invalid, "recordfile: description too long")
	}
	buf := make([]byte, HeaderSize)
	binary.BigEndian.PutUint32(buf[offMagic:], Magic)
	copy(buf[offDescription:offDescription+DescriptionLen], h.Description)
	binary.BigEndian.PutUint32(buf[offFileOrder:], h.FileOrder)
	binary.BigEndian.PutUint16(buf[offRecordSize:], h.RecordSize)
	binary.BigEndian.PutUint16(buf[offReserved:], 0)
	return buf, nil
}

// Unmarshal decodes a HeaderSize-byte buffer into a Header. It does
// not validate Magic; callers compare it against the expected value
// themselves (see Validate).
func Unmarshal(buf []byte) (Header, error) {
	if len(buf) != HeaderSize {
		return Header{}, atkerrors.E(atkerrors.Invalid, "recordfile: short header")
	}
	var h Header
	h.Magic = binary.BigEndian.Uint32(buf[offMagic:])
	descField := buf[offDescription : offDescription+DescriptionLen]
	if i := bytes.IndexByte(descField, 0); i >= 0 {
		h.Description = string(descField[:i])
	} else {
		h.Description = string(descField)
	}
	h.FileOrder = binary.BigEndian.Uint32(buf[offFileOrder:])
	h.RecordSize = binary.BigEndian.Uint16(buf[offRecordSize:])
	return h, nil
}

// Read reads and decodes a Header from r, which must be positioned at
// the start of the file.
func Read(r io.Reader) (Header, error) {
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Header{}, atkerrors.E(atkerrors.System, "recordfile: read header", err)
	}
	return Unmarshal(buf)
}

// Write encodes and writes h to w.
func Write(w io.Writer, h Header) error {
	buf, err := h.Marshal()
	if err != nil {
		return err
	}
	if _, err := w.Write(buf); err != nil {
		return atkerrors.E(atkerrors.System, "recordfile: write header", err)
	}
	return nil
}

// Validate checks h against an expected magic, file order, and
// description, returning atkerrors.FileInvalid on any mismatch.
func Validate(h Header, wantOrder uint32, wantDescription string) error {
	if h.Magic != Magic {
		return atkerrors.E(atkerrors.FileInvalid, "recordfile: bad magic")
	}
	if h.FileOrder != wantOrder {
		return atkerrors.E(atkerrors.FileInvalid, "recordfile: file order mismatch")
	}
	if h.Description != wantDescription {
		return atkerrors.E(atkerrors.FileInvalid, "recordfile: description mismatch")
	}
	return nil
}
