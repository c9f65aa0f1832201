package sac

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// Header layout: 70 float32 words, 40 int32 words, then 23 strings of 8 bytes
// except KEVNM which is 16.
const (
	HeaderSize    = 632
	intsOffset    = 70 * 4
	stringsOffset = intsOffset + 40*4
	footerSize    = 22 * 8 // NVHDR 7 double-precision trailer

	// Undefined is the SAC sentinel for an unset numeric header value.
	Undefined = -12345
)

// Float header words.
const (
	fDelta  = 0
	fDepMin = 1
	fDepMax = 2
	fB      = 5
	fE      = 6
	fDepMen = 56
	fCmpAz  = 57
	fCmpInc = 58
)

// Integer header words.
const (
	iNzYear = 0
	iNzJDay = 1
	iNzHour = 2
	iNzMin  = 3
	iNzSec  = 4
	iNzMsec = 5
	iNvHdr  = 6
	iNpts   = 9
	iFType  = 15
	iDep    = 16
	iZType  = 17
	iLEven  = 35
	iLPSPol = 36
	iLOvrOK = 37
	iLCalDA = 38
)

// Enumerated header values.
const (
	itime = 1  // IFTYPE: time series
	iunkn = 5  // IDEP: unknown units
	ib    = 9  // IZTYPE: reference is begin time
	ttrue = 1  // logical true
)

// String header fields as byte offsets and widths.
type strField struct{ off, size int }

var (
	kStnm  = strField{stringsOffset, 8}
	kEvnm  = strField{stringsOffset + 8, 16}
	kCmpnm = strField{stringsOffset + 160, 8}
	kNetwk = strField{stringsOffset + 168, 8}
)

const undefinedString = "-12345"

// header is a view over raw header bytes in a fixed byte order.
type header struct {
	raw   []byte
	order binary.ByteOrder
}

func (h header) f32(word int) float32 {
	return math.Float32frombits(h.order.Uint32(h.raw[word*4:]))
}

func (h header) setFloat(word int, v float32) {
	h.order.PutUint32(h.raw[word*4:], math.Float32bits(v))
}

func (h header) i32(word int) int32 {
	return int32(h.order.Uint32(h.raw[intsOffset+word*4:]))
}

func (h header) setInt(word int, v int32) {
	h.order.PutUint32(h.raw[intsOffset+word*4:], uint32(v))
}

// str returns a string field with padding removed; the undefined sentinel
// reads as "".
func (h header) str(f strField) string {
	b := h.raw[f.off : f.off+f.size]
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	s := string(bytes.TrimSpace(b))
	if s == undefinedString {
		return ""
	}
	return s
}

func (h header) setStr(f strField, s string) {
	b := h.raw[f.off : f.off+f.size]
	for i := range b {
		b[i] = ' '
	}
	copy(b, s)
}

// detectByteOrder identifies the header's byte order from NVHDR, which is 6
// or 7 in every valid file.
func detectByteOrder(raw []byte) (binary.ByteOrder, error) {
	word := raw[intsOffset+iNvHdr*4 : intsOffset+iNvHdr*4+4]
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		if v := int32(order.Uint32(word)); v == 6 || v == 7 {
			return order, nil
		}
	}
	return nil, fmt.Errorf("%w: cannot determine byte order from NVHDR % x", ErrMalformed, word)
}

// referenceTime returns the header's reference time, or the Unix epoch when
// any of its fields are undefined.
func (h header) referenceTime() time.Time {
	year, jday := h.i32(iNzYear), h.i32(iNzJDay)
	hour, minute, sec, msec := h.i32(iNzHour), h.i32(iNzMin), h.i32(iNzSec), h.i32(iNzMsec)
	for _, v := range []int32{year, jday, hour, minute, sec, msec} {
		if v == Undefined {
			return time.Unix(0, 0).UTC()
		}
	}
	return time.Date(int(year), time.January, 1, int(hour), int(minute), int(sec), int(msec)*int(time.Millisecond), time.UTC).
		AddDate(0, 0, int(jday)-1)
}

// startTime is the reference time offset by B, rounded to the microsecond.
func (h header) startTime() time.Time {
	ref := h.referenceTime()
	b := h.f32(fB)
	if b == Undefined {
		return ref
	}
	return ref.Add(time.Duration(math.Round(float64(b)*1e6)) * time.Microsecond)
}

// setReferenceTime stores t in the NZ* words.
func (h header) setReferenceTime(t time.Time) {
	t = t.UTC()
	h.setInt(iNzYear, int32(t.Year()))
	h.setInt(iNzJDay, int32(t.YearDay()))
	h.setInt(iNzHour, int32(t.Hour()))
	h.setInt(iNzMin, int32(t.Minute()))
	h.setInt(iNzSec, int32(t.Second()))
	h.setInt(iNzMsec, int32(t.Nanosecond()/int(time.Millisecond)))
}

// blankHeader returns a little-endian header with every field undefined.
func blankHeader() header {
	h := header{raw: make([]byte, HeaderSize), order: binary.LittleEndian}
	for w := 0; w < 70; w++ {
		h.setFloat(w, Undefined)
	}
	for w := 0; w < 40; w++ {
		h.setInt(w, Undefined)
	}
	h.setStr(kStnm, undefinedString)
	h.setStr(kEvnm, undefinedString)
	for off := kEvnm.off + kEvnm.size; off < HeaderSize; off += 8 {
		h.setStr(strField{off, 8}, undefinedString)
	}
	return h
}
