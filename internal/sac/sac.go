// Package sac reads and writes evenly sampled time series in the binary SAC
// (Seismic Analysis Code) format.
//
// Files are decoded into a raw header, float32 samples and, for NVHDR 7, the
// double-precision footer. Encoding writes the header back byte for byte in
// its original byte order, refreshing only the words that summarize the
// samples (NPTS, DEPMIN, DEPMAX, DEPMEN, and E when the sample count changed).
package sac

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/couchcryptid/orient-correct/internal/domain"
)

var (
	// ErrMalformed reports bytes that are not a readable SAC file.
	ErrMalformed = errors.New("malformed SAC file")

	// ErrUnsupported reports a valid SAC file this package does not handle,
	// such as spectral or unevenly sampled data.
	ErrUnsupported = errors.New("unsupported SAC file")
)

// File is a decoded SAC file.
type File struct {
	Header []byte
	Data   []float32
	Footer []byte
}

// Meta describes a new trace for New.
type Meta struct {
	Network   string
	Station   string
	Channel   string
	StartTime time.Time
	Delta     float64
	Azimuth   float64 // CMPAZ, degrees clockwise from north
}

// New builds a little-endian NVHDR 6 file for data.
func New(meta Meta, data []float32) *File {
	h := blankHeader()
	h.setInt(iNvHdr, 6)
	h.setInt(iFType, itime)
	h.setInt(iDep, iunkn)
	h.setInt(iZType, ib)
	h.setInt(iLEven, ttrue)
	h.setInt(iLPSPol, ttrue)
	h.setInt(iLOvrOK, ttrue)
	h.setInt(iLCalDA, ttrue)
	h.setInt(iNpts, int32(len(data)))
	h.setFloat(fDelta, float32(meta.Delta))
	h.setFloat(fB, 0)
	h.setFloat(fE, float32(meta.Delta*float64(max(len(data)-1, 0))))
	h.setFloat(fCmpAz, float32(meta.Azimuth))
	h.setFloat(fCmpInc, 90)
	h.setReferenceTime(meta.StartTime)
	h.setStr(kNetwk, meta.Network)
	h.setStr(kStnm, meta.Station)
	h.setStr(kCmpnm, meta.Channel)
	setDataSummary(h, data)
	return &File{Header: h.raw, Data: data}
}

// ReadFile decodes the SAC file at path.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Decode reads a whole SAC file from r.
func Decode(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read SAC: %w", err)
	}
	return Parse(data)
}

// Parse decodes a SAC file held in memory.
func Parse(data []byte) (*File, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the %d byte header", ErrMalformed, len(data), HeaderSize)
	}
	order, err := detectByteOrder(data)
	if err != nil {
		return nil, err
	}
	h := header{raw: append([]byte(nil), data[:HeaderSize]...), order: order}

	if ft := h.i32(iFType); ft != itime {
		return nil, fmt.Errorf("%w: IFTYPE %d is not a time series", ErrUnsupported, ft)
	}
	if h.i32(iLEven) != ttrue {
		return nil, fmt.Errorf("%w: unevenly sampled data", ErrUnsupported)
	}
	if d := h.f32(fDelta); !(d > 0) {
		return nil, fmt.Errorf("%w: DELTA %g", ErrMalformed, d)
	}
	npts := int(h.i32(iNpts))
	if npts < 0 {
		return nil, fmt.Errorf("%w: NPTS %d", ErrMalformed, npts)
	}

	end := HeaderSize + npts*4
	if len(data) < end {
		return nil, fmt.Errorf("%w: NPTS %d needs %d bytes, file has %d", ErrMalformed, npts, end, len(data))
	}
	samples := make([]float32, npts)
	for i := range samples {
		samples[i] = math.Float32frombits(order.Uint32(data[HeaderSize+i*4:]))
	}

	f := &File{Header: h.raw, Data: samples}
	if h.i32(iNvHdr) == 7 {
		if len(data) < end+footerSize {
			return nil, fmt.Errorf("%w: NVHDR 7 footer truncated", ErrMalformed)
		}
		f.Footer = append([]byte(nil), data[end:end+footerSize]...)
	}
	return f, nil
}

// WriteFile encodes f to path, replacing any existing file.
func WriteFile(path string, f *File) error {
	var buf bytes.Buffer
	if err := Encode(&buf, f); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Encode writes f to w in the byte order of its header.
func Encode(w io.Writer, f *File) error {
	if len(f.Header) != HeaderSize {
		return fmt.Errorf("%w: header is %d bytes, want %d", ErrMalformed, len(f.Header), HeaderSize)
	}
	order, err := detectByteOrder(f.Header)
	if err != nil {
		return err
	}
	h := header{raw: append([]byte(nil), f.Header...), order: order}

	if old := int(h.i32(iNpts)); old != len(f.Data) {
		h.setInt(iNpts, int32(len(f.Data)))
		if b := h.f32(fB); b != Undefined && len(f.Data) > 0 {
			h.setFloat(fE, b+h.f32(fDelta)*float32(len(f.Data)-1))
		}
	}
	setDataSummary(h, f.Data)

	if _, err := w.Write(h.raw); err != nil {
		return fmt.Errorf("write SAC header: %w", err)
	}
	if err := binary.Write(w, order, f.Data); err != nil {
		return fmt.Errorf("write SAC data: %w", err)
	}
	if len(f.Footer) > 0 {
		if _, err := w.Write(f.Footer); err != nil {
			return fmt.Errorf("write SAC footer: %w", err)
		}
	}
	return nil
}

// setDataSummary stores the minimum, maximum and mean of data.
func setDataSummary(h header, data []float32) {
	if len(data) == 0 {
		return
	}
	lo, hi := data[0], data[0]
	var sum float64
	for _, v := range data {
		lo = min(lo, v)
		hi = max(hi, v)
		sum += float64(v)
	}
	h.setFloat(fDepMin, lo)
	h.setFloat(fDepMax, hi)
	h.setFloat(fDepMen, float32(sum/float64(len(data))))
}

func (f *File) view() header {
	order, err := detectByteOrder(f.Header)
	if err != nil {
		order = binary.LittleEndian
	}
	return header{raw: f.Header, order: order}
}

// Network returns KNETWK.
func (f *File) Network() string { return f.view().str(kNetwk) }

// Station returns KSTNM.
func (f *File) Station() string { return f.view().str(kStnm) }

// Channel returns KCMPNM.
func (f *File) Channel() string { return f.view().str(kCmpnm) }

// Delta returns the sample interval in seconds.
func (f *File) Delta() float64 { return float64(f.view().f32(fDelta)) }

// StartTime returns the time of the first sample.
func (f *File) StartTime() time.Time { return f.view().startTime() }

// ByteOrder returns the byte order of the header.
func (f *File) ByteOrder() binary.ByteOrder { return f.view().order }

// Trace converts f into a domain trace that carries the raw header and
// footer along for re-encoding.
func (f *File) Trace() domain.Trace {
	samples := make([]float64, len(f.Data))
	for i, v := range f.Data {
		samples[i] = float64(v)
	}
	return domain.Trace{
		Network:   f.Network(),
		Station:   f.Station(),
		Channel:   f.Channel(),
		StartTime: f.StartTime(),
		Delta:     f.Delta(),
		Samples:   samples,
		Header:    f.Header,
		Footer:    f.Footer,
	}
}

// FromTrace builds a File from a trace decoded by Trace, keeping its header.
func FromTrace(t domain.Trace) (*File, error) {
	if len(t.Header) != HeaderSize {
		return nil, fmt.Errorf("%w: trace %s.%s has no SAC header", ErrMalformed, t.StationID(), t.Channel)
	}
	data := make([]float32, len(t.Samples))
	for i, v := range t.Samples {
		data[i] = float32(v)
	}
	return &File{Header: t.Header, Data: data, Footer: t.Footer}, nil
}

// HeaderDiff returns the byte offsets of the 4-byte header words that differ
// between a and b, ignoring the data summary words DEPMIN, DEPMAX and DEPMEN.
// Headers in different byte orders differ everywhere and return offset 0 only.
func HeaderDiff(a, b *File) []int {
	if len(a.Header) != HeaderSize || len(b.Header) != HeaderSize || a.ByteOrder() != b.ByteOrder() {
		return []int{0}
	}
	var diff []int
	for off := 0; off < HeaderSize; off += 4 {
		switch off {
		case fDepMin * 4, fDepMax * 4, fDepMen * 4:
			continue
		}
		if !bytes.Equal(a.Header[off:off+4], b.Header[off:off+4]) {
			diff = append(diff, off)
		}
	}
	return diff
}
