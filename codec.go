package hdrhistogram

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/klauspost/compress/flate"
)

const (
	encodingCookieV1    int32 = 0x1C849308 + (8 << 4)
	compressionCookieV1 int32 = 0x1C849309 + (8 << 4)

	encodingHeaderLen   = 32
	compressionHeaderLen = 8
)

// Encode serializes h into the big-endian flyweight layout: cookie,
// significant figures, lowest/highest trackable value, total count, then
// the raw counts array. Unlike the original C encoder, which always wrote 0
// for lowest_trackable_value and relied on a side-channel default, this
// writes the real value so the wire format is fully self-describing to a
// decoder with no other context.
func (h *Histogram) Encode() []byte {
	buf := make([]byte, encodingHeaderLen+8*int(h.countsLen))
	binary.BigEndian.PutUint32(buf[0:4], uint32(encodingCookieV1))
	binary.BigEndian.PutUint32(buf[4:8], uint32(h.significantFigures))
	binary.BigEndian.PutUint64(buf[8:16], uint64(h.lowestDiscernibleValue))
	binary.BigEndian.PutUint64(buf[16:24], uint64(h.highestTrackableValue))
	binary.BigEndian.PutUint64(buf[24:32], uint64(h.TotalCount()))

	off := encodingHeaderLen
	for i := int32(0); i < h.countsLen; i++ {
		binary.BigEndian.PutUint64(buf[off:off+8], uint64(h.CountAtIndex(i)))
		off += 8
	}
	return buf
}

// Decode parses the flyweight layout Encode produces, allocating a new
// Histogram with the geometry recovered from the header.
func Decode(data []byte) (*Histogram, error) {
	if len(data) < encodingHeaderLen {
		return nil, wrap(ErrInvalidArgument, "Decode: buffer shorter than header")
	}
	cookie := int32(binary.BigEndian.Uint32(data[0:4]))
	if cookie != encodingCookieV1 {
		return nil, wrap(ErrEncodingCookieMismatch, "Decode")
	}
	sigfigs := int32(binary.BigEndian.Uint32(data[4:8]))
	lowest := int64(binary.BigEndian.Uint64(data[8:16]))
	highest := int64(binary.BigEndian.Uint64(data[16:24]))
	totalCount := int64(binary.BigEndian.Uint64(data[24:32]))

	h, err := New(Config{
		LowestDiscernibleValue: lowest,
		HighestTrackableValue:  highest,
		SignificantFigures:     sigfigs,
	})
	if err != nil {
		return nil, err
	}

	need := encodingHeaderLen + 8*int(h.countsLen)
	if len(data) < need {
		return nil, wrap(ErrInvalidArgument, "Decode: buffer shorter than counts array")
	}

	off := encodingHeaderLen
	for i := int32(0); i < h.countsLen; i++ {
		h.counts[i] = int64(binary.BigEndian.Uint64(data[off : off+8]))
		off += 8
	}
	h.totalCount = totalCount
	h.recomputeExtrema()

	return h, nil
}

// EncodeCompressed deflates the Encode() flyweight at compression level 4
// with a sync flush, framed behind a compression cookie and length header.
func (h *Histogram) EncodeCompressed() ([]byte, error) {
	raw := h.Encode()

	var compressed bytes.Buffer
	fw, err := flate.NewWriter(&compressed, 4)
	if err != nil {
		return nil, wrap(ErrDeflateInitFailed, err.Error())
	}
	if _, err := fw.Write(raw); err != nil {
		return nil, wrap(ErrDeflateFailed, err.Error())
	}
	if err := fw.Flush(); err != nil {
		return nil, wrap(ErrDeflateFailed, err.Error())
	}
	if err := fw.Close(); err != nil {
		return nil, wrap(ErrDeflateFailed, err.Error())
	}

	out := make([]byte, compressionHeaderLen+compressed.Len())
	binary.BigEndian.PutUint32(out[0:4], uint32(compressionCookieV1))
	binary.BigEndian.PutUint32(out[4:8], uint32(compressed.Len()))
	copy(out[compressionHeaderLen:], compressed.Bytes())
	return out, nil
}

// DecodeCompressed inflates and decodes the framing EncodeCompressed
// produces.
func DecodeCompressed(data []byte) (*Histogram, error) {
	if len(data) < compressionHeaderLen {
		return nil, wrap(ErrInvalidArgument, "DecodeCompressed: buffer shorter than header")
	}
	cookie := int32(binary.BigEndian.Uint32(data[0:4]))
	if cookie != compressionCookieV1 {
		return nil, wrap(ErrCompressionCookieMismatch, "DecodeCompressed")
	}
	length := int(binary.BigEndian.Uint32(data[4:8]))
	if compressionHeaderLen+length > len(data) {
		return nil, wrap(ErrInvalidArgument, "DecodeCompressed: truncated payload")
	}

	fr := flate.NewReader(bytes.NewReader(data[compressionHeaderLen : compressionHeaderLen+length]))
	defer fr.Close()

	raw, err := io.ReadAll(fr)
	if err != nil {
		return nil, wrap(ErrInflateFailed, err.Error())
	}

	return Decode(raw)
}

// recomputeExtrema scans the counts array for the lowest and highest
// non-zero index after a decode, since min/max are not part of the wire
// format and are rebuilt here from the decoded counts.
func (h *Histogram) recomputeExtrema() {
	h.minValue = math.MaxInt64
	h.maxValue = 0
	it := h.allValuesIterator()
	for it.Next() {
		if it.CountAtIndex() == 0 {
			continue
		}
		v := it.Value()
		if v > 0 && v < h.minValue {
			h.minValue = v
		}
		if v > h.maxValue {
			h.maxValue = v
		}
	}
}
