package photometer

import (
	"encoding/binary"
	"math"
)

// Wire frame format of the relative photometer.
//
// The sensor reports bound updates as a dense 2-byte frame, read as a
// little-endian 16-bit word (bit 0 = LSB of the first byte):
//
//	bits[0:1]   confidence (0-3)
//	bit[2]      clear flag
//	bits[3:10]  signed 8-bit offset from the 50 klx reference
//	bit[11]     direction (1 = upper bound, 0 = lower bound)
//	bits[12:15] horizon exponent (0-15)
//
// Every one of the 65536 bit patterns is a valid frame; there is no length,
// checksum or reserved field at this layer.
const (
	// FrameSize is the fixed wire frame length in bytes.
	FrameSize = 2

	// ReferenceLux is the fixed reference the 8-bit offset is centered on.
	ReferenceLux = 50e3
	// StepLux is the illuminance resolution per offset unit.
	StepLux = 390.0
	// HorizonBase is the horizon duration in seconds at exponent 0.
	HorizonBase = 0.0165

	confidenceMask = 0x0003
	clearFlag      = 0x0004
	offsetShift    = 3
	directionFlag  = 0x0800
	horizonShift   = 12
	horizonMax     = 15
)

// Decode maps a raw 2-byte frame received at monotonic time now into a
// Sample. It is total: any input decodes, nothing can fail.
func Decode(now float64, frame [FrameSize]byte) Sample {
	word := binary.LittleEndian.Uint16(frame[:])

	direction := LowerBound
	if word&directionFlag != 0 {
		direction = UpperBound
	}
	offset := int8(word >> offsetShift) // truncation keeps bits 3..10
	exponent := word >> horizonShift

	return Sample{
		Start:      now,
		End:        now + HorizonBase*float64(uint32(1)<<exponent),
		Direction:  direction,
		Value:      ReferenceLux + StepLux*float64(offset),
		Clear:      word&clearFlag != 0,
		Confidence: uint8(word & confidenceMask),
	}
}

// Encode is the inverse mapping, used for diagnostics and for building
// synthetic frames in tests. The offset and horizon exponent are recovered
// by rounding and clamped into their field ranges, so arbitrary samples
// quantize while decoder output round-trips exactly.
func Encode(s Sample) [FrameSize]byte {
	offset := math.Round((s.Value - ReferenceLux) / StepLux)
	if offset < math.MinInt8 {
		offset = math.MinInt8
	} else if offset > math.MaxInt8 {
		offset = math.MaxInt8
	}

	exponent := math.Round(math.Log2((s.End - s.Start) / HorizonBase))
	if exponent < 0 {
		exponent = 0
	} else if exponent > horizonMax {
		exponent = horizonMax
	}

	word := uint16(s.Confidence) & confidenceMask
	if s.Clear {
		word |= clearFlag
	}
	word |= uint16(uint8(int8(offset))) << offsetShift
	if s.Direction == UpperBound {
		word |= directionFlag
	}
	word |= uint16(exponent) << horizonShift

	var frame [FrameSize]byte
	binary.LittleEndian.PutUint16(frame[:], word)
	return frame
}
