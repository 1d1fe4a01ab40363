package wav

import (
	"math"

	"github.com/charmbracelet/log"
)

// Sample format conversions (§4.7): translating between the codec's
// full-width working Sample type and the narrow PCM formats a WAVE
// stream actually stores (8-bit unsigned, 16-bit signed/unsigned).
// Grounded on sample_conv.c.

// DecodeU8 widens 8-bit unsigned PCM into the working Sample type.
func DecodeU8(dest []Sample, src []uint8) {
	for i, v := range src {
		dest[i] = Sample(v)
	}
}

// EncodeU8Overflow narrows Sample values to 8-bit unsigned PCM by taking
// the low 8 bits, deliberately allowing wraparound. This is the format
// the u8_overflow sigma trackers are built to anticipate.
func EncodeU8Overflow(dest []uint8, src []Sample) {
	for i, v := range src {
		dest[i] = uint8(v & 0xff)
	}
}

// EncodeU8Clamp narrows Sample values to 8-bit unsigned PCM by clamping
// to [0, 255] instead of wrapping.
func EncodeU8Clamp(dest []uint8, src []Sample) {
	for i, v := range src {
		if v > 255 {
			v = 255
		}
		if v < 0 {
			v = 0
		}
		dest[i] = uint8(v)
	}
}

// DecodeU8Multichannel de-interleaves 8-bit unsigned PCM into one Sample
// slice per channel, round-robin across channels.
func DecodeU8Multichannel(dest [][]Sample, src []uint8, numChannels int) {
	c := 0
	for i, v := range src {
		dest[c][i/numChannels] = Sample(v)
		c = (c + 1) % numChannels
	}
}

// EncodeU8OverflowMultichannel interleaves per-channel Sample slices into
// 8-bit unsigned PCM, round-robin across channels, wrapping overflow.
func EncodeU8OverflowMultichannel(dest []uint8, src [][]Sample, numChannels int, numSamples int) {
	c := 0
	for i := 0; i < numSamples*numChannels; i++ {
		dest[i] = uint8(src[c][i/numChannels] & 0xff)
		c = (c + 1) % numChannels
	}
}

// DecodeS16 widens 16-bit signed PCM into the working Sample type.
func DecodeS16(dest []Sample, src []int16) {
	for i, v := range src {
		dest[i] = Sample(v)
	}
}

// EncodeS16 narrows Sample values to 16-bit signed PCM, clamping to the
// int16 range.
func EncodeS16(dest []int16, src []Sample) {
	for i, v := range src {
		if v > math.MaxInt16 {
			v = math.MaxInt16
		}
		if v < math.MinInt16 {
			v = math.MinInt16
		}
		dest[i] = int16(v)
	}
}

// DecodeS16Multichannel de-interleaves 16-bit signed PCM into one Sample
// slice per channel, round-robin across channels.
func DecodeS16Multichannel(dest [][]Sample, src []int16, numChannels int) {
	c := 0
	for i, v := range src {
		dest[c][i/numChannels] = Sample(v)
		c = (c + 1) % numChannels
	}
}

// EncodeS16Multichannel interleaves per-channel Sample slices into
// 16-bit signed PCM, round-robin across channels, clamping to range.
func EncodeS16Multichannel(dest []int16, src [][]Sample, numChannels int, numSamples int) {
	c := 0
	for i := 0; i < numSamples*numChannels; i++ {
		v := src[c][i/numChannels]
		if v > math.MaxInt16 {
			v = math.MaxInt16
		}
		if v < math.MinInt16 {
			v = math.MinInt16
		}
		dest[i] = int16(v)
		c = (c + 1) % numChannels
	}
}

// DecodeU16 widens 16-bit unsigned PCM into the working Sample type.
func DecodeU16(dest []Sample, src []uint16) {
	for i, v := range src {
		dest[i] = Sample(v)
	}
}

// EncodeU16 narrows Sample values to 16-bit unsigned PCM, clamping to
// [0, 65535] and warning on any clamp: a value outside that range should
// never reach this encoder, so one arriving here is logged as a
// diagnostic instead of silently fixed up.
func EncodeU16(dest []uint16, src []Sample) {
	for i, v := range src {
		if v > math.MaxUint16 {
			log.Warnf("ssdpcm: clamped rogue sample from 0x%x to 0x%x", v, uint16(math.MaxUint16))
			v = math.MaxUint16
		}
		if v < 0 {
			log.Warnf("ssdpcm: clamped rogue sample from 0x%x to 0x0000", v)
			v = 0
		}
		dest[i] = uint16(v)
	}
}

// ConvertU8ToS16 re-scales an 8-bit unsigned sample to the 16-bit signed
// range by replicating its low 7 bits into the new low-order bits, so
// that full-scale excursions at both formats line up.
func ConvertU8ToS16(dest []int16, src []uint8) {
	for i, s := range src {
		value := int16(s) - 128
		dest[i] = (value << 8) + ((value & 0x7f) << 1) + ((value & 0x7f) >> 6)
	}
}

// ConvertS16ToU8 re-scales a 16-bit signed sample down to 8-bit unsigned
// by keeping its high byte.
func ConvertS16ToU8(dest []uint8, src []int16) {
	for i, s := range src {
		dest[i] = uint8(s>>8) + 128
	}
}

// ConvertU8ToU7 halves an 8-bit unsigned sample's resolution by dropping
// its low bit.
func ConvertU8ToU7(dest []uint8, src []uint8) {
	for i, s := range src {
		dest[i] = s >> 1
	}
}

// ConvertU7ToU8 restores an 8-bit unsigned sample from its 7-bit form.
func ConvertU7ToU8(dest []uint8, src []uint8) {
	for i, s := range src {
		dest[i] = s << 1
	}
}
