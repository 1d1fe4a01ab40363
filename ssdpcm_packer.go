package wav

// Mixed-radix codeword packers (§4.2): bijections between a sequence of
// small-alphabet codewords and a byte sequence, one packer per non-
// power-of-two SSDPCM mode. Grounded on original_source/src/range_coder.c
// (the "range" naming there is a misnomer inherited from the reference
// implementation; there is no entropy coding involved).

// PackSS1_6 encodes codewords in [0,3) (ss1.6 mode) 5-at-a-time into a
// byte: ((((d0*3+d1)*3+d2)*3+d3)*3+d4). A short final group is padded
// with the max-value digit (2).
func PackSS1_6(words []Codeword) []byte {
	out := make([]byte, 0, (len(words)+4)/5)

	for total := 0; total < len(words); total += 5 {
		var result uint8

		for i := 0; i < 5; i++ {
			var d uint8 = 2
			if total+i < len(words) {
				d = words[total+i] % 3
			}

			result = result*3 + d
		}

		out = append(out, result)
	}

	return out
}

// UnpackSS1_6 decodes bytes produced by PackSS1_6 back into codewords,
// 5 digits per byte, MSB-first (most-significant digit decoded first).
func UnpackSS1_6(data []byte) []Codeword {
	out := make([]Codeword, 0, len(data)*5)

	for _, b := range data {
		var words [5]Codeword

		for i := 4; i >= 0; i-- {
			words[i] = b % 3
			b /= 3
		}

		out = append(out, words[:]...)
	}

	return out
}

// PackSS2_3 encodes codewords in [0,5) (ss2.3 mode) 24 at a time (a
// "superblock"): 8 groups of up to 3 digits packed into 7 bits each,
// with the 8th group's 7 bits distributed one bit per byte into the low
// bit of the other 7 groups (shifted left by 1), producing 7 output
// bytes per superblock. Padding digits are the max value (4), and within
// a short 8th group the padding occupies the descending (low-order)
// digit positions.
func PackSS2_3(words []Codeword) []byte {
	numSuperblocks := (len(words) + 23) / 24
	out := make([]byte, 0, numSuperblocks*7)

	for sb := 0; sb < numSuperblocks; sb++ {
		base := sb * 24

		var packed [8]uint8

		for g := 0; g < 8; g++ {
			var v uint8

			for i := 0; i < 3; i++ {
				var d uint8 = 4
				idx := base + g*3 + i
				if idx < len(words) {
					d = words[idx] % 5
				}

				v = v*5 + d
			}

			packed[g] = v
		}

		eighth := packed[7]
		for b := 0; b < 7; b++ {
			packed[b] <<= 1
			packed[b] |= eighth & 0x01
			eighth >>= 1

			out = append(out, packed[b])
		}
	}

	return out
}

// UnpackSS2_3 decodes bytes produced by PackSS2_3, 7 bytes per
// superblock, reconstructing 24 codewords per superblock (the last
// superblock may yield fewer useful codewords than 24; callers trim to
// the block's declared length).
func UnpackSS2_3(data []byte) []Codeword {
	out := make([]Codeword, 0, (len(data)/7+1)*24)

	for total := 0; total < len(data); total += 7 {
		n := len(data) - total
		if n > 7 {
			n = 7
		}

		var eighth uint8

		groups := make([]uint8, 0, 7)

		for j := 0; j < n; j++ {
			b := data[total+j]

			eighth >>= 1
			eighth |= (b & 0x01) << 7
			b >>= 1

			groups = append(groups, b)
		}

		for _, b := range groups {
			var w [3]Codeword
			for i := 2; i >= 0; i-- {
				w[i] = b % 5
				b /= 5
			}

			out = append(out, w[:]...)
		}

		if n == 7 {
			eighth >>= 1

			var w [3]Codeword
			for i := 2; i >= 0; i-- {
				w[i] = eighth % 5
				eighth /= 5
			}

			out = append(out, w[:]...)
		}
	}

	return out
}

// PackSS3 encodes codewords in [0,8) (ss3 mode, pure 3-bit digits) 8 at a
// time (a "superblock"): 4 groups of up to 2 digits packed into 6 bits
// each, with the 4th group's 6 bits distributed 2 bits per byte into
// bits 1..0 of the other 3 groups (shifted left by 2), producing 3
// output bytes per superblock. Padding digits are the max value (7).
func PackSS3(words []Codeword) []byte {
	numSuperblocks := (len(words) + 7) / 8
	out := make([]byte, 0, numSuperblocks*3)

	for sb := 0; sb < numSuperblocks; sb++ {
		base := sb * 8

		var packed [4]uint8

		for g := 0; g < 4; g++ {
			var v uint8

			for i := 0; i < 2; i++ {
				var d uint8 = 7
				idx := base + g*2 + i
				if idx < len(words) {
					d = words[idx] % 8
				}

				v = v*8 + d
			}

			packed[g] = v
		}

		fourth := packed[3]
		for b := 0; b < 3; b++ {
			packed[b] <<= 2
			packed[b] |= fourth & 0x03
			fourth >>= 2

			out = append(out, packed[b])
		}
	}

	return out
}

// UnpackSS3 decodes bytes produced by PackSS3, 3 bytes per superblock.
func UnpackSS3(data []byte) []Codeword {
	out := make([]Codeword, 0, (len(data)/3+1)*8)

	for total := 0; total < len(data); total += 3 {
		n := len(data) - total
		if n > 3 {
			n = 3
		}

		var fourth uint8

		groups := make([]uint8, 0, 3)

		for j := 0; j < n; j++ {
			b := data[total+j]

			fourth >>= 2
			fourth |= (b & 0x03) << 6
			b >>= 2

			groups = append(groups, b)
		}

		for _, b := range groups {
			var w [2]Codeword
			for i := 1; i >= 0; i-- {
				w[i] = b % 8
				b /= 8
			}

			out = append(out, w[:]...)
		}

		if n == 3 {
			fourth >>= 2

			var w [2]Codeword
			for i := 1; i >= 0; i-- {
				w[i] = fourth % 8
				fourth /= 8
			}

			out = append(out, w[:]...)
		}
	}

	return out
}
