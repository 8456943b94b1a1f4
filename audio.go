package tsencap

import (
	"strconv"
	"strings"
)

// audioHeaderMask isolates the fields MoreBinaryData compares to decide
// whether a new header differs meaningfully from the cached one: the
// protection bit, padding bit, private bit, and copyright/original/emphasis
// bits are excluded (mode and mode-extension bits are compared), matching
// ISO 11172-3 ?2.4.1.3 header layout.
const audioHeaderMask uint32 = 0xFFFEFCF0

// AudioAttributes decodes the 4-byte frame header of an MPEG-1/MPEG-2
// (layers I/II/III) audio frame into its layer, bitrate, sampling
// frequency, and channel mode, caching the last header seen so repeated
// identical headers are a no-op.
//
// The zero value is a valid, invalid-by-default AudioAttributes: use
// NewAudioAttributes for clarity, it's equivalent.
type AudioAttributes struct {
	header        uint32
	isValid       bool
	layer         uint8
	bitrate       uint16 // kb/s
	samplingFreq  uint32 // Hz
	mode          uint8
	modeExtension uint8
}

// NewAudioAttributes returns an AudioAttributes with no frame decoded yet.
func NewAudioAttributes() *AudioAttributes { return &AudioAttributes{} }

// MoreBinaryData feeds a new candidate frame header (the first 4 bytes of
// an MPEG audio frame) to the decoder. It returns false, leaving state
// unchanged, if data is too short, doesn't start with the 0xFFF sync
// pattern, or is unchanged from the cached header under audioHeaderMask.
// Otherwise it decodes the header and returns true, even if the decoded
// layer or bitrate turns out to be a reserved value.
func (a *AudioAttributes) MoreBinaryData(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	header := uint32(data[0])<<24 | uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3])
	if header&0xFFF00000 != 0xFFF00000 {
		return false
	}
	if a.isValid && header&audioHeaderMask == a.header&audioHeaderMask {
		return false
	}

	id := uint8(header>>19) & 0x1
	layerRaw := uint8(header>>17) & 0x3
	bitrateIndex := uint8(header>>12) & 0xf
	samplingIndex := uint8(header>>10) & 0x3
	a.mode = uint8(header>>6) & 0x3
	a.modeExtension = uint8(header>>4) & 0x3
	a.header = header
	a.isValid = true

	switch layerRaw {
	case 3:
		a.layer = 1
	case 2:
		a.layer = 2
	case 1:
		a.layer = 3
	default:
		a.layer = 0
	}

	a.bitrate = bitrateKbps(id, a.layer, bitrateIndex)
	a.samplingFreq = samplingFrequencyHz(id, samplingIndex)
	return true
}

// bitrateTableLSF and bitrateTableFull hold the per-layer bitrate tables
// (kb/s) from ISO/IEC 13818-3 (LSF extension, id==0) and ISO/IEC 11172-3
// (full rate, id==1), indexed by the 4-bit bitrate_index (0 and 15 are
// "free"/reserved and map to 0, same as every other reserved index here).
var bitrateTableLSF = [3][16]uint16{
	1: {0, 32, 48, 56, 64, 80, 96, 112, 128, 144, 160, 176, 192, 224, 256, 0},
	2: {0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0},
	// Layer III shares layer II's LSF table.
}

var bitrateTableFull = [4][16]uint16{
	1: {0, 32, 64, 96, 128, 160, 192, 224, 256, 288, 320, 352, 384, 416, 448, 0},
	2: {0, 32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384, 0},
	3: {0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0},
}

func bitrateKbps(id, layer, index uint8) uint16 {
	if id == 0 {
		switch layer {
		case 1:
			return bitrateTableLSF[1][index]
		case 2, 3:
			return bitrateTableLSF[2][index]
		default:
			return 0
		}
	}
	if layer < 1 || layer > 3 {
		return 0
	}
	return bitrateTableFull[layer][index]
}

var samplingTableLSF = [4]uint32{22050, 24000, 16000, 0}
var samplingTableFull = [4]uint32{44100, 48000, 32000, 0}

func samplingFrequencyHz(id, index uint8) uint32 {
	if id == 0 {
		return samplingTableLSF[index]
	}
	return samplingTableFull[index]
}

// IsValid reports whether a well-formed header has ever been decoded.
func (a *AudioAttributes) IsValid() bool { return a.isValid }

// Layer returns 1, 2, or 3, or 0 if the decoded layer field was reserved.
func (a *AudioAttributes) Layer() uint8 { return a.layer }

// Bitrate returns the decoded bitrate in kb/s, or 0 if reserved/unknown.
func (a *AudioAttributes) Bitrate() uint16 { return a.bitrate }

// SamplingFrequency returns the decoded sampling frequency in Hz, or 0 if
// reserved/unknown.
func (a *AudioAttributes) SamplingFrequency() uint32 { return a.samplingFreq }

// Mode returns the raw 2-bit channel mode field.
func (a *AudioAttributes) Mode() uint8 { return a.mode }

// ModeExtension returns the raw 2-bit mode extension field.
func (a *AudioAttributes) ModeExtension() uint8 { return a.modeExtension }

// LayerName returns "layer I", "layer II", or "layer III", or the empty
// string if no header has been decoded.
func (a *AudioAttributes) LayerName() string {
	if !a.isValid {
		return ""
	}
	switch a.layer {
	case 1:
		return "layer I"
	case 2:
		return "layer II"
	case 3:
		return "layer III"
	default:
		return "layer " + strconv.Itoa(int(a.layer))
	}
}

// StereoDescription describes the decoded channel mode, or the empty
// string if no header has been decoded or the mode carries no useful
// description (e.g. joint stereo layer III with mode_extension 0).
func (a *AudioAttributes) StereoDescription() string {
	if !a.isValid {
		return ""
	}
	switch a.mode {
	case 0:
		return "stereo"
	case 1:
		if a.layer == 1 || a.layer == 2 {
			switch a.modeExtension {
			case 0:
				return "subbands 4-31 in intensity stereo"
			case 1:
				return "subbands 8-31 in intensity stereo"
			case 2:
				return "subbands 12-31 in intensity stereo"
			case 3:
				return "subbands 16-31 in intensity stereo"
			}
			return ""
		}
		switch a.modeExtension {
		case 1:
			return "intensity stereo"
		case 2:
			return "ms stereo"
		case 3:
			return "intensity & ms stereo"
		}
		return ""
	case 2:
		return "dual channel"
	case 3:
		return "single channel"
	default:
		return ""
	}
}

// String renders the full human-readable description, e.g.
// "Audio layer III, 128 kb/s, @44,100 Hz, stereo".
func (a *AudioAttributes) String() string {
	if !a.isValid {
		return ""
	}

	var b strings.Builder
	b.WriteString("Audio ")
	b.WriteString(a.LayerName())

	if a.bitrate != 0 {
		b.WriteString(", ")
		b.WriteString(strconv.Itoa(int(a.bitrate)))
		b.WriteString(" kb/s")
	}

	if a.samplingFreq != 0 {
		b.WriteString(", @")
		b.WriteString(groupThousands(int(a.samplingFreq)))
		b.WriteString(" Hz")
	}

	if stereo := a.StereoDescription(); stereo != "" {
		b.WriteString(", ")
		b.WriteString(stereo)
	}

	return b.String()
}

// groupThousands renders n with comma thousands separators (e.g. 44100 ->
// "44,100"). No library in the dependency set performs locale-free digit
// grouping, so this stays a small stdlib helper rather than pulling in a
// full i18n/number-formatting package for one call site.
func groupThousands(n int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		s = s[1:]
	}
	var groups []string
	for len(s) > 3 {
		groups = append([]string{s[len(s)-3:]}, groups...)
		s = s[:len(s)-3]
	}
	groups = append([]string{s}, groups...)
	out := strings.Join(groups, ",")
	if n < 0 {
		return "-" + out
	}
	return out
}
