package decoder

import (
	"fmt"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"
)

// probe picks a decoder by extension hint. beep's container support is
// one-stream-per-file, so "track selection" reduces to "does this
// extension have a registered decoder"; an unrecognized extension or a
// decode failure is the Err outcome returned for a failed probe.
func probe(r io.ReadCloser, formatHint string) (beep.StreamSeekCloser, beep.Format, string, error) {
	switch formatHint {
	case "mp3":
		s, f, err := mp3.Decode(r)
		return s, f, "MPEG Audio Layer III", err
	case "wav", "wave":
		s, f, err := wav.Decode(r)
		return s, f, "Waveform Audio", err
	case "flac":
		s, f, err := flac.Decode(r)
		return s, f, "Free Lossless Audio Codec", err
	default:
		r.Close()
		return nil, beep.Format{}, "", fmt.Errorf("no decodable track for extension %q", formatHint)
	}
}
