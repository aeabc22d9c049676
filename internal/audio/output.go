// Package audio implements audio output: it opens a device matching the
// decoded signal spec and drains a ring buffer of PCM samples into it.
// ebitengine/oto/v3 drives its own goroutine that calls Read on an
// io.Reader, which plays the "device callback drains the ring" role.
package audio

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ebitengine/oto/v3"

	"github.com/ljufa/rsplayer-sub001/internal/model"
	"github.com/ljufa/rsplayer-sub001/internal/ring"
)

// ErrorKind distinguishes the two fatal-to-current-track conditions this
// package surfaces.
type ErrorKind int

const (
	OpenStreamError ErrorKind = iota
	PlayStreamError
)

// Error wraps an ErrorKind with context, surfacing a human-readable
// message without losing the kind.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// ringAdapterSize is a nominal per-Read sample count. The readers below do
// not use it: each Read pulls len(p) bytes' worth of samples.
const ringAdapterSize = 4096

// f32Reader adapts a *ring.Ring[float32] to io.Reader in oto's
// FormatFloat32LE encoding, padding any underrun with silence (0.0, the
// format's midpoint).
type f32Reader struct {
	r   *ring.Ring[float32]
	buf []float32
}

func (fr *f32Reader) Read(p []byte) (int, error) {
	nSamples := len(p) / 4
	if nSamples == 0 {
		return 0, nil
	}
	if cap(fr.buf) < nSamples {
		fr.buf = make([]float32, nSamples)
	}
	buf := fr.buf[:nSamples]
	n := fr.r.Read(buf)
	for i := n; i < nSamples; i++ {
		buf[i] = 0
	}
	for i, s := range buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	return nSamples * 4, nil
}

// i16Reader adapts a *ring.Ring[int16] to io.Reader in oto's
// FormatSignedInt16LE encoding. ResolveDeviceFormat maps i32 and u16 onto
// this i16 path since oto v3 has no native 32-bit or unsigned-16 PCM
// encoding; this package has no i32/u16 sample conversion, and WriteI16
// takes int16 samples only. The decoder always opens the device as
// FormatF32, so no track reaches this reader, and no test exercises it.
type i16Reader struct {
	r   *ring.Ring[int16]
	buf []int16
}

func (ir *i16Reader) Read(p []byte) (int, error) {
	nSamples := len(p) / 2
	if nSamples == 0 {
		return 0, nil
	}
	if cap(ir.buf) < nSamples {
		ir.buf = make([]int16, nSamples)
	}
	buf := ir.buf[:nSamples]
	n := ir.r.Read(buf)
	for i := n; i < nSamples; i++ {
		buf[i] = 0
	}
	for i, s := range buf {
		binary.LittleEndian.PutUint16(p[i*2:], uint16(s))
	}
	return nSamples * 2, nil
}

// Output is an open audio device/stream pair, parameterised once per track
// open by the negotiated sample format.
type Output struct {
	ctx    *oto.Context
	player *oto.Player
	format model.SampleFormat

	ringF32 *ring.Ring[float32]
	ringI16 *ring.Ring[int16]
}

// ResolveDeviceFormat maps a decoder-reported SignalSpec.Format onto the
// format this backend can actually drive. oto v3 supports float32 and
// signed-16 PCM; i32/u16 are downgraded to i16. i8/u8/i64/u64/f64 are
// rejected outright with OpenStreamError.
func ResolveDeviceFormat(requested model.SampleFormat) (model.SampleFormat, error) {
	switch requested {
	case model.FormatF32:
		return model.FormatF32, nil
	case model.FormatI16, model.FormatI32, model.FormatU16:
		return model.FormatI16, nil
	default:
		return 0, &Error{Kind: OpenStreamError, Err: fmt.Errorf("unsupported sample format %v", requested)}
	}
}

// Open builds a playback stream matching the requested rate/channels and
// the resolved device format, sized with ringCapacity samples of slack.
// audioDevice is accepted for a device-by-name selection contract; oto has
// no cross-platform device enumeration, so it is recorded but not yet used
// to pick among multiple hardware devices — see DESIGN.md.
func Open(spec model.SignalSpec, audioDevice string, ringCapacity int) (*Output, error) {
	deviceFormat, err := ResolveDeviceFormat(spec.Format)
	if err != nil {
		return nil, err
	}

	var otoFormat oto.Format
	switch deviceFormat {
	case model.FormatF32:
		otoFormat = oto.FormatFloat32LE
	case model.FormatI16:
		otoFormat = oto.FormatSignedInt16LE
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(spec.Rate),
		ChannelCount: int(spec.Channels),
		Format:       otoFormat,
	})
	if err != nil {
		return nil, &Error{Kind: OpenStreamError, Err: fmt.Errorf("open audio context: %w", err)}
	}
	<-ready

	out := &Output{ctx: ctx, format: deviceFormat}
	switch deviceFormat {
	case model.FormatF32:
		out.ringF32 = ring.New[float32](ringCapacity)
		out.player = ctx.NewPlayer(&f32Reader{r: out.ringF32})
	case model.FormatI16:
		out.ringI16 = ring.New[int16](ringCapacity)
		out.player = ctx.NewPlayer(&i16Reader{r: out.ringI16})
	}

	out.player.Play()
	if !out.player.IsPlaying() {
		return nil, &Error{Kind: PlayStreamError, Err: fmt.Errorf("audio stream failed to start")}
	}
	return out, nil
}

// Format reports the resolved device sample format.
func (o *Output) Format() model.SampleFormat { return o.format }

// WriteF32 blocks until all of samples have been queued on the ring. Valid
// only when Format() == model.FormatF32.
func (o *Output) WriteF32(samples []float32) {
	rem := samples
	for len(rem) > 0 {
		n := o.ringF32.WriteBlocking(rem)
		rem = rem[n:]
		if n == 0 {
			return // ring closed (stop requested)
		}
	}
}

// WriteI16 blocks until all of samples have been queued on the ring. Valid
// only when Format() == model.FormatI16.
func (o *Output) WriteI16(samples []int16) {
	rem := samples
	for len(rem) > 0 {
		n := o.ringI16.WriteBlocking(rem)
		rem = rem[n:]
		if n == 0 {
			return
		}
	}
}

// CancelPendingWrites wakes any goroutine blocked in WriteF32/WriteI16 so a
// stop request is observed promptly.
func (o *Output) CancelPendingWrites() {
	if o.ringF32 != nil {
		o.ringF32.Close()
	}
	if o.ringI16 != nil {
		o.ringI16.Close()
	}
}

// Flush pauses the underlying stream on a best-effort basis.
func (o *Output) Flush() {
	if o.player != nil {
		o.player.Pause()
	}
}

// Close releases the player and device. Safe to call after Flush.
func (o *Output) Close() error {
	if o.player != nil {
		_ = o.player.Close()
	}
	return nil
}
