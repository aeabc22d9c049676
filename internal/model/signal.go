package model

// SampleFormat is the PCM sample representation negotiated at track open.
type SampleFormat int

const (
	FormatF32 SampleFormat = iota
	FormatI16
	FormatI32
	FormatU16
)

func (f SampleFormat) String() string {
	switch f {
	case FormatF32:
		return "f32"
	case FormatI16:
		return "i16"
	case FormatI32:
		return "i32"
	case FormatU16:
		return "u16"
	default:
		return "unknown"
	}
}

// SignalSpec describes a decoded PCM stream.
type SignalSpec struct {
	Rate        uint32
	Channels    uint16
	Format      SampleFormat
	BitsPerSample uint16
}

// PlayerInfo is a snapshot of the engine's format/codec telemetry.
type PlayerInfo struct {
	State    EngineState
	Rate     uint32
	Bits     uint16
	Channels uint16
	Codec    string
}

// SongProgress is monotone-non-decreasing within a track; resets on track
// change and on stop.
type SongProgress struct {
	TotalSeconds   float64
	CurrentSeconds float64
}

// EngineState is the playback engine's state machine.
type EngineState int

const (
	StateIdle EngineState = iota
	StatePlaying
	StatePaused
	StateStopping
)

func (s EngineState) String() string {
	switch s {
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	case StateStopping:
		return "Stopping"
	default:
		return "Idle"
	}
}
