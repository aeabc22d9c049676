package model

import "sync"

// Config is the process-wide configuration handle: a single
// reader/writer-locked handle rather than package-level globals. The
// Engine receives *Config at construction; the Queue and PlayerState are
// opened from its directory fields, and the Monitor does not receive it.
type Config struct {
	mu sync.RWMutex

	MusicRoot        string
	QueueDBDir       string
	PlayerStateDBDir string
	PlaylistDBDir    string
	AudioDevice      string
	BufferMB         int
}

// NewConfig builds a Config with the given directories/device.
func NewConfig(musicRoot, queueDBDir, playerStateDBDir, playlistDBDir, audioDevice string, bufferMB int) *Config {
	if bufferMB <= 0 {
		bufferMB = 4
	}
	return &Config{
		MusicRoot:        musicRoot,
		QueueDBDir:       queueDBDir,
		PlayerStateDBDir: playerStateDBDir,
		PlaylistDBDir:    playlistDBDir,
		AudioDevice:      audioDevice,
		BufferMB:         bufferMB,
	}
}

// AudioOutputDevice returns the configured device name under the read lock.
func (c *Config) AudioOutputDevice() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.AudioDevice
}

// SetAudioOutputDevice updates the device name under the write lock (e.g.
// in response to a System.ChangeAudioOutput command).
func (c *Config) SetAudioOutputDevice(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.AudioDevice = name
}
