// Package encoder writes session audio to FLAC so practice takes can
// be replayed later.
package encoder

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)
