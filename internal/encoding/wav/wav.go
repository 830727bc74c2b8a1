package wav

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/arl/blip/wave"
)

const (
	// HeaderSize is the size of the canonical RIFF/WAVE header in bytes.
	HeaderSize = 44
	// FormatPCM is the audio format code for uncompressed PCM.
	FormatPCM = 1
	// Channels is the channel count of every written file.
	Channels = 1
	// BitsPerSample is the bit depth of every written file.
	BitsPerSample = 16
	// MaxAmplitude maps a sample of 1.0 to a PCM value.
	MaxAmplitude = 32767

	bytesPerSample = BitsPerSample / 8
	fmtChunkSize   = 16
	maxDataSize    = math.MaxUint32 - (HeaderSize - 8)
)

var (
	// ErrNotWAVE is returned for data that does not start with a RIFF/WAVE header.
	ErrNotWAVE = errors.New("not a RIFF/WAVE file")
	// ErrUnsupportedFormat is returned for WAVE files that are not 16-bit PCM.
	ErrUnsupportedFormat = errors.New("unsupported WAVE format")
	// ErrInvalidSampleRate is returned for sample rates that do not fit the header.
	ErrInvalidSampleRate = errors.New("invalid sample rate")
	// ErrTooLarge is returned when the samples do not fit a RIFF file.
	ErrTooLarge = errors.New("too many samples for a RIFF file")
	// ErrShortWrite is returned when a written file is smaller than its samples.
	ErrShortWrite = errors.New("short write")
)

// Format describes the stream of a decoded file.
type Format struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// header is the on-disk layout of a canonical PCM header.
type header struct {
	ChunkID       [4]byte
	ChunkSize     uint32
	Format        [4]byte
	Subchunk1ID   [4]byte
	Subchunk1Size uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Subchunk2ID   [4]byte
	Subchunk2Size uint32
}

// PCM converts a sample in [-1, 1] into a signed 16-bit value.
func PCM(sample float64) int16 {
	return int16(sample * MaxAmplitude)
}

// Encode writes samples as a mono 16-bit PCM WAVE stream.
func Encode(w io.Writer, samples []float64, sampleRate int) error {
	dataSize, err := checkFormat(len(samples), sampleRate)
	if err != nil {
		return err
	}

	h := header{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     uint32(HeaderSize - 8 + dataSize),
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: fmtChunkSize,
		AudioFormat:   FormatPCM,
		NumChannels:   Channels,
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate * Channels * bytesPerSample),
		BlockAlign:    Channels * bytesPerSample,
		BitsPerSample: BitsPerSample,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: uint32(dataSize),
	}

	bw := bufio.NewWriter(w)

	if err = binary.Write(bw, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	var buf [bytesPerSample]byte

	for _, s := range samples {
		binary.LittleEndian.PutUint16(buf[:], uint16(PCM(s)))

		if _, err := bw.Write(buf[:]); err != nil {
			return fmt.Errorf("write samples: %w", err)
		}
	}

	if err = bw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	return nil
}

// EncodeBytes returns the encoded file contents.
func EncodeBytes(samples []float64, sampleRate int) ([]byte, error) {
	var buf bytes.Buffer

	buf.Grow(HeaderSize + len(samples)*bytesPerSample)

	if err := Encode(&buf, samples, sampleRate); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// WriteFile encodes samples into the file at path, replacing it.
func WriteFile(path string, samples []float64, sampleRate int) error {
	dataSize, err := checkFormat(len(samples), sampleRate)
	if err != nil {
		return err
	}

	path = filepath.Clean(path)

	w, err := wave.NewFile(path, sampleRate)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	pcm := make([]int16, len(samples))
	for i, s := range samples {
		pcm[i] = PCM(s)
	}

	w.Write(pcm)
	w.Close() //nolint:errcheck,gosec // checked through the file size below.

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if want := int64(HeaderSize + dataSize); info.Size() != want {
		return fmt.Errorf("%s has %d of %d bytes: %w", path, info.Size(), want, ErrShortWrite)
	}

	return nil
}

// checkFormat returns the data chunk size of a mono 16-bit stream.
func checkFormat(count, sampleRate int) (int, error) {
	if sampleRate <= 0 || sampleRate > math.MaxUint32/(Channels*bytesPerSample) {
		return 0, fmt.Errorf("%d Hz: %w", sampleRate, ErrInvalidSampleRate)
	}

	dataSize := count * Channels * bytesPerSample
	if int64(dataSize) > maxDataSize {
		return 0, fmt.Errorf("%d samples: %w", count, ErrTooLarge)
	}

	return dataSize, nil
}

// DecodeHeader validates a canonical 16-bit PCM header and returns its format.
func DecodeHeader(data []byte) (Format, error) {
	if len(data) < HeaderSize {
		return Format{}, fmt.Errorf("%d bytes: %w", len(data), ErrNotWAVE)
	}

	var h header
	if err := binary.Read(bytes.NewReader(data[:HeaderSize]), binary.LittleEndian, &h); err != nil {
		return Format{}, fmt.Errorf("read header: %w", err)
	}

	if string(h.ChunkID[:]) != "RIFF" || string(h.Format[:]) != "WAVE" ||
		string(h.Subchunk1ID[:]) != "fmt " || string(h.Subchunk2ID[:]) != "data" {
		return Format{}, ErrNotWAVE
	}

	if h.AudioFormat != FormatPCM || h.BitsPerSample != BitsPerSample || h.NumChannels == 0 {
		return Format{}, fmt.Errorf("format %d, %d bits, %d channels: %w",
			h.AudioFormat, h.BitsPerSample, h.NumChannels, ErrUnsupportedFormat)
	}

	if int(h.Subchunk2Size) > len(data)-HeaderSize {
		return Format{}, fmt.Errorf("data chunk of %d bytes is truncated: %w", h.Subchunk2Size, ErrNotWAVE)
	}

	return Format{
		SampleRate:    int(h.SampleRate),
		Channels:      int(h.NumChannels),
		BitsPerSample: int(h.BitsPerSample),
	}, nil
}

// Decode returns the format and the PCM samples of a file written by Encode.
func Decode(data []byte) (Format, []int16, error) {
	format, err := DecodeHeader(data)
	if err != nil {
		return Format{}, nil, err
	}

	size := binary.LittleEndian.Uint32(data[HeaderSize-4 : HeaderSize])
	payload := data[HeaderSize : HeaderSize+int(size)]

	samples := make([]int16, len(payload)/bytesPerSample)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(payload[i*bytesPerSample:]))
	}

	return format, samples, nil
}
