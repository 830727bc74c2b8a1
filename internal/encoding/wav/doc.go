// Package wav writes and reads mono 16-bit PCM RIFF/WAVE files.
//
// Samples in [-1, 1] are scaled by 32767 and truncated toward zero.
package wav
