package alarm

import (
	"errors"
	"time"
)

// ErrInvalidUpload is returned for uploads the receiver refuses to store.
var ErrInvalidUpload = errors.New("invalid upload")

// Actor identifies who produced or delivered a sound file.
type Actor struct {
	// Hostname is the machine name where the action was performed.
	Hostname string
	// Username is the system user who triggered the action.
	Username string
}

// Clone returns a deep copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// Delivery describes a sound file accepted by the receiver.
type Delivery struct {
	// ID uniquely identifies the delivery.
	ID string
	// FileName is the base name the sender asked for.
	FileName string
	// Priority is the alarm priority reported by the sender, if any.
	Priority Priority
	// Sender is who pushed the file.
	Sender *Actor
	// SizeBytes is the stored file size.
	SizeBytes int64
	// ReceivedAt is when the receiver stored the file.
	ReceivedAt time.Time
}

// Clone returns a copy to avoid leaking internal references.
func (d *Delivery) Clone() *Delivery {
	if d == nil {
		return nil
	}

	cloned := *d
	cloned.Sender = d.Sender.Clone()

	return &cloned
}

// Upload is a sound file pushed to the receiver.
type Upload struct {
	// FileName is the base name the sender asked for.
	FileName string
	// Priority is the alarm priority of the sound, empty when unknown.
	Priority Priority
	// Sender is who pushed the file.
	Sender *Actor
	// Data holds the WAV file contents.
	Data []byte
}
