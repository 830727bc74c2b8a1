package receiver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/alarm-tone/internal/domain/alarm"
	"github.com/oshokin/alarm-tone/internal/encoding/wav"
	repo "github.com/oshokin/alarm-tone/internal/repository/delivery"
)

var errTestSave = errors.New("test save error")

// memoryRepository is a minimal in-memory Repository implementation for tests.
type memoryRepository struct {
	// saveErr is the error to return from Save operations.
	saveErr error
	// deliveries holds saved deliveries in order.
	deliveries []*domain.Delivery
	// files maps delivery IDs to their contents.
	files map[string][]byte
}

func (m *memoryRepository) Save(_ context.Context, d *domain.Delivery, data []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}

	if m.files == nil {
		m.files = make(map[string][]byte)
	}

	m.deliveries = append(m.deliveries, d.Clone())
	m.files[d.ID] = data

	return nil
}

func (m *memoryRepository) List(context.Context) ([]*domain.Delivery, error) {
	return m.deliveries, nil
}

func (m *memoryRepository) Get(_ context.Context, id string) (*domain.Delivery, error) {
	for _, d := range m.deliveries {
		if d.ID == id {
			return d, nil
		}
	}

	return nil, repo.ErrNotFound
}

func (m *memoryRepository) Path(id string) string {
	return "/tmp/" + id + ".wav"
}

func testService(r repo.Repository) *service {
	s := newService(r)
	s.now = func() time.Time { return time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC) }
	s.newID = func() string { return "delivery-1" }

	return s
}

func soundFile(t *testing.T) []byte {
	t.Helper()

	data, err := wav.EncodeBytes([]float64{0, 0.5, -0.5, 0.25}, 44100)
	require.NoError(t, err)

	return data
}

// TestService_Accept stores a valid WAV upload under a fresh ID.
func TestService_Accept(t *testing.T) {
	t.Parallel()

	memory := new(memoryRepository)
	s := testService(memory)
	data := soundFile(t)

	d, err := s.Accept(context.Background(), &domain.Upload{
		FileName: "/home/o.shokin/new-hp.wav",
		Priority: domain.PriorityHigh,
		Sender:   &domain.Actor{Hostname: "ward-3", Username: "o.shokin"},
		Data:     data,
	})
	require.NoError(t, err)
	require.Equal(t, &domain.Delivery{
		ID:         "delivery-1",
		FileName:   "new-hp.wav",
		Priority:   domain.PriorityHigh,
		Sender:     &domain.Actor{Hostname: "ward-3", Username: "o.shokin"},
		SizeBytes:  int64(len(data)),
		ReceivedAt: time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC),
	}, d)
	require.Equal(t, data, memory.files["delivery-1"])

	listed, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)

	opened, path, err := s.Open(context.Background(), "delivery-1")
	require.NoError(t, err)
	require.Equal(t, "new-hp.wav", opened.FileName)
	require.Equal(t, "/tmp/delivery-1.wav", path)

	_, _, err = s.Open(context.Background(), "missing")
	require.ErrorIs(t, err, repo.ErrNotFound)
}

// TestService_Accept_Rejects refuses uploads that are not WAV files or lack a name.
func TestService_Accept_Rejects(t *testing.T) {
	t.Parallel()

	cases := map[string]*domain.Upload{
		"nil upload":    nil,
		"not a wav":     {FileName: "notes.txt", Data: []byte("hello, this is not a sound file at all......")},
		"short payload": {FileName: "new-hp.wav", Data: []byte("RIFF")},
		"no file name":  {FileName: "", Data: nil},
	}

	for name, upload := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			memory := new(memoryRepository)

			_, err := testService(memory).Accept(context.Background(), upload)
			require.ErrorIs(t, err, domain.ErrInvalidUpload)
			require.Empty(t, memory.deliveries)
		})
	}
}

// TestService_Accept_SaveError surfaces repository failures without marking the upload invalid.
func TestService_Accept_SaveError(t *testing.T) {
	t.Parallel()

	s := testService(&memoryRepository{saveErr: errTestSave})

	_, err := s.Accept(context.Background(), &domain.Upload{FileName: "new-lp.wav", Data: soundFile(t)})
	require.ErrorIs(t, err, errTestSave)
	require.NotErrorIs(t, err, domain.ErrInvalidUpload)
}
