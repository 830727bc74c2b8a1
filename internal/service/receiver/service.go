package receiver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	domain "github.com/oshokin/alarm-tone/internal/domain/alarm"
	"github.com/oshokin/alarm-tone/internal/encoding/wav"
	"github.com/oshokin/alarm-tone/internal/logger"
	"github.com/oshokin/alarm-tone/internal/metrics"
	repo "github.com/oshokin/alarm-tone/internal/repository/delivery"
)

var errBadFileName = errors.New("file name must name a file")

// service validates delivered sound files and hands them to the repository.
// It is unexported to keep the transport decoupled from the implementation.
type service struct {
	// repo handles persistent storage of deliveries.
	repo repo.Repository
	// now returns the receive time.
	now func() time.Time
	// newID generates delivery identifiers.
	newID func() string
}

// newService creates a service backed by the provided repository.
func newService(repository repo.Repository) *service {
	return &service{
		repo:  repository,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Accept checks that the upload is a WAV file this module can produce and stores it.
func (s *service) Accept(ctx context.Context, upload *domain.Upload) (*domain.Delivery, error) {
	if upload == nil {
		return nil, s.reject(ctx, "", errors.New("upload is not set"))
	}

	name := filepath.Base(upload.FileName)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return nil, s.reject(ctx, upload.FileName, errBadFileName)
	}

	format, err := wav.DecodeHeader(upload.Data)
	if err != nil {
		return nil, s.reject(ctx, name, err)
	}

	d := &domain.Delivery{
		ID:         s.newID(),
		FileName:   name,
		Priority:   upload.Priority,
		Sender:     upload.Sender.Clone(),
		SizeBytes:  int64(len(upload.Data)),
		ReceivedAt: s.now().UTC(),
	}

	timer := prometheus.NewTimer(metrics.StoreLatency)
	err = s.repo.Save(ctx, d, upload.Data)

	timer.ObserveDuration()

	if err != nil {
		metrics.DeliveriesTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		logger.ErrorKV(ctx, "Failed to persist delivery", "id", d.ID, "error", err)

		return nil, fmt.Errorf("persist delivery: %w", err)
	}

	priority := string(d.Priority)
	if priority == "" {
		priority = "unknown"
	}

	metrics.DeliveriesTotal.WithLabelValues(metrics.OutcomeStored).Inc()
	metrics.DeliveredBytesTotal.Add(float64(d.SizeBytes))
	metrics.StoredByPriorityTotal.WithLabelValues(priority).Inc()

	logger.InfoKV(ctx, "Delivery stored",
		"id", d.ID,
		"file_name", d.FileName,
		"priority", priority,
		"sample_rate", format.SampleRate,
		"size_bytes", d.SizeBytes,
		"sender", d.Sender)

	return d.Clone(), nil
}

// List returns every stored delivery in arrival order.
func (s *service) List(ctx context.Context) ([]*domain.Delivery, error) {
	return s.repo.List(ctx)
}

// Open returns the stored delivery and the path of its file.
func (s *service) Open(ctx context.Context, id string) (*domain.Delivery, string, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	return d, s.repo.Path(d.ID), nil
}

func (s *service) reject(ctx context.Context, fileName string, cause error) error {
	metrics.DeliveriesTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
	logger.WarnKV(ctx, "Delivery rejected", "file_name", fileName, "error", cause)

	return fmt.Errorf("%w: %w", domain.ErrInvalidUpload, cause)
}
