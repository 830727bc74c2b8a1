package delivery

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	domain "github.com/oshokin/alarm-tone/internal/domain/alarm"
	pb "github.com/oshokin/alarm-tone/internal/pb/v1"
)

var errTestStore = errors.New("disk full")

// fakeService implements the delivery Service interface for unit testing the transport.
type fakeService struct {
	// acceptFn overrides the default behaviour when set.
	acceptFn func(ctx context.Context, upload *domain.Upload) (*domain.Delivery, error)

	// last is the most recent upload.
	last *domain.Upload
}

// Accept records the upload and returns a delivery stamped with the current time.
func (f *fakeService) Accept(ctx context.Context, upload *domain.Upload) (*domain.Delivery, error) {
	if f.acceptFn != nil {
		return f.acceptFn(ctx, upload)
	}

	f.last = upload

	return &domain.Delivery{
		ID:         "delivery-1",
		FileName:   upload.FileName,
		Priority:   upload.Priority,
		Sender:     upload.Sender,
		SizeBytes:  int64(len(upload.Data)),
		ReceivedAt: time.Now(),
	}, nil
}

func incoming(kv ...string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs(kv...))
}

// TestServer_Deliver_Validation ensures invalid requests return InvalidArgument errors.
func TestServer_Deliver_Validation(t *testing.T) {
	t.Parallel()

	s := NewServer(new(fakeService))

	_, err := s.Deliver(context.Background(), nil)
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.Deliver(incoming(pb.MetadataFileName, "a.wav"), wrapperspb.Bytes(nil))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.Deliver(context.Background(), wrapperspb.Bytes([]byte("RIFF")))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.Deliver(incoming(pb.MetadataFileName, "a.wav", pb.MetadataPriority, "medium"), wrapperspb.Bytes([]byte("RIFF")))
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

// TestServer_Deliver_ServiceErrors maps service failures to status codes.
func TestServer_Deliver_ServiceErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want codes.Code
	}{
		{err: fmt.Errorf("not a WAVE file: %w", domain.ErrInvalidUpload), want: codes.InvalidArgument},
		{err: errTestStore, want: codes.Internal},
	}

	for _, tc := range cases {
		s := NewServer(&fakeService{
			acceptFn: func(context.Context, *domain.Upload) (*domain.Delivery, error) {
				return nil, tc.err
			},
		})

		_, err := s.Deliver(incoming(pb.MetadataFileName, "a.wav"), wrapperspb.Bytes([]byte("RIFF")))
		require.Equal(t, tc.want, status.Code(err), tc.err.Error())
	}
}

// TestServer_Roundtrip exercises Deliver end-to-end on the server implementation.
func TestServer_Roundtrip(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		service := new(fakeService)
		s := NewServer(service)

		ctx := incoming(
			pb.MetadataFileName, "new-hp.wav",
			pb.MetadataPriority, "high",
			pb.MetadataHostname, "test-hostname",
			pb.MetadataUsername, "test-user",
		)

		receipt, err := s.Deliver(ctx, wrapperspb.Bytes([]byte("RIFF....WAVE")))
		require.NoError(t, err)

		synctest.Wait()

		delivery, err := pb.ParseReceipt(receipt)
		require.NoError(t, err)
		require.Equal(t, "delivery-1", delivery.ID)
		require.Equal(t, "new-hp.wav", delivery.FileName)
		require.Equal(t, domain.PriorityHigh, delivery.Priority)
		require.Equal(t, int64(12), delivery.SizeBytes)
		require.Equal(t, &domain.Actor{Hostname: "test-hostname", Username: "test-user"}, delivery.Sender)

		require.Equal(t, []byte("RIFF....WAVE"), service.last.Data)
	})
}
