//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/alarm-tone/internal/config"
	domain "github.com/oshokin/alarm-tone/internal/domain/alarm"
	"github.com/oshokin/alarm-tone/internal/encoding/wav"
	pb "github.com/oshokin/alarm-tone/internal/pb/v1"
	"github.com/oshokin/alarm-tone/internal/synth"
)

// MaxMessageSize bounds a delivery message in both directions: the longest
// burst as 16-bit PCM plus its header, with room for the protobuf framing.
// The gRPC default of 4 MiB holds barely 22 seconds of 96 kHz audio.
const MaxMessageSize = synth.MaxSamples*wav.BitsPerSample/8 + wav.HeaderSize + messageOverhead

const messageOverhead = 64 << 10

// Client wraps the gRPC DeliveryService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the receiver.
	conn *grpc.ClientConn
	// api is the DeliveryService client interface.
	api pb.DeliveryServiceClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
	// dialOptions are appended to the default transport options.
	dialOptions []grpc.DialOption
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithDialOptions adds gRPC dial options, e.g. a custom dialer in tests.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *Client) {
		c.dialOptions = append(c.dialOptions, opts...)
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errUploadRequired is returned when there is nothing to deliver.
	errUploadRequired = errors.New("upload with data must be provided")
)

// Dial establishes a gRPC connection to the receiver.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy until native TLS is added.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	client := &Client{
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	dialOptions := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallSendMsgSize(MaxMessageSize),
			grpc.MaxCallRecvMsgSize(MaxMessageSize),
		),
	}, client.dialOptions...)

	// Use the non-context NewClient API recommended by grpc-go
	// (DialContext is deprecated as of grpc-go v1.60+).
	conn, err := grpc.NewClient(address, dialOptions...)
	if err != nil {
		return nil, fmt.Errorf("dial receiver: %w", err)
	}

	client.conn = conn
	client.api = pb.NewDeliveryServiceClient(conn)

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// Deliver uploads a sound file and returns the receiver's record of it.
// Only the base name of upload.FileName is sent.
func (c *Client) Deliver(ctx context.Context, upload *domain.Upload) (*domain.Delivery, error) {
	if upload == nil || len(upload.Data) == 0 {
		return nil, errUploadRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	callCtx = metadata.NewOutgoingContext(callCtx, uploadMetadata(upload))

	receipt, err := c.api.Deliver(callCtx, wrapperspb.Bytes(upload.Data))
	if err != nil {
		return nil, fmt.Errorf("deliver %s: %w", upload.FileName, err)
	}

	delivery, err := pb.ParseReceipt(receipt)
	if err != nil {
		return nil, fmt.Errorf("deliver %s: %w", upload.FileName, err)
	}

	return delivery, nil
}

// uploadMetadata builds the request metadata describing the upload.
func uploadMetadata(upload *domain.Upload) metadata.MD {
	md := metadata.Pairs(pb.MetadataFileName, filepath.Base(upload.FileName))

	if upload.Priority != "" {
		md.Set(pb.MetadataPriority, upload.Priority.String())
	}

	if upload.Sender != nil {
		md.Set(pb.MetadataHostname, upload.Sender.Hostname)
		md.Set(pb.MetadataUsername, upload.Sender.Username)
	}

	return md
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
