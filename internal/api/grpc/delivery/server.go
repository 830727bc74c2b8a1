package delivery

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	domain "github.com/oshokin/alarm-tone/internal/domain/alarm"
	pb "github.com/oshokin/alarm-tone/internal/pb/v1"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	Accept(ctx context.Context, upload *domain.Upload) (*domain.Delivery, error)
}

// Server implements the DeliveryService gRPC API.
type Server struct {
	pb.UnimplementedDeliveryServiceServer

	// service provides the business logic for deliveries.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// Deliver stores the uploaded sound file and returns its receipt.
func (s *Server) Deliver(ctx context.Context, req *wrapperspb.BytesValue) (*structpb.Struct, error) {
	if len(req.GetValue()) == 0 {
		return nil, status.Error(codes.InvalidArgument, "sound file is required")
	}

	upload, err := uploadFromContext(ctx, req.GetValue())
	if err != nil {
		return nil, err
	}

	delivery, err := s.service.Accept(ctx, upload)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidUpload):
		return nil, status.Error(codes.InvalidArgument, err.Error())
	default:
		return nil, status.Error(codes.Internal, "unable to store delivery")
	}

	receipt, err := pb.NewReceipt(delivery)
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to build receipt")
	}

	return receipt, nil
}

// uploadFromContext reads file name, priority and sender from the request metadata.
func uploadFromContext(ctx context.Context, data []byte) (*domain.Upload, error) {
	md, _ := metadata.FromIncomingContext(ctx)

	upload := &domain.Upload{
		FileName: firstValue(md, pb.MetadataFileName),
		Data:     data,
	}

	if upload.FileName == "" {
		return nil, status.Error(codes.InvalidArgument, pb.MetadataFileName+" metadata is required")
	}

	if raw := firstValue(md, pb.MetadataPriority); raw != "" {
		priority, err := domain.ParsePriority(raw)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}

		upload.Priority = priority
	}

	hostname := firstValue(md, pb.MetadataHostname)
	username := firstValue(md, pb.MetadataUsername)

	if hostname != "" || username != "" {
		upload.Sender = &domain.Actor{
			Hostname: hostname,
			Username: username,
		}
	}

	return upload, nil
}

func firstValue(md metadata.MD, key string) string {
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}

	return ""
}
