// Package pb defines the alarmtone.v1 delivery API.
//
// The service carries well-known protobuf types only: the request is a
// wrapperspb.BytesValue holding the WAV file, with file name, priority and
// sender passed as metadata, and the receipt is a structpb.Struct. The
// service descriptor, client and server stubs follow the layout of
// protoc-gen-go-grpc output so they can be swapped for generated code.
package pb
