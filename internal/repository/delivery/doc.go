// Package delivery stores sound files accepted by the receiver.
//
// Each file is written under its delivery ID next to an index of all
// deliveries. The index is a protobuf JSON (protojson) list of receipts, the
// same shape the gRPC API returns.
package delivery
