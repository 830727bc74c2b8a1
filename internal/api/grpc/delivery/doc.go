// Package delivery implements the gRPC transport of the receiver.
//
// It reads the upload from the request and its metadata, calls into a
// provided business-service interface and answers with a receipt.
package delivery
