package pb

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/alarm-tone/internal/domain/alarm"
)

// Receipt field names.
const (
	FieldID         = "id"
	FieldFileName   = "file_name"
	FieldPriority   = "priority"
	FieldSizeBytes  = "size_bytes"
	FieldReceivedAt = "received_at"
	FieldSender     = "sender"
	FieldHostname   = "hostname"
	FieldUsername   = "username"
)

// ErrMalformedReceipt is returned for receipts missing the delivery ID.
var ErrMalformedReceipt = errors.New("malformed delivery receipt")

// NewReceipt converts a delivery record into its wire form.
func NewReceipt(d *domain.Delivery) (*structpb.Struct, error) {
	fields := map[string]any{
		FieldID:         d.ID,
		FieldFileName:   d.FileName,
		FieldPriority:   d.Priority.String(),
		FieldSizeBytes:  float64(d.SizeBytes),
		FieldReceivedAt: d.ReceivedAt.UTC().Format(time.RFC3339Nano),
	}

	if d.Sender != nil {
		fields[FieldSender] = map[string]any{
			FieldHostname: d.Sender.Hostname,
			FieldUsername: d.Sender.Username,
		}
	}

	receipt, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("build receipt: %w", err)
	}

	return receipt, nil
}

// ParseReceipt converts a receipt back into a delivery record.
func ParseReceipt(receipt *structpb.Struct) (*domain.Delivery, error) {
	fields := receipt.GetFields()

	d := &domain.Delivery{
		ID:        fields[FieldID].GetStringValue(),
		FileName:  fields[FieldFileName].GetStringValue(),
		Priority:  domain.Priority(fields[FieldPriority].GetStringValue()),
		SizeBytes: int64(fields[FieldSizeBytes].GetNumberValue()),
	}

	if d.ID == "" {
		return nil, ErrMalformedReceipt
	}

	if raw := fields[FieldReceivedAt].GetStringValue(); raw != "" {
		receivedAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: received_at: %w", ErrMalformedReceipt, err)
		}

		d.ReceivedAt = receivedAt
	}

	if sender := fields[FieldSender].GetStructValue(); sender != nil {
		d.Sender = &domain.Actor{
			Hostname: sender.GetFields()[FieldHostname].GetStringValue(),
			Username: sender.GetFields()[FieldUsername].GetStringValue(),
		}
	}

	return d, nil
}
