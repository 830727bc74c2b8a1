package pb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/alarm-tone/internal/domain/alarm"
)

// TestReceipt converts a delivery to its wire form and back.
func TestReceipt(t *testing.T) {
	t.Parallel()

	want := &domain.Delivery{
		ID:         "5f0e8f7c-3b0e-4a55-9f4a-2d7f0f2c1a10",
		FileName:   "new-hp.wav",
		Priority:   domain.PriorityHigh,
		Sender:     &domain.Actor{Hostname: "ward-3", Username: "biomed"},
		SizeBytes:  14204,
		ReceivedAt: time.Date(2026, 10, 17, 9, 30, 0, 123, time.UTC),
	}

	receipt, err := NewReceipt(want)
	require.NoError(t, err)
	require.Equal(t, "new-hp.wav", receipt.GetFields()[FieldFileName].GetStringValue())
	require.InDelta(t, 14204.0, receipt.GetFields()[FieldSizeBytes].GetNumberValue(), 0)

	got, err := ParseReceipt(receipt)
	require.NoError(t, err)
	require.Equal(t, want, got)

	// Senders are optional.
	want.Sender = nil

	receipt, err = NewReceipt(want)
	require.NoError(t, err)

	got, err = ParseReceipt(receipt)
	require.NoError(t, err)
	require.Nil(t, got.Sender)
}

// TestParseReceipt_Errors rejects receipts without an ID or with a bad timestamp.
func TestParseReceipt_Errors(t *testing.T) {
	t.Parallel()

	_, err := ParseReceipt(&structpb.Struct{})
	require.ErrorIs(t, err, ErrMalformedReceipt)

	_, err = ParseReceipt(nil)
	require.ErrorIs(t, err, ErrMalformedReceipt)

	receipt, err := structpb.NewStruct(map[string]any{FieldID: "x", FieldReceivedAt: "yesterday"})
	require.NoError(t, err)

	_, err = ParseReceipt(receipt)
	require.ErrorIs(t, err, ErrMalformedReceipt)
}
