package build

import (
	"testing"

	"github.com/stretchr/testify/require"

	"bountyboard/pkg/errutil"
)

func sampleRow() map[string]any {
	return map[string]any{
		"build_obj_addr":         "0xd1",
		"bounty_obj_addr":        "0xb1",
		"creator_addr":           "0xc1",
		"payment_recipient_addr": "0xc1",
		"payment_amount":         "100000000",
		"create_timestamp":       int64(1_700_000_000),
		"last_update_timestamp":  int64(1_700_000_500),
		"proof_link":             "",
		"build_status":           int64(2),
		"last_update_event_idx":  int64(3),
	}
}

func TestDecodeRow(t *testing.T) {
	b, err := DecodeRow(sampleRow())
	require.NoError(t, err)
	require.Equal(t, int64(100_000_000), b.PaymentAmount)
	require.Equal(t, StatusSubmittedForReview, b.BuildStatus)
	// empty proof link is a valid value, not a missing column.
	require.Empty(t, b.ProofLink)
}

func TestDecodeRowMissingColumn(t *testing.T) {
	row := sampleRow()
	delete(row, "build_status")

	_, err := DecodeRow(row)
	require.Error(t, err)
	require.True(t, errutil.HasStatus(err, errutil.StatusMalformedRow))
	require.Contains(t, err.Error(), "build_status")
}

func TestDecodeRowNonNumeric(t *testing.T) {
	row := sampleRow()
	row["payment_amount"] = "1e8"

	_, err := DecodeRow(row)
	require.Error(t, err)
	require.True(t, errutil.HasStatus(err, errutil.StatusMalformedRow))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	want, err := DecodeRow(sampleRow())
	require.NoError(t, err)

	got, err := DecodeRow(EncodeRow(want))
	require.NoError(t, err)
	require.Equal(t, want, got)
}
