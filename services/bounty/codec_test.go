package bounty

import (
	"testing"

	"github.com/stretchr/testify/require"

	"bountyboard/pkg/errutil"
)

func sampleRow() map[string]any {
	return map[string]any{
		"bounty_obj_addr":           "0xb1",
		"creator_addr":              "0xc1",
		"create_timestamp":          int64(1_700_000_000),
		"end_timestamp":             "9223372036854775807",
		"last_update_timestamp":     int64(1_700_000_500),
		"title":                     "Fix the indexer",
		"description_link":          "https://example.org/brief",
		"payment_metadata_obj_addr": string(APTMetadataAddr),
		"payment_per_winner":        "100000000",
		"stake_required":            int64(5_000_000),
		"stake_lockup_in_seconds":   int64(86_400),
		"winner_count":              int64(1),
		"winner_limit":              int64(3),
		"total_payment":             "300000000",
		"contact_info":              "dev@example.org",
		"last_update_event_idx":     int64(7),
	}
}

func TestDecodeRow(t *testing.T) {
	b, err := DecodeRow(sampleRow())
	require.NoError(t, err)

	require.Equal(t, "0xb1", b.BountyObjAddr)
	require.Equal(t, NeverEndsTimestamp, b.EndTimestamp)
	require.Equal(t, int64(100_000_000), b.PaymentPerWinner)
	require.Equal(t, int64(300_000_000), b.TotalPayment)
	require.Equal(t, int64(7), b.LastUpdateEventIdx)
}

func TestDecodeRowMissingColumn(t *testing.T) {
	row := sampleRow()
	delete(row, "winner_limit")

	_, err := DecodeRow(row)
	require.Error(t, err)
	require.True(t, errutil.HasStatus(err, errutil.StatusMalformedRow))
	require.Contains(t, err.Error(), "winner_limit")
}

func TestDecodeRowNonNumeric(t *testing.T) {
	row := sampleRow()
	row["total_payment"] = "3.5e8"

	_, err := DecodeRow(row)
	require.Error(t, err)
	require.True(t, errutil.HasStatus(err, errutil.StatusMalformedRow))
	require.Contains(t, err.Error(), "total_payment")
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	want, err := DecodeRow(sampleRow())
	require.NoError(t, err)

	got, err := DecodeRow(EncodeRow(want))
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestDecodeRowOverflow(t *testing.T) {
	row := sampleRow()
	row["end_timestamp"] = "9223372036854775808"

	_, err := DecodeRow(row)
	require.Error(t, err)
	require.True(t, errutil.HasStatus(err, errutil.StatusMalformedRow))
}
