package chainaddr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"bountyboard/pkg/errutil"
)

func TestParseCanonicalizes(t *testing.T) {
	addr, err := Parse("0xA")
	require.NoError(t, err)
	require.Equal(t, Address("0x"+strings.Repeat("0", 63)+"a"), addr)
}

func TestParseFullLength(t *testing.T) {
	raw := "0x" + strings.Repeat("ab", 32)
	addr, err := Parse(raw)
	require.NoError(t, err)
	require.Equal(t, Address(raw), addr)
}

func TestParseRejectsInjection(t *testing.T) {
	_, err := Parse("'; DROP TABLE bounties;--")
	require.Error(t, err)
	require.Equal(t, errutil.StatusInvalidFilter, errutil.StatusOf(err))
}

func TestParseRejectsBadInputs(t *testing.T) {
	for _, raw := range []string{
		"",
		"0x",
		"0xzz",
		"0x" + strings.Repeat("a", 65),
		"1234",
		"0x12 34",
	} {
		_, err := Parse(raw)
		require.Error(t, err, "input %q", raw)
		require.Equal(t, errutil.StatusInvalidFilter, errutil.StatusOf(err))
	}
}

func TestShort(t *testing.T) {
	addr := MustParse("0x" + strings.Repeat("ab", 32))
	require.Equal(t, "0xabab...abab", addr.Short())
}
