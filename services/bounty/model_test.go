package bounty

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStatusOpenBeforeEnd(t *testing.T) {
	b := &Bounty{EndTimestamp: 1_000, WinnerCount: 0, WinnerLimit: 3}
	require.Equal(t, StatusOpen, b.Status(time.Unix(999, 0)))
}

func TestStatusClosedAtEndTimestamp(t *testing.T) {
	b := &Bounty{EndTimestamp: 1_000, WinnerCount: 0, WinnerLimit: 3}
	require.Equal(t, StatusClosed, b.Status(time.Unix(1_000, 0)))
	require.Equal(t, StatusClosed, b.Status(time.Unix(5_000, 0)))
}

func TestStatusClosedWhenWinnerLimitReached(t *testing.T) {
	b := &Bounty{EndTimestamp: 1_000, WinnerCount: 3, WinnerLimit: 3}
	require.Equal(t, StatusClosed, b.Status(time.Unix(1, 0)))
}

func TestStatusNeverEndsStaysOpen(t *testing.T) {
	b := &Bounty{EndTimestamp: NeverEndsTimestamp, WinnerCount: 1, WinnerLimit: 3}
	require.True(t, b.NeverEnds())
	require.Equal(t, StatusOpen, b.Status(time.Unix(1<<40, 0)))
}

func TestStatusNeverEndsClosesOnWinnerLimit(t *testing.T) {
	b := &Bounty{EndTimestamp: NeverEndsTimestamp, WinnerCount: 3, WinnerLimit: 3}
	require.Equal(t, StatusClosed, b.Status(time.Unix(1, 0)))
}

func TestMirrorVersionOrdering(t *testing.T) {
	older := &Bounty{LastUpdateTimestamp: 100, LastUpdateEventIdx: 2}
	newer := &Bounty{LastUpdateTimestamp: 100, LastUpdateEventIdx: 3}
	require.True(t, newer.MirrorVersion().Newer(older.MirrorVersion()))
	require.False(t, older.MirrorVersion().Newer(newer.MirrorVersion()))
}
