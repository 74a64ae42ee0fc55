package bounty

import (
	"math"
	"time"

	"bountyboard/pkg/querycache"
)

// NeverEndsTimestamp is the sentinel end_timestamp meaning the bounty has no
// deadline; a bounty carrying it can only close by reaching its winner limit.
const NeverEndsTimestamp int64 = math.MaxInt64

// Bounty mirrors one row of the bounties table, written by the external
// indexing pipeline. Amounts are in the payment asset's smallest on-chain
// unit; timestamps are Unix seconds.
type Bounty struct {
	BountyObjAddr          string `gorm:"column:bounty_obj_addr;primaryKey"`
	CreatorAddr            string `gorm:"column:creator_addr;index"`
	CreateTimestamp        int64  `gorm:"column:create_timestamp"`
	EndTimestamp           int64  `gorm:"column:end_timestamp"`
	LastUpdateTimestamp    int64  `gorm:"column:last_update_timestamp"`
	Title                  string `gorm:"column:title"`
	DescriptionLink        string `gorm:"column:description_link"`
	PaymentMetadataObjAddr string `gorm:"column:payment_metadata_obj_addr"`
	PaymentPerWinner       int64  `gorm:"column:payment_per_winner"`
	StakeRequired          int64  `gorm:"column:stake_required"`
	StakeLockupInSeconds   int64  `gorm:"column:stake_lockup_in_seconds"`
	WinnerCount            int64  `gorm:"column:winner_count"`
	WinnerLimit            int64  `gorm:"column:winner_limit"`
	TotalPayment           int64  `gorm:"column:total_payment"`
	ContactInfo            string `gorm:"column:contact_info"`
	LastUpdateEventIdx     int64  `gorm:"column:last_update_event_idx"`
}

func (Bounty) TableName() string {
	return "bounties"
}

type Status string

const (
	StatusOpen   Status = "Open"
	StatusClosed Status = "Closed"
)

// Status derives the bounty's state at the given instant: Closed once the
// end timestamp has passed or every winner slot is taken, Open otherwise.
// The clock is injected so the derivation stays deterministic under test.
func (b *Bounty) Status(now time.Time) Status {
	if b.EndTimestamp != NeverEndsTimestamp && now.Unix() >= b.EndTimestamp {
		return StatusClosed
	}
	if b.WinnerCount == b.WinnerLimit {
		return StatusClosed
	}
	return StatusOpen
}

// NeverEnds reports whether the bounty has the sentinel end timestamp.
func (b *Bounty) NeverEnds() bool {
	return b.EndTimestamp == NeverEndsTimestamp
}

// MirrorVersion orders mirror rows for the same bounty address.
func (b *Bounty) MirrorVersion() querycache.Version {
	return querycache.Version{Timestamp: b.LastUpdateTimestamp, EventIdx: b.LastUpdateEventIdx}
}
