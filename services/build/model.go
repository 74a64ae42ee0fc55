package build

import (
	"fmt"

	"bountyboard/pkg/querycache"
)

// Build mirrors one row of the builds table. build_status carries the raw
// on-chain status code; StatusLabel renders it for display.
type Build struct {
	BuildObjAddr         string `gorm:"column:build_obj_addr;primaryKey"`
	BountyObjAddr        string `gorm:"column:bounty_obj_addr;index"`
	CreatorAddr          string `gorm:"column:creator_addr;index"`
	PaymentRecipientAddr string `gorm:"column:payment_recipient_addr"`
	PaymentAmount        int64  `gorm:"column:payment_amount"`
	CreateTimestamp      int64  `gorm:"column:create_timestamp"`
	LastUpdateTimestamp  int64  `gorm:"column:last_update_timestamp"`
	ProofLink            string `gorm:"column:proof_link"`
	BuildStatus          int64  `gorm:"column:build_status"`
	LastUpdateEventIdx   int64  `gorm:"column:last_update_event_idx"`
}

func (Build) TableName() string {
	return "builds"
}

const (
	StatusInProgress         int64 = 1
	StatusSubmittedForReview int64 = 2
	StatusApprovedPaid       int64 = 3
	StatusRejected           int64 = 4
)

// StatusLabel renders a raw build status code. Codes this version does not
// know about label as unknown instead of failing the read.
func StatusLabel(raw int64) string {
	switch raw {
	case StatusInProgress:
		return "In progress"
	case StatusSubmittedForReview:
		return "Submitted for review"
	case StatusApprovedPaid:
		return "Approved/Paid"
	case StatusRejected:
		return "Rejected"
	default:
		return fmt.Sprintf("Unknown (%d)", raw)
	}
}

func (b *Build) StatusLabel() string {
	return StatusLabel(b.BuildStatus)
}

// MirrorVersion orders mirror rows for the same build address.
func (b *Build) MirrorVersion() querycache.Version {
	return querycache.Version{Timestamp: b.LastUpdateTimestamp, EventIdx: b.LastUpdateEventIdx}
}
