package userstat

import (
	"bountyboard/pkg/querycache"
)

// UserStat mirrors one row of the user_stats table: per-address counters the
// indexing pipeline bumps on every bounty/build event. Read-only here; the
// analytics boards sort and page over these columns.
type UserStat struct {
	UserAddr                string `gorm:"column:user_addr;primaryKey"`
	CreateTimestamp         int64  `gorm:"column:create_timestamp"`
	LastUpdateTimestamp     int64  `gorm:"column:last_update_timestamp"`
	BountyCreated           int64  `gorm:"column:bounty_created"`
	APTSpent                int64  `gorm:"column:apt_spent"`
	StableSpent             int64  `gorm:"column:stable_spent"`
	BuildCreated            int64  `gorm:"column:build_created"`
	BuildSubmittedForReview int64  `gorm:"column:build_submitted_for_review"`
	BuildCanceled           int64  `gorm:"column:build_canceled"`
	BuildCompleted          int64  `gorm:"column:build_completed"`
	APTReceived             int64  `gorm:"column:apt_received"`
	StableReceived          int64  `gorm:"column:stable_received"`
	Season1Points           int64  `gorm:"column:season_1_points"`
	TotalPoints             int64  `gorm:"column:total_points"`
}

func (UserStat) TableName() string {
	return "user_stats"
}

// MirrorVersion orders mirror rows for the same user address. user_stats has
// no per-event index column; the update timestamp alone orders it.
func (u *UserStat) MirrorVersion() querycache.Version {
	return querycache.Version{Timestamp: u.LastUpdateTimestamp}
}
