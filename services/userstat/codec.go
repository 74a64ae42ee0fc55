package userstat

import (
	"bountyboard/pkg/rowcodec"
)

// DecodeRow turns a raw mirror row into a typed UserStat. Every counter is
// parsed exactly; a non-integer value fails the row.
func DecodeRow(row map[string]any) (*UserStat, error) {
	u := &UserStat{}
	var err error
	if u.UserAddr, err = rowcodec.String(row, "user_addr"); err != nil {
		return nil, err
	}
	if u.CreateTimestamp, err = rowcodec.Int64(row, "create_timestamp"); err != nil {
		return nil, err
	}
	if u.LastUpdateTimestamp, err = rowcodec.Int64(row, "last_update_timestamp"); err != nil {
		return nil, err
	}
	if u.BountyCreated, err = rowcodec.Int64(row, "bounty_created"); err != nil {
		return nil, err
	}
	if u.APTSpent, err = rowcodec.Int64(row, "apt_spent"); err != nil {
		return nil, err
	}
	if u.StableSpent, err = rowcodec.Int64(row, "stable_spent"); err != nil {
		return nil, err
	}
	if u.BuildCreated, err = rowcodec.Int64(row, "build_created"); err != nil {
		return nil, err
	}
	if u.BuildSubmittedForReview, err = rowcodec.Int64(row, "build_submitted_for_review"); err != nil {
		return nil, err
	}
	if u.BuildCanceled, err = rowcodec.Int64(row, "build_canceled"); err != nil {
		return nil, err
	}
	if u.BuildCompleted, err = rowcodec.Int64(row, "build_completed"); err != nil {
		return nil, err
	}
	if u.APTReceived, err = rowcodec.Int64(row, "apt_received"); err != nil {
		return nil, err
	}
	if u.StableReceived, err = rowcodec.Int64(row, "stable_received"); err != nil {
		return nil, err
	}
	if u.Season1Points, err = rowcodec.Int64(row, "season_1_points"); err != nil {
		return nil, err
	}
	if u.TotalPoints, err = rowcodec.Int64(row, "total_points"); err != nil {
		return nil, err
	}
	return u, nil
}
