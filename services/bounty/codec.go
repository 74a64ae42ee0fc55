package bounty

import (
	"strconv"

	"bountyboard/pkg/rowcodec"
)

// DecodeRow turns a raw mirror row into a typed Bounty. Numeric columns go
// through exact integer parsing; a value that cannot be represented as int64
// fails the whole row rather than being silently truncated.
func DecodeRow(row map[string]any) (*Bounty, error) {
	b := &Bounty{}
	var err error
	if b.BountyObjAddr, err = rowcodec.String(row, "bounty_obj_addr"); err != nil {
		return nil, err
	}
	if b.CreatorAddr, err = rowcodec.String(row, "creator_addr"); err != nil {
		return nil, err
	}
	if b.CreateTimestamp, err = rowcodec.Int64(row, "create_timestamp"); err != nil {
		return nil, err
	}
	if b.EndTimestamp, err = rowcodec.Int64(row, "end_timestamp"); err != nil {
		return nil, err
	}
	if b.LastUpdateTimestamp, err = rowcodec.Int64(row, "last_update_timestamp"); err != nil {
		return nil, err
	}
	if b.Title, err = rowcodec.String(row, "title"); err != nil {
		return nil, err
	}
	if b.DescriptionLink, err = rowcodec.String(row, "description_link"); err != nil {
		return nil, err
	}
	if b.PaymentMetadataObjAddr, err = rowcodec.String(row, "payment_metadata_obj_addr"); err != nil {
		return nil, err
	}
	if b.PaymentPerWinner, err = rowcodec.Int64(row, "payment_per_winner"); err != nil {
		return nil, err
	}
	if b.StakeRequired, err = rowcodec.Int64(row, "stake_required"); err != nil {
		return nil, err
	}
	if b.StakeLockupInSeconds, err = rowcodec.Int64(row, "stake_lockup_in_seconds"); err != nil {
		return nil, err
	}
	if b.WinnerCount, err = rowcodec.Int64(row, "winner_count"); err != nil {
		return nil, err
	}
	if b.WinnerLimit, err = rowcodec.Int64(row, "winner_limit"); err != nil {
		return nil, err
	}
	if b.TotalPayment, err = rowcodec.Int64(row, "total_payment"); err != nil {
		return nil, err
	}
	if b.ContactInfo, err = rowcodec.String(row, "contact_info"); err != nil {
		return nil, err
	}
	if b.LastUpdateEventIdx, err = rowcodec.Int64(row, "last_update_event_idx"); err != nil {
		return nil, err
	}
	return b, nil
}

// EncodeRow renders the bounty back into the mirror's loosely typed row
// shape, amounts as decimal strings the way the pipeline writes them.
func EncodeRow(b *Bounty) map[string]any {
	return map[string]any{
		"bounty_obj_addr":           b.BountyObjAddr,
		"creator_addr":              b.CreatorAddr,
		"create_timestamp":          b.CreateTimestamp,
		"end_timestamp":             strconv.FormatInt(b.EndTimestamp, 10),
		"last_update_timestamp":     b.LastUpdateTimestamp,
		"title":                     b.Title,
		"description_link":          b.DescriptionLink,
		"payment_metadata_obj_addr": b.PaymentMetadataObjAddr,
		"payment_per_winner":        strconv.FormatInt(b.PaymentPerWinner, 10),
		"stake_required":            strconv.FormatInt(b.StakeRequired, 10),
		"stake_lockup_in_seconds":   b.StakeLockupInSeconds,
		"winner_count":              b.WinnerCount,
		"winner_limit":              b.WinnerLimit,
		"total_payment":             strconv.FormatInt(b.TotalPayment, 10),
		"contact_info":              b.ContactInfo,
		"last_update_event_idx":     b.LastUpdateEventIdx,
	}
}
