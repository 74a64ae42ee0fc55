package build

import (
	"strconv"

	"bountyboard/pkg/rowcodec"
)

// DecodeRow turns a raw mirror row into a typed Build, parsing numeric
// columns exactly.
func DecodeRow(row map[string]any) (*Build, error) {
	b := &Build{}
	var err error
	if b.BuildObjAddr, err = rowcodec.String(row, "build_obj_addr"); err != nil {
		return nil, err
	}
	if b.BountyObjAddr, err = rowcodec.String(row, "bounty_obj_addr"); err != nil {
		return nil, err
	}
	if b.CreatorAddr, err = rowcodec.String(row, "creator_addr"); err != nil {
		return nil, err
	}
	if b.PaymentRecipientAddr, err = rowcodec.String(row, "payment_recipient_addr"); err != nil {
		return nil, err
	}
	if b.PaymentAmount, err = rowcodec.Int64(row, "payment_amount"); err != nil {
		return nil, err
	}
	if b.CreateTimestamp, err = rowcodec.Int64(row, "create_timestamp"); err != nil {
		return nil, err
	}
	if b.LastUpdateTimestamp, err = rowcodec.Int64(row, "last_update_timestamp"); err != nil {
		return nil, err
	}
	if b.ProofLink, err = rowcodec.String(row, "proof_link"); err != nil {
		return nil, err
	}
	if b.BuildStatus, err = rowcodec.Int64(row, "build_status"); err != nil {
		return nil, err
	}
	if b.LastUpdateEventIdx, err = rowcodec.Int64(row, "last_update_event_idx"); err != nil {
		return nil, err
	}
	return b, nil
}

// EncodeRow renders the build back into the mirror's loosely typed row
// shape, the payment as a decimal string the way the pipeline writes it.
func EncodeRow(b *Build) map[string]any {
	return map[string]any{
		"build_obj_addr":         b.BuildObjAddr,
		"bounty_obj_addr":        b.BountyObjAddr,
		"creator_addr":           b.CreatorAddr,
		"payment_recipient_addr": b.PaymentRecipientAddr,
		"payment_amount":         strconv.FormatInt(b.PaymentAmount, 10),
		"create_timestamp":       b.CreateTimestamp,
		"last_update_timestamp":  b.LastUpdateTimestamp,
		"proof_link":             b.ProofLink,
		"build_status":           b.BuildStatus,
		"last_update_event_idx":  b.LastUpdateEventIdx,
	}
}
