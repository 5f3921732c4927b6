package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/commiegod/commoners-auction/pkg/types"
)

// GetParams reads the global parameter row. The core reads one consistent
// snapshot per operation and never mutates it.
func (s *service) GetParams() (types.Params, error) {
	var p types.Params
	var minReserve, timeBuffer int64
	var defaultFee, increment int
	var loyaltyToken sql.NullString
	var tiersJSON []byte

	query := `SELECT admin_id, treasury_id, default_fee_bps, bid_increment_bps,
		time_buffer_secs, min_reserve, loyalty_token, discount_tiers FROM params WHERE id = 1`
	err := s.db.QueryRow(query).Scan(
		&p.Admin, &p.Treasury, &defaultFee, &increment,
		&timeBuffer, &minReserve, &loyaltyToken, &tiersJSON,
	)
	if err != nil {
		return types.Params{}, fmt.Errorf("error getting params: %w", err)
	}

	p.DefaultFeeBps = uint16(defaultFee)
	p.BidIncrementBps = uint16(increment)
	p.TimeBufferSecs = timeBuffer
	p.MinReserve = uint64(minReserve)
	if loyaltyToken.Valid {
		p.LoyaltyToken = &loyaltyToken.String
	}

	var tiers []types.DiscountTier
	if err := json.Unmarshal(tiersJSON, &tiers); err != nil {
		return types.Params{}, fmt.Errorf("error decoding discount tiers: %w", err)
	}
	for i := 0; i < len(tiers) && i < types.TierCount; i++ {
		p.DiscountTiers[i] = tiers[i]
	}

	return p, nil
}

// SaveParams upserts the single parameter row.
func (s *service) SaveParams(p types.Params) error {
	tiersJSON, err := json.Marshal(p.DiscountTiers[:])
	if err != nil {
		return fmt.Errorf("error encoding discount tiers: %w", err)
	}

	var loyaltyToken sql.NullString
	if p.LoyaltyToken != nil {
		loyaltyToken = sql.NullString{String: *p.LoyaltyToken, Valid: true}
	}

	query := `INSERT INTO params (id, admin_id, treasury_id, default_fee_bps, bid_increment_bps,
		time_buffer_secs, min_reserve, loyalty_token, discount_tiers)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			admin_id = EXCLUDED.admin_id,
			treasury_id = EXCLUDED.treasury_id,
			default_fee_bps = EXCLUDED.default_fee_bps,
			bid_increment_bps = EXCLUDED.bid_increment_bps,
			time_buffer_secs = EXCLUDED.time_buffer_secs,
			min_reserve = EXCLUDED.min_reserve,
			loyalty_token = EXCLUDED.loyalty_token,
			discount_tiers = EXCLUDED.discount_tiers`
	_, err = s.db.Exec(query,
		p.Admin, p.Treasury, int(p.DefaultFeeBps), int(p.BidIncrementBps),
		p.TimeBufferSecs, int64(p.MinReserve), loyaltyToken, tiersJSON,
	)
	if err != nil {
		return fmt.Errorf("error saving params: %w", err)
	}
	return nil
}
