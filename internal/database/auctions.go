package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/commiegod/commoners-auction/pkg/errors"
	"github.com/commiegod/commoners-auction/pkg/types"
)

const auctionColumns = `auction_id, asset_id, seller_id, reserve_price, start_time, end_time,
	current_bid, current_bidder_id, fee_bps, settled, reserve_met, bidders_count, created_at, updated_at`

func scanAuction(row *sql.Row) (types.Auction, error) {
	var a types.Auction
	var auctionID, reservePrice, currentBid int64
	var feeBps int
	var bidder sql.NullString

	err := row.Scan(
		&auctionID,
		&a.AssetID,
		&a.Seller,
		&reservePrice,
		&a.StartTime,
		&a.EndTime,
		&currentBid,
		&bidder,
		&feeBps,
		&a.Settled,
		&a.ReserveMet,
		&a.BiddersCount,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return types.Auction{}, err
	}

	a.AuctionID = uint64(auctionID)
	a.ReservePrice = uint64(reservePrice)
	a.CurrentBid = uint64(currentBid)
	a.FeeBps = uint16(feeBps)
	if bidder.Valid {
		a.CurrentBidderID = &bidder.String
	}
	return a, nil
}

func (s *service) GetSlot(assetID string, scheduledDate time.Time) (types.Slot, error) {
	var slot types.Slot
	var reservePrice int64
	query := `SELECT asset_id, owner_id, scheduled_date, reserve_price, escrowed, consumed, created_at
		FROM slots WHERE asset_id = $1 AND scheduled_date = $2`
	err := s.db.QueryRow(query, assetID, scheduledDate).Scan(
		&slot.AssetID, &slot.Owner, &slot.ScheduledDate, &reservePrice,
		&slot.Escrowed, &slot.Consumed, &slot.CreatedAt,
	)
	if err != nil {
		return types.Slot{}, fmt.Errorf("error getting slot: %w", err)
	}
	slot.ReservePrice = uint64(reservePrice)
	return slot, nil
}

func (s *service) GetSlotTx(ctx context.Context, tx *sql.Tx, assetID string, scheduledDate time.Time) (types.Slot, error) {
	var slot types.Slot
	var reservePrice int64
	query := `SELECT asset_id, owner_id, scheduled_date, reserve_price, escrowed, consumed, created_at
		FROM slots WHERE asset_id = $1 AND scheduled_date = $2 FOR UPDATE`
	err := tx.QueryRowContext(ctx, query, assetID, scheduledDate).Scan(
		&slot.AssetID, &slot.Owner, &slot.ScheduledDate, &reservePrice,
		&slot.Escrowed, &slot.Consumed, &slot.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return types.Slot{}, errors.New(errors.ErrSlotNotFound, "slot not found")
	}
	if err != nil {
		return types.Slot{}, fmt.Errorf("error getting slot in tx: %w", err)
	}
	slot.ReservePrice = uint64(reservePrice)
	return slot, nil
}

// GetSlotForDateTx finds the unconsumed slot scheduled for the given day.
func (s *service) GetSlotForDateTx(ctx context.Context, tx *sql.Tx, scheduledDate time.Time) (types.Slot, error) {
	var slot types.Slot
	var reservePrice int64
	query := `SELECT asset_id, owner_id, scheduled_date, reserve_price, escrowed, consumed, created_at
		FROM slots WHERE scheduled_date = $1 AND consumed = FALSE ORDER BY created_at ASC LIMIT 1 FOR UPDATE`
	err := tx.QueryRowContext(ctx, query, scheduledDate).Scan(
		&slot.AssetID, &slot.Owner, &slot.ScheduledDate, &reservePrice,
		&slot.Escrowed, &slot.Consumed, &slot.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return types.Slot{}, errors.New(errors.ErrSlotNotFound, "no slot scheduled for date")
	}
	if err != nil {
		return types.Slot{}, fmt.Errorf("error getting slot for date in tx: %w", err)
	}
	slot.ReservePrice = uint64(reservePrice)
	return slot, nil
}

func (s *service) CreateSlotTx(ctx context.Context, tx *sql.Tx, slot types.Slot) error {
	reserve, err := storableAmount(slot.ReservePrice)
	if err != nil {
		return err
	}
	query := `INSERT INTO slots (asset_id, owner_id, scheduled_date, reserve_price, escrowed, consumed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (asset_id, scheduled_date) DO NOTHING`
	res, err := tx.ExecContext(ctx, query,
		slot.AssetID, slot.Owner, slot.ScheduledDate, reserve,
		slot.Escrowed, slot.Consumed, slot.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "error creating slot")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "error creating slot")
	}
	if rows == 0 {
		return errors.New(errors.ErrSlotTaken, "slot is already taken for this date")
	}
	return nil
}

func (s *service) UpdateSlotTx(ctx context.Context, tx *sql.Tx, slot types.Slot) error {
	query := `UPDATE slots SET escrowed = $1, consumed = $2
		WHERE asset_id = $3 AND scheduled_date = $4`
	_, err := tx.ExecContext(ctx, query, slot.Escrowed, slot.Consumed, slot.AssetID, slot.ScheduledDate)
	if err != nil {
		return errors.Wrap(err, "error updating slot")
	}
	return nil
}

func (s *service) GetAuctionByID(auctionID uint64) (types.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE auction_id = $1`
	a, err := scanAuction(s.db.QueryRow(query, int64(auctionID)))
	if err != nil {
		return types.Auction{}, fmt.Errorf("error getting auction by id: %w", err)
	}
	return a, nil
}

func (s *service) GetCurrentAuctions() ([]types.Auction, error) {
	var auctions []types.Auction
	query := `SELECT ` + auctionColumns + ` FROM auctions ORDER BY auction_id DESC LIMIT 10`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error getting current auctions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a types.Auction
		var auctionID, reservePrice, currentBid int64
		var feeBps int
		var bidder sql.NullString
		err := rows.Scan(
			&auctionID, &a.AssetID, &a.Seller, &reservePrice, &a.StartTime, &a.EndTime,
			&currentBid, &bidder, &feeBps, &a.Settled, &a.ReserveMet, &a.BiddersCount,
			&a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning auction: %w", err)
		}
		a.AuctionID = uint64(auctionID)
		a.ReservePrice = uint64(reservePrice)
		a.CurrentBid = uint64(currentBid)
		a.FeeBps = uint16(feeBps)
		if bidder.Valid {
			a.CurrentBidderID = &bidder.String
		}
		auctions = append(auctions, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over auctions: %w", err)
	}

	return auctions, nil
}

// GetAuctionTx locks the auction row for the rest of the transaction. Bids
// racing on the same auction serialize here; the loser re-reads committed
// state and is re-validated against the fresh minimum.
func (s *service) GetAuctionTx(ctx context.Context, tx *sql.Tx, auctionID uint64) (types.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE auction_id = $1 FOR UPDATE`
	a, err := scanAuction(tx.QueryRowContext(ctx, query, int64(auctionID)))
	if err == sql.ErrNoRows {
		return types.Auction{}, errors.New(errors.ErrAuctionNotFound, "auction not found")
	}
	if err != nil {
		return types.Auction{}, fmt.Errorf("error getting auction in tx: %w", err)
	}
	return a, nil
}

func (s *service) GetEndedUnsettledAuctionTx(ctx context.Context, tx *sql.Tx, now time.Time) (types.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions
		WHERE settled = FALSE AND end_time <= $1 ORDER BY auction_id ASC LIMIT 1 FOR UPDATE`
	a, err := scanAuction(tx.QueryRowContext(ctx, query, now))
	if err == sql.ErrNoRows {
		return types.Auction{}, errors.New(errors.ErrAuctionNotFound, "no ended unsettled auction")
	}
	if err != nil {
		return types.Auction{}, fmt.Errorf("error getting ended auction in tx: %w", err)
	}
	return a, nil
}

func (s *service) MaxAuctionIDTx(ctx context.Context, tx *sql.Tx) (uint64, error) {
	var max sql.NullInt64
	err := tx.QueryRowContext(ctx, `SELECT MAX(auction_id) FROM auctions`).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("error getting max auction id: %w", err)
	}
	if !max.Valid {
		return 0, nil
	}
	return uint64(max.Int64), nil
}

func (s *service) CreateAuctionTx(ctx context.Context, tx *sql.Tx, a types.Auction) error {
	reserve, err := storableAmount(a.ReservePrice)
	if err != nil {
		return err
	}
	currentBid, err := storableAmount(a.CurrentBid)
	if err != nil {
		return err
	}
	query := `INSERT INTO auctions (auction_id, asset_id, seller_id, reserve_price, start_time, end_time,
		current_bid, current_bidder_id, fee_bps, settled, reserve_met, bidders_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err = tx.ExecContext(ctx, query,
		int64(a.AuctionID), a.AssetID, a.Seller, reserve, a.StartTime, a.EndTime,
		currentBid, a.CurrentBidderID, int(a.FeeBps), a.Settled, a.ReserveMet,
		a.BiddersCount, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "error creating auction")
	}
	return nil
}

func (s *service) UpdateAuctionTx(ctx context.Context, tx *sql.Tx, a types.Auction) (types.Auction, error) {
	currentBid, err := storableAmount(a.CurrentBid)
	if err != nil {
		return types.Auction{}, err
	}
	query := `UPDATE auctions
		SET current_bid = $1, current_bidder_id = $2, end_time = $3, settled = $4,
			reserve_met = $5, bidders_count = $6, updated_at = $7
		WHERE auction_id = $8
		RETURNING ` + auctionColumns
	updated, err := scanAuction(tx.QueryRowContext(ctx, query,
		currentBid, a.CurrentBidderID, a.EndTime, a.Settled,
		a.ReserveMet, a.BiddersCount, a.UpdatedAt, int64(a.AuctionID),
	))
	if err != nil {
		return types.Auction{}, fmt.Errorf("error updating auction in tx: %w", err)
	}

	log.Debugf("Auction %d updated with bid: %v", updated.AuctionID, updated.CurrentBid)

	return updated, nil
}

// CreateBidTx records a bid audit row within a transaction.
func (s *service) CreateBidTx(ctx context.Context, tx *sql.Tx, bid types.Bid) (types.Bid, error) {
	var returned types.Bid
	var auctionID, amount int64
	bidAmount, err := storableAmount(bid.Amount)
	if err != nil {
		return types.Bid{}, err
	}
	query := `INSERT INTO bids (id, auction_id, user_id, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, auction_id, user_id, amount, created_at`
	err = tx.QueryRowContext(ctx, query, bid.ID, int64(bid.AuctionID), bid.UserID, bidAmount, bid.CreatedAt).Scan(
		&returned.ID, &auctionID, &returned.UserID, &amount, &returned.CreatedAt,
	)
	if err != nil {
		return types.Bid{}, fmt.Errorf("error creating bid in tx: %w", err)
	}
	returned.AuctionID = uint64(auctionID)
	returned.Amount = uint64(amount)
	return returned, nil
}

func (s *service) GetBidsByAuctionID(auctionID uint64) ([]types.Bid, error) {
	var bids []types.Bid
	query := `SELECT id, auction_id, user_id, amount, created_at FROM bids
		WHERE auction_id = $1 ORDER BY created_at ASC`
	rows, err := s.db.Query(query, int64(auctionID))
	if err != nil {
		return nil, fmt.Errorf("error getting bids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bid types.Bid
		var id, amount int64
		if err := rows.Scan(&bid.ID, &id, &bid.UserID, &amount, &bid.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning bid: %w", err)
		}
		bid.AuctionID = uint64(id)
		bid.Amount = uint64(amount)
		bids = append(bids, bid)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over bids: %w", err)
	}

	return bids, nil
}
