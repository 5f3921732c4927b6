package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/commiegod/commoners-auction/internal/auction"
	"github.com/commiegod/commoners-auction/internal/auth"
	"github.com/commiegod/commoners-auction/pkg/errors"
	"github.com/commiegod/commoners-auction/pkg/types"
	"github.com/commiegod/commoners-auction/pkg/utils"
)

type Message struct {
	Type string `json:"type"` // Type of the message (e.g., "bid", "reserve_slot")
	Data string `json:"data"` // Payload of the message
}

// ParseMessage validates and parses incoming messages.
func ParseMessage(rawMessage []byte) (*Message, error) {
	var msg Message
	err := json.Unmarshal(rawMessage, &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// HandleMessage routes the message based on its type.
func (h *AuctionHandler) HandleMessage(client *Client, rawMessage []byte) {
	if !client.RateLimiter.Allow() {
		log.Warnf("Rate limit exceeded for client %s", client.ID)
		client.Send <- []byte(`{"type": "error", "message": "Rate limit exceeded"}`)
		return
	}

	msg, err := ParseMessage(rawMessage)
	if err != nil {
		log.Infof("Invalid message from client %s: %v", client.ID, err)
		client.Send <- []byte(errors.New(errors.ErrBadMessageFormat, "Invalid message format").ToJSON())
		return
	}

	switch msg.Type {
	case "join":
		log.Debug("Client joined the auction")
	case "bid":
		h.handleBidMessage(client, msg.Data)
	case "reserve_slot":
		h.handleReserveSlotMessage(client, msg.Data)
	case "update_params":
		h.handleUpdateParamsMessage(client, msg.Data)
	case "state":
		h.handleStateMessage(client)
	default:
		log.Printf("Unknown message type: %s", msg.Type)
		client.Send <- []byte(errors.New(errors.ErrUnknownMessageType, "Unknown message type").ToJSON())
	}
}

// sendError reports an operation failure back to the offending client only.
func sendError(client *Client, err error) {
	if app, ok := err.(*errors.AppError); ok {
		client.Send <- []byte(app.ToJSON())
		return
	}
	client.Send <- []byte(errors.New(errors.ErrInternalServer, "Internal server error").ToJSON())
}

// handleBidMessage runs a bid as one serializable transaction: lock the
// auction row, re-validate against the committed state, refund the previous
// bidder, move the new bid into the vault, and persist the updated record.
func (h *AuctionHandler) handleBidMessage(client *Client, data string) {
	type BidMessage struct {
		AuctionID uint64 `json:"auction_id"`
		Amount    uint64 `json:"amount"`
	}
	var bidMsg BidMessage

	if err := json.Unmarshal([]byte(data), &bidMsg); err != nil {
		client.Send <- []byte(errors.New(errors.ErrBadMessageFormat, "Invalid bid message").ToJSON())
		return
	}

	params, err := h.db.GetParams()
	if err != nil {
		log.Error("Error loading params: ", err)
		sendError(client, err)
		return
	}

	ctx := context.Background()
	tx, err := h.db.BeginTx(ctx)
	if err != nil {
		log.Error("Error starting transaction: ", err)
		sendError(client, err)
		return
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	a, err := h.db.GetAuctionTx(ctx, tx, bidMsg.AuctionID)
	if err != nil {
		log.Error("Error retrieving auction: ", err)
		sendError(client, err)
		return
	}

	now := h.clock.Now()
	err = auction.PlaceBid(&a, h.db.FundsTx(ctx, tx), &params, client.ID, bidMsg.Amount, now)
	if err != nil {
		sendError(client, err)
		return
	}

	a, err = h.db.UpdateAuctionTx(ctx, tx, a)
	if err != nil {
		log.Error("Error updating auction: ", err)
		sendError(client, err)
		return
	}

	bid := types.Bid{
		ID:        uuid.NewString(),
		AuctionID: a.AuctionID,
		UserID:    client.ID,
		Amount:    bidMsg.Amount,
		CreatedAt: now,
	}
	if _, err = h.db.CreateBidTx(ctx, tx, bid); err != nil {
		log.Error("Error creating bid: ", err)
		sendError(client, err)
		return
	}

	// The commit is the accept point: a racing bid loses here with a
	// serialization failure, and nothing has been announced yet.
	if err = tx.Commit(); err != nil {
		log.Error("Error committing bid: ", err)
		sendError(client, err)
		return
	}

	// Broadcast the accepted bid with the (possibly extended) end time.
	payload, marshalErr := json.Marshal(map[string]interface{}{
		"auction_id": a.AuctionID,
		"amount":     a.CurrentBid,
		"bidder":     client.ID,
		"end_time":   a.EndTime,
	})
	if marshalErr != nil {
		log.Error("Error marshalling bid payload: ", marshalErr)
		return
	}
	rawMessage, marshalErr := json.Marshal(&Message{Type: "bid", Data: string(payload)})
	if marshalErr != nil {
		log.Error("Error marshalling bid message: ", marshalErr)
		return
	}
	h.Broadcast(rawMessage)
}

// handleReserveSlotMessage locks the caller's asset into escrow and records
// their claim on a future auction day. The deposit and the registration row
// commit atomically; a duplicate (asset, date) registration rolls both back.
func (h *AuctionHandler) handleReserveSlotMessage(client *Client, data string) {
	type ReserveMessage struct {
		AssetID       string `json:"asset_id"`
		ScheduledDate int64  `json:"scheduled_date"` // unix seconds
		ReservePrice  uint64 `json:"reserve_price"`
	}
	var msg ReserveMessage

	if err := json.Unmarshal([]byte(data), &msg); err != nil {
		client.Send <- []byte(errors.New(errors.ErrBadMessageFormat, "Invalid reserve message").ToJSON())
		return
	}

	params, err := h.db.GetParams()
	if err != nil {
		log.Error("Error loading params: ", err)
		sendError(client, err)
		return
	}

	scheduledDate := utils.StartOfDay(time.Unix(msg.ScheduledDate, 0).UTC())
	now := h.clock.Now()

	ctx := context.Background()
	tx, err := h.db.BeginTx(ctx)
	if err != nil {
		log.Error("Error starting transaction: ", err)
		sendError(client, err)
		return
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	slot, err := auction.ReserveSlot(
		h.db.CustodyTx(ctx, tx), &params,
		msg.AssetID, client.ID, scheduledDate, msg.ReservePrice, now,
	)
	if err != nil {
		sendError(client, err)
		return
	}

	if err = h.db.CreateSlotTx(ctx, tx, *slot); err != nil {
		sendError(client, err)
		return
	}

	if err = tx.Commit(); err != nil {
		log.Error("Error committing slot registration: ", err)
		sendError(client, err)
		return
	}

	payload, _ := json.Marshal(slot)
	client.Send <- []byte(`{"type": "slot_reserved", "data": ` + string(payload) + `}`)
	log.Infof("Slot registered: asset=%s owner=%s date=%s", slot.AssetID, slot.Owner, slot.ScheduledDate)
}

// handleUpdateParamsMessage applies a partial parameter update. Admin only.
func (h *AuctionHandler) handleUpdateParamsMessage(client *Client, data string) {
	if err := auth.RequireAdmin(client.Role); err != nil {
		sendError(client, err)
		return
	}

	var update types.ParamsUpdate
	if err := json.Unmarshal([]byte(data), &update); err != nil {
		client.Send <- []byte(errors.New(errors.ErrBadMessageFormat, "Invalid params update").ToJSON())
		return
	}

	params, err := h.db.GetParams()
	if err != nil {
		log.Error("Error loading params: ", err)
		sendError(client, err)
		return
	}

	if err := auction.ApplyParamsUpdate(&params, client.ID, update); err != nil {
		sendError(client, err)
		return
	}

	if err := h.db.SaveParams(params); err != nil {
		log.Error("Error saving params: ", err)
		sendError(client, err)
		return
	}

	log.Info("Auction params updated", "admin", client.ID)
	client.Send <- []byte(`{"type": "params_updated"}`)
}

// handleStateMessage sends the latest auctions to the requesting client.
func (h *AuctionHandler) handleStateMessage(client *Client) {
	auctions, err := h.db.GetCurrentAuctions()
	if err != nil {
		log.Error("Error retrieving auctions: ", err)
		sendError(client, err)
		return
	}

	payload, err := json.Marshal(auctions)
	if err != nil {
		log.Error("Error marshalling auctions: ", err)
		return
	}
	rawMessage, err := json.Marshal(&Message{Type: "state", Data: string(payload)})
	if err != nil {
		log.Error("Error marshalling state message: ", err)
		return
	}
	client.Send <- rawMessage
}
