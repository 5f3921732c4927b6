package errors

import (
	"encoding/json"
	"fmt"
)

type AppError struct {
	Code    int    // Domain error code
	Message string // User-facing message
	Err     error  // Underlying error (optional)
}

const (
	ErrInvalidToken       = 1001
	ErrAuctionNotFound    = 1002
	ErrBidTooLow          = 1003
	ErrAuctionEnded       = 1004
	ErrWebSocketUpgrade   = 1005
	ErrBadMessageFormat   = 1006
	ErrUnknownMessageType = 1007

	ErrAuctionNotStarted = 1010
	ErrAuctionNotEnded   = 1011
	ErrAlreadySettled    = 1012
	ErrReserveTooLow     = 1013
	ErrSlotTaken         = 1014
	ErrNotEscrowed       = 1015
	ErrSlotConsumed      = 1016
	ErrUnauthorized      = 1017
	ErrOverflow          = 1018
	ErrDateInPast        = 1019
	ErrAssetMismatch     = 1020
	ErrSellerMismatch    = 1021
	ErrBidderMismatch    = 1022
	ErrSlotNotFound      = 1023

	ErrInternalServer = 500
)

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ToJSON renders the error as a websocket error payload.
func (e *AppError) ToJSON() string {
	payload := map[string]interface{}{
		"type":    "error",
		"code":    e.Code,
		"message": e.Message,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return `{"type":"error","message":"internal error"}`
	}
	return string(b)
}

// Wrapping utility
func Wrap(err error, message string) *AppError {
	return &AppError{Message: message, Err: err}
}

// Error creation utility
func New(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Is reports whether err carries the given domain code anywhere in its chain.
func Is(err error, code int) bool {
	for err != nil {
		if app, ok := err.(*AppError); ok && app.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
