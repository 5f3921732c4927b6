package websocket

import (
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/commiegod/commoners-auction/internal/auth"
	"github.com/commiegod/commoners-auction/internal/database"
	"github.com/commiegod/commoners-auction/internal/ledger"
	"github.com/commiegod/commoners-auction/pkg/types"
)

type AuctionHandler struct {
	db     database.Service // Injected dependency
	clock  ledger.Clock
	oracle ledger.BalanceOracle

	connectedClients sync.Map // Track all connected clients
}

func NewAuctionWebSocketHandler(db database.Service) *AuctionHandler {
	return &AuctionHandler{
		db:     db,
		clock:  ledger.SystemClock{},
		oracle: ledger.ZeroBalanceOracle{},
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleAuctions upgrades the HTTP request to a WebSocket connection.
func (h *AuctionHandler) handleAuctions(w http.ResponseWriter, r *http.Request, user types.User) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Infof("Failed to upgrade connection: %v", err)
		http.Error(w, "Failed to establish connection", http.StatusInternalServerError)
		return
	}

	// Initialize a new client
	client := &Client{
		ID:          user.ID,
		Email:       user.Email,
		Role:        user.Role,
		Conn:        conn,
		Send:        make(chan []byte),
		RateLimiter: rate.NewLimiter(1, 3),
	}

	h.connectedClients.Store(client, true)

	// Start handling the client
	go client.ReadMessages(h)
	go client.WriteMessages()
}

// HandleAuctions integrates authentication and WebSocket handling.
func (h *AuctionHandler) HandleAuctions(w http.ResponseWriter, r *http.Request) {
	// Validate the token from the cookie
	token, err := auth.ValidateTokenFromCookie(r)
	if err != nil || token == nil {
		log.Error("Invalid token: ", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var email string
	err = token.Get("email", &email)
	if err != nil {
		log.Error("Error retrieving email from token claims")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// Check if the user exists
	user, err := h.db.GetUserByEmail(email)
	if err != nil {
		log.Error("User not found: ", err)
		http.Error(w, "User not found", http.StatusUnauthorized)
		return
	}

	// Pass to WebSocket handler
	h.handleAuctions(w, r, user)
}

// Broadcast sends a message to all connected clients.
func (h *AuctionHandler) Broadcast(message []byte) {
	h.connectedClients.Range(func(key, _ any) bool {
		client := key.(*Client)
		select {
		case client.Send <- message:
		default:
			// Remove disconnected clients
			h.connectedClients.Delete(client)
			client.Disconnect(nil)
		}
		return true
	})
}
