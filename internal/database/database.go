package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/joho/godotenv/autoload"

	"github.com/commiegod/commoners-auction/configs"
	"github.com/commiegod/commoners-auction/internal/ledger"
	"github.com/commiegod/commoners-auction/pkg/types"
)

// Service represents a service that interacts with a database.
type Service interface {
	// Health returns a map of health status information.
	// The keys and values in the map are service-specific.
	Health() map[string]string

	// Close terminates the database connection.
	// It returns an error if the connection cannot be closed.
	Close() error

	// USER METHODS
	GetUserByEmail(email string) (types.User, error)

	// SLOT METHODS
	GetSlot(assetID string, scheduledDate time.Time) (types.Slot, error)

	// AUCTION METHODS
	GetCurrentAuctions() ([]types.Auction, error)
	GetAuctionByID(auctionID uint64) (types.Auction, error)
	GetBidsByAuctionID(auctionID uint64) ([]types.Bid, error)

	// PARAMS METHODS
	GetParams() (types.Params, error)
	SaveParams(params types.Params) error

	// TRANSACTION METHODS
	BeginTx(ctx context.Context) (*sql.Tx, error)
	GetSlotTx(ctx context.Context, tx *sql.Tx, assetID string, scheduledDate time.Time) (types.Slot, error)
	GetSlotForDateTx(ctx context.Context, tx *sql.Tx, scheduledDate time.Time) (types.Slot, error)
	CreateSlotTx(ctx context.Context, tx *sql.Tx, slot types.Slot) error
	UpdateSlotTx(ctx context.Context, tx *sql.Tx, slot types.Slot) error
	GetAuctionTx(ctx context.Context, tx *sql.Tx, auctionID uint64) (types.Auction, error)
	GetEndedUnsettledAuctionTx(ctx context.Context, tx *sql.Tx, now time.Time) (types.Auction, error)
	MaxAuctionIDTx(ctx context.Context, tx *sql.Tx) (uint64, error)
	CreateAuctionTx(ctx context.Context, tx *sql.Tx, auction types.Auction) error
	UpdateAuctionTx(ctx context.Context, tx *sql.Tx, auction types.Auction) (types.Auction, error)
	CreateBidTx(ctx context.Context, tx *sql.Tx, bid types.Bid) (types.Bid, error)

	// LEDGER METHODS
	// Funds and custody are scoped to a transaction so record updates and
	// transfers commit or roll back together.
	FundsTx(ctx context.Context, tx *sql.Tx) ledger.FundsLedger
	CustodyTx(ctx context.Context, tx *sql.Tx) ledger.AssetCustody
	CreditAccount(account string, amount uint64) error
	DepositAsset(assetID, holder string) error
}

type service struct {
	db *sql.DB
}

var dbInstance *service

func New(cfg *configs.Config) Service {
	// Reuse Connection
	if dbInstance != nil {
		return dbInstance
	}
	dbConfig := cfg.Database
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbConfig.User,
		dbConfig.Password,
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.Name,
		dbConfig.SSLMode,
	)
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		log.Fatal(err)
	}

	if err := migrate(db); err != nil {
		log.Fatal("Error with migration: ", err)
	}

	dbInstance = &service{
		db: db,
	}
	return dbInstance
}

// NewWithDB wraps an existing connection. Used by integration tests.
func NewWithDB(db *sql.DB) Service {
	if err := migrate(db); err != nil {
		log.Fatal("Error with migration: ", err)
	}
	return &service{db: db}
}

// Health checks the health of the database connection by pinging the database.
// It returns a map with keys indicating various health statistics.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	// Ping the database
	err := s.db.PingContext(ctx)
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		log.Fatalf("db down: %v", err) // Log the error and terminate the program
		return stats
	}

	// Database is up, add more statistics
	stats["status"] = "up"
	stats["message"] = "It's healthy"

	// Get database stats (like open connections, in use, idle, etc.)
	dbStats := s.db.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()
	stats["max_idle_closed"] = strconv.FormatInt(dbStats.MaxIdleClosed, 10)
	stats["max_lifetime_closed"] = strconv.FormatInt(dbStats.MaxLifetimeClosed, 10)

	// Evaluate stats to provide a health message
	if dbStats.OpenConnections > 40 { // Assuming 50 is the max for this example
		stats["message"] = "The database is experiencing heavy load."
	}

	if dbStats.WaitCount > 1000 {
		stats["message"] = "The database has a high number of wait events, indicating potential bottlenecks."
	}

	return stats
}

// Close closes the database connection.
func (s *service) Close() error {
	log.Info("Disconnected from database")
	return s.db.Close()
}

func (s *service) GetUserByEmail(email string) (types.User, error) {
	var user types.User
	err := s.db.QueryRow(`SELECT id, name, email, role FROM users WHERE email = $1`, email).
		Scan(&user.ID, &user.Name, &user.Email, &user.Role)
	if err != nil {
		return types.User{}, fmt.Errorf("error getting user by email: %w", err)
	}
	return user, nil
}

// BeginTx starts a serializable transaction. Every auction operation runs in
// one of these so concurrent bids are totally ordered by the database.
func (s *service) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	return tx, nil
}
