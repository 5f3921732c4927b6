package database

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/commiegod/commoners-auction/internal/ledger"
	"github.com/commiegod/commoners-auction/pkg/errors"
)

// storableAmount rejects amounts that do not fit the signed BIGINT columns.
// Without the guard the cast flips sign and the balance CHECK fails opaquely.
func storableAmount(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, errors.New(errors.ErrOverflow, "amount exceeds storable range")
	}
	return int64(v), nil
}

// txFunds is a FundsLedger whose transfers ride the enclosing transaction, so
// a bid's refund, deposit, and record update commit or roll back as one.
type txFunds struct {
	ctx context.Context
	tx  *sql.Tx
}

func (s *service) FundsTx(ctx context.Context, tx *sql.Tx) ledger.FundsLedger {
	return txFunds{ctx: ctx, tx: tx}
}

func (f txFunds) Transfer(amount uint64, from, to string) error {
	amt, err := storableAmount(amount)
	if err != nil {
		return err
	}

	// The balance >= amount predicate makes the debit fail atomically when
	// the source cannot cover the transfer.
	res, err := f.tx.ExecContext(f.ctx,
		`UPDATE accounts SET balance = balance - $1 WHERE id = $2 AND balance >= $1`,
		amt, from,
	)
	if err != nil {
		return fmt.Errorf("error debiting %s: %w", from, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error debiting %s: %w", from, err)
	}
	if rows == 0 {
		return errors.New(errors.ErrInternalServer, "insufficient funds in "+from)
	}

	_, err = f.tx.ExecContext(f.ctx,
		`INSERT INTO accounts (id, balance) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET balance = accounts.balance + EXCLUDED.balance`,
		to, amt,
	)
	if err != nil {
		return fmt.Errorf("error crediting %s: %w", to, err)
	}
	return nil
}

func (f txFunds) Balance(account string) uint64 {
	var balance int64
	err := f.tx.QueryRowContext(f.ctx, `SELECT balance FROM accounts WHERE id = $1`, account).Scan(&balance)
	if err != nil {
		return 0
	}
	return uint64(balance)
}

// txCustody is an AssetCustody bound to the enclosing transaction.
type txCustody struct {
	ctx context.Context
	tx  *sql.Tx
}

func (s *service) CustodyTx(ctx context.Context, tx *sql.Tx) ledger.AssetCustody {
	return txCustody{ctx: ctx, tx: tx}
}

func (c txCustody) Transfer(assetID, from, to string) error {
	res, err := c.tx.ExecContext(c.ctx,
		`UPDATE assets SET holder_id = $1 WHERE asset_id = $2 AND holder_id = $3`,
		to, assetID, from,
	)
	if err != nil {
		return fmt.Errorf("error transferring asset %s: %w", assetID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error transferring asset %s: %w", assetID, err)
	}
	if rows == 0 {
		return errors.New(errors.ErrAssetMismatch, "asset not under "+from)
	}
	return nil
}

func (c txCustody) Holder(assetID string) (string, bool) {
	var holder string
	err := c.tx.QueryRowContext(c.ctx, `SELECT holder_id FROM assets WHERE asset_id = $1`, assetID).Scan(&holder)
	if err != nil {
		return "", false
	}
	return holder, true
}

// CreditAccount funds an account outside any auction operation. Bootstrap and
// test helper mirroring an external deposit.
func (s *service) CreditAccount(account string, amount uint64) error {
	amt, err := storableAmount(amount)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO accounts (id, balance) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET balance = accounts.balance + EXCLUDED.balance`,
		account, amt,
	)
	if err != nil {
		return fmt.Errorf("error crediting account: %w", err)
	}
	return nil
}

// DepositAsset registers an asset under a holder's custody.
func (s *service) DepositAsset(assetID, holder string) error {
	_, err := s.db.Exec(
		`INSERT INTO assets (asset_id, holder_id) VALUES ($1, $2)
		 ON CONFLICT (asset_id) DO UPDATE SET holder_id = EXCLUDED.holder_id`,
		assetID, holder,
	)
	if err != nil {
		return fmt.Errorf("error depositing asset: %w", err)
	}
	return nil
}
