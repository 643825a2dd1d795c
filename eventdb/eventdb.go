// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"context"
	"database/sql"
	"math/big"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/vechain/stakepool/staker"
	"github.com/vechain/stakepool/thor"
)

var _ staker.EventSink = (*EventDB)(nil)

// EventDB indexes the events committed by the staker.
type EventDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New create or open event db at given path.
func New(path string) (eventDB *EventDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if eventDB == nil {
			db.Close()
		}
	}()
	// a single connection keeps an in-memory db alive across queries
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &EventDB{
		path,
		db,
		driverVer,
	}, nil
}

// NewMem create an event db in ram.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Close close the event db.
func (db *EventDB) Close() error {
	return db.db.Close()
}

func (db *EventDB) Path() string {
	return db.path
}

func (db *EventDB) DriverVersion() string {
	return db.driverVersion
}

// Publish implements staker.EventSink.
func (db *EventDB) Publish(ctx context.Context, events []*staker.Event) error {
	return db.Insert(ctx, events)
}

// Insert appends events in a single transaction.
func (db *EventDB) Insert(ctx context.Context, events []*staker.Event) error {
	if len(events) == 0 {
		return nil
	}
	return db.execInTx(ctx, func(tx *sql.Tx) error {
		for _, ev := range events {
			if _, err := tx.ExecContext(ctx, "INSERT INTO event(kind, account, amount, fee, time) VALUES (?, ?, ?, ?, ?);",
				string(ev.Kind),
				ev.Account.Bytes(),
				amountValue(ev.Amount),
				amountValue(ev.Fee),
				ev.Time,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (db *EventDB) execInTx(ctx context.Context, proc func(*sql.Tx) error) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := proc(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Filter returns the events matching filter, ordered by insertion.
func (db *EventDB) Filter(ctx context.Context, filter *Filter) ([]*Event, error) {
	if filter == nil {
		return db.query(ctx, "SELECT seq, kind, account, amount, fee, time FROM event ORDER BY seq ASC")
	}
	metricsHandleFilter(filter)

	var args []any
	stmt := "SELECT seq, kind, account, amount, fee, time FROM event WHERE 1"
	if filter.Range != nil {
		args = append(args, filter.Range.From)
		stmt += " AND time >= ? "
		if filter.Range.To >= filter.Range.From && filter.Range.To > 0 {
			args = append(args, filter.Range.To)
			stmt += " AND time <= ? "
		}
	}
	if filter.Account != nil {
		args = append(args, filter.Account.Bytes())
		stmt += " AND account = ? "
	}
	if len(filter.Kinds) > 0 {
		stmt += " AND kind IN (" + strings.TrimSuffix(strings.Repeat("?,", len(filter.Kinds)), ",") + ") "
		for _, kind := range filter.Kinds {
			args = append(args, string(kind))
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC "
	} else {
		stmt += " ORDER BY seq ASC "
	}

	if filter.Options != nil {
		stmt += " limit ?, ? "
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.query(ctx, stmt, args...)
}

func (db *EventDB) query(ctx context.Context, stmt string, args ...any) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq     uint64
			kind    string
			account []byte
			amount  []byte
			fee     []byte
			time    uint64
		)
		if err := rows.Scan(
			&seq,
			&kind,
			&account,
			&amount,
			&fee,
			&time,
		); err != nil {
			return nil, err
		}
		ev := &staker.Event{
			Kind:    staker.EventKind(kind),
			Account: thor.BytesToAddress(account),
			Amount:  new(big.Int).SetBytes(amount),
			Time:    time,
		}
		if fee != nil {
			ev.Fee = new(big.Int).SetBytes(fee)
		}
		events = append(events, &Event{Seq: seq, Event: ev})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func amountValue(v *big.Int) []byte {
	if v == nil {
		return nil
	}
	// a zero amount is stored as an empty blob, not NULL
	return append([]byte{}, v.Bytes()...)
}
