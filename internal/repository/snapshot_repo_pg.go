package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/ledger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS flights (
	id             BIGINT PRIMARY KEY,
	flight_number  TEXT   NOT NULL,
	origin         TEXT   NOT NULL,
	destination    TEXT   NOT NULL,
	departure_date DATE   NOT NULL,
	seats          INT    NOT NULL,
	price          BIGINT NOT NULL,
	UNIQUE (flight_number, departure_date)
);
CREATE TABLE IF NOT EXISTS customers (
	id      BIGINT PRIMARY KEY,
	name    TEXT   NOT NULL,
	phone   TEXT   NOT NULL DEFAULT '',
	email   TEXT   NOT NULL DEFAULT '',
	balance BIGINT NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS bookings (
	id           BIGINT PRIMARY KEY,
	customer_id  BIGINT NOT NULL REFERENCES customers (id) ON DELETE CASCADE,
	flight_id    BIGINT NOT NULL REFERENCES flights (id) ON DELETE CASCADE,
	booking_date DATE   NOT NULL,
	price        BIGINT NOT NULL,
	UNIQUE (customer_id, flight_id)
);
CREATE TABLE IF NOT EXISTS ledger_meta (
	name  TEXT PRIMARY KEY,
	value BIGINT NOT NULL
);`

const lastBookingIDKey = "last_booking_id"

// PGSnapshotStore keeps the ledger in Postgres. Store replaces the table
// contents inside a single transaction.
type PGSnapshotStore struct {
	db *pgxpool.Pool
}

func NewPGSnapshotStore(db *pgxpool.Pool) *PGSnapshotStore {
	return &PGSnapshotStore{db: db}
}

func (r *PGSnapshotStore) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, pgSchema); err != nil {
		return fmt.Errorf("%w: migrate: %v", ErrStorage, err)
	}
	return nil
}

func (r *PGSnapshotStore) Load(ctx context.Context) (ledger.State, error) {
	var state ledger.State

	rows, err := r.db.Query(ctx, `SELECT id, flight_number, origin, destination, departure_date, seats, price FROM flights ORDER BY id`)
	if err != nil {
		return state, fmt.Errorf("%w: query flights: %v", ErrStorage, err)
	}
	state.Flights, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Flight, error) {
		var f domain.Flight
		err := row.Scan(&f.ID, &f.FlightNumber, &f.Origin, &f.Destination, &f.DepartureDate, &f.Seats, &f.Price)
		return f, err
	})
	if err != nil {
		return state, fmt.Errorf("%w: scan flights: %v", ErrStorage, err)
	}

	rows, err = r.db.Query(ctx, `SELECT id, name, phone, email, balance FROM customers ORDER BY id`)
	if err != nil {
		return state, fmt.Errorf("%w: query customers: %v", ErrStorage, err)
	}
	state.Customers, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Customer, error) {
		var c domain.Customer
		err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Balance)
		return c, err
	})
	if err != nil {
		return state, fmt.Errorf("%w: scan customers: %v", ErrStorage, err)
	}

	rows, err = r.db.Query(ctx, `SELECT id, customer_id, flight_id, booking_date, price FROM bookings ORDER BY id`)
	if err != nil {
		return state, fmt.Errorf("%w: query bookings: %v", ErrStorage, err)
	}
	state.Bookings, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Booking, error) {
		var b domain.Booking
		err := row.Scan(&b.ID, &b.CustomerID, &b.FlightID, &b.BookingDate, &b.Price)
		return b, err
	})
	if err != nil {
		return state, fmt.Errorf("%w: scan bookings: %v", ErrStorage, err)
	}

	err = r.db.QueryRow(ctx, `SELECT COALESCE(MAX(value), 0) FROM ledger_meta WHERE name=$1`, lastBookingIDKey).Scan(&state.LastBookingID)
	if err != nil {
		return state, fmt.Errorf("%w: read booking sequence: %v", ErrStorage, err)
	}
	return state, nil
}

func (r *PGSnapshotStore) Store(ctx context.Context, state ledger.State) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrStorage, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE bookings, flights, customers`); err != nil {
		return fmt.Errorf("%w: truncate: %v", ErrStorage, err)
	}

	for _, table := range copyTables(state) {
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{table.name}, table.columns, pgx.CopyFromRows(table.rows)); err != nil {
			return fmt.Errorf("%w: copy %s: %v", ErrStorage, table.name, err)
		}
	}

	if _, err := tx.Exec(ctx, `INSERT INTO ledger_meta (name, value) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value`, lastBookingIDKey, state.LastBookingID); err != nil {
		return fmt.Errorf("%w: write booking sequence: %v", ErrStorage, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrStorage, err)
	}
	return nil
}

type copyTable struct {
	name    string
	columns []string
	rows    [][]any
}

// copyTables lists the COPY input for Store. Parents come before bookings so
// the foreign keys hold.
func copyTables(state ledger.State) []copyTable {
	flights := copyTable{
		name:    "flights",
		columns: []string{"id", "flight_number", "origin", "destination", "departure_date", "seats", "price"},
		rows:    make([][]any, 0, len(state.Flights)),
	}
	for _, f := range state.Flights {
		flights.rows = append(flights.rows, []any{f.ID, f.FlightNumber, f.Origin, f.Destination, f.DepartureDate, f.Seats, f.Price})
	}

	customers := copyTable{
		name:    "customers",
		columns: []string{"id", "name", "phone", "email", "balance"},
		rows:    make([][]any, 0, len(state.Customers)),
	}
	for _, c := range state.Customers {
		customers.rows = append(customers.rows, []any{c.ID, c.Name, c.Phone, c.Email, c.Balance})
	}

	bookings := copyTable{
		name:    "bookings",
		columns: []string{"id", "customer_id", "flight_id", "booking_date", "price"},
		rows:    make([][]any, 0, len(state.Bookings)),
	}
	for _, b := range state.Bookings {
		bookings.rows = append(bookings.rows, []any{b.ID, b.CustomerID, b.FlightID, b.BookingDate, b.Price})
	}

	return []copyTable{flights, customers, bookings}
}

var _ SnapshotStore = (*PGSnapshotStore)(nil)
