package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/ledger"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS flights (
		id INTEGER PRIMARY KEY,
		flight_number TEXT NOT NULL,
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		departure_date TEXT NOT NULL,
		seats INTEGER NOT NULL,
		price INTEGER NOT NULL,
		UNIQUE (flight_number, departure_date)
	);`,
	`CREATE TABLE IF NOT EXISTS customers (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		balance INTEGER NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id INTEGER PRIMARY KEY,
		customer_id INTEGER NOT NULL,
		flight_id INTEGER NOT NULL,
		booking_date TEXT NOT NULL,
		price INTEGER NOT NULL,
		UNIQUE (customer_id, flight_id),
		FOREIGN KEY (customer_id) REFERENCES customers (id),
		FOREIGN KEY (flight_id) REFERENCES flights (id)
	);`,
	`CREATE TABLE IF NOT EXISTS ledger_meta (
		name TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	);`,
}

// SQLiteSnapshotStore keeps the ledger in a single SQLite file. Dates are
// stored as YYYY-MM-DD text.
type SQLiteSnapshotStore struct {
	db *sqlx.DB
}

type sqliteFlight struct {
	ID            int64  `db:"id"`
	FlightNumber  string `db:"flight_number"`
	Origin        string `db:"origin"`
	Destination   string `db:"destination"`
	DepartureDate string `db:"departure_date"`
	Seats         int    `db:"seats"`
	Price         int64  `db:"price"`
}

type sqliteCustomer struct {
	ID      int64  `db:"id"`
	Name    string `db:"name"`
	Phone   string `db:"phone"`
	Email   string `db:"email"`
	Balance int64  `db:"balance"`
}

type sqliteBooking struct {
	ID          int64  `db:"id"`
	CustomerID  int64  `db:"customer_id"`
	FlightID    int64  `db:"flight_id"`
	BookingDate string `db:"booking_date"`
	Price       int64  `db:"price"`
}

// OpenSQLiteSnapshotStore opens (creating if needed) the database at path and
// makes sure the tables exist.
func OpenSQLiteSnapshotStore(ctx context.Context, path string) (*SQLiteSnapshotStore, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %v", ErrStorage, err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: migrate sqlite: %v", ErrStorage, err)
		}
	}
	return &SQLiteSnapshotStore{db: db}, nil
}

func (s *SQLiteSnapshotStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteSnapshotStore) Load(ctx context.Context) (ledger.State, error) {
	var (
		state     ledger.State
		flights   []sqliteFlight
		customers []sqliteCustomer
		bookings  []sqliteBooking
	)

	if err := s.db.SelectContext(ctx, &flights,
		`SELECT id, flight_number, origin, destination, departure_date, seats, price FROM flights ORDER BY id`); err != nil {
		return state, fmt.Errorf("%w: query flights: %v", ErrStorage, err)
	}
	for _, r := range flights {
		departure, err := domain.ParseDate(r.DepartureDate)
		if err != nil {
			return state, fmt.Errorf("%w: flight %d departure date: %v", ErrStorage, r.ID, err)
		}
		state.Flights = append(state.Flights, domain.Flight{
			ID:            r.ID,
			FlightNumber:  r.FlightNumber,
			Origin:        r.Origin,
			Destination:   r.Destination,
			DepartureDate: departure,
			Seats:         r.Seats,
			Price:         r.Price,
		})
	}

	if err := s.db.SelectContext(ctx, &customers,
		`SELECT id, name, phone, email, balance FROM customers ORDER BY id`); err != nil {
		return state, fmt.Errorf("%w: query customers: %v", ErrStorage, err)
	}
	for _, r := range customers {
		state.Customers = append(state.Customers, domain.Customer(r))
	}

	if err := s.db.SelectContext(ctx, &bookings,
		`SELECT id, customer_id, flight_id, booking_date, price FROM bookings ORDER BY id`); err != nil {
		return state, fmt.Errorf("%w: query bookings: %v", ErrStorage, err)
	}
	for _, r := range bookings {
		date, err := domain.ParseDate(r.BookingDate)
		if err != nil {
			return state, fmt.Errorf("%w: booking %d date: %v", ErrStorage, r.ID, err)
		}
		state.Bookings = append(state.Bookings, domain.Booking{
			ID:          r.ID,
			CustomerID:  r.CustomerID,
			FlightID:    r.FlightID,
			BookingDate: date,
			Price:       r.Price,
		})
	}

	err := s.db.GetContext(ctx, &state.LastBookingID,
		`SELECT COALESCE(MAX(value), 0) FROM ledger_meta WHERE name = ?`, lastBookingIDKey)
	if err != nil {
		return state, fmt.Errorf("%w: read booking sequence: %v", ErrStorage, err)
	}
	return state, nil
}

func (s *SQLiteSnapshotStore) Store(ctx context.Context, state ledger.State) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrStorage, err)
	}
	defer tx.Rollback()

	for _, table := range []string{"bookings", "flights", "customers"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("%w: clear %s: %v", ErrStorage, table, err)
		}
	}

	for _, f := range state.Flights {
		row := sqliteFlight{
			ID:            f.ID,
			FlightNumber:  f.FlightNumber,
			Origin:        f.Origin,
			Destination:   f.Destination,
			DepartureDate: dateText(f.DepartureDate),
			Seats:         f.Seats,
			Price:         f.Price,
		}
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO flights (id, flight_number, origin, destination, departure_date, seats, price)
			VALUES (:id, :flight_number, :origin, :destination, :departure_date, :seats, :price)`, row); err != nil {
			return fmt.Errorf("%w: insert flight %d: %v", ErrStorage, f.ID, err)
		}
	}
	for _, c := range state.Customers {
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO customers (id, name, phone, email, balance) VALUES (:id, :name, :phone, :email, :balance)`,
			sqliteCustomer(c)); err != nil {
			return fmt.Errorf("%w: insert customer %d: %v", ErrStorage, c.ID, err)
		}
	}
	for _, b := range state.Bookings {
		row := sqliteBooking{
			ID:          b.ID,
			CustomerID:  b.CustomerID,
			FlightID:    b.FlightID,
			BookingDate: dateText(b.BookingDate),
			Price:       b.Price,
		}
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO bookings (id, customer_id, flight_id, booking_date, price)
			VALUES (:id, :customer_id, :flight_id, :booking_date, :price)`, row); err != nil {
			return fmt.Errorf("%w: insert booking %d: %v", ErrStorage, b.ID, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO ledger_meta (name, value) VALUES (?, ?) ON CONFLICT (name) DO UPDATE SET value = excluded.value`,
		lastBookingIDKey, state.LastBookingID); err != nil {
		return fmt.Errorf("%w: write booking sequence: %v", ErrStorage, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrStorage, err)
	}
	return nil
}

func dateText(t time.Time) string {
	return t.Format(domain.DateLayout)
}

var _ SnapshotStore = (*SQLiteSnapshotStore)(nil)
