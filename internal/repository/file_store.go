package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/ledger"
)

const (
	flightsFile   = "flights.txt"
	customersFile = "customers.txt"
	bookingsFile  = "bookings.txt"
	sequenceFile  = "sequence.txt"

	// commitFile marks a fully staged snapshot. While it exists the staged
	// files win over the live ones.
	commitFile = "snapshot.commit"
	stagedExt  = ".next"
)

var snapshotFiles = []string{flightsFile, customersFile, bookingsFile, sequenceFile}

// FileStore keeps the ledger in comma-delimited text files, one record per
// line:
//
//	flights.txt   id,flightNumber,origin,destination,departureDate,seats,price
//	customers.txt id,name,phone,email,balance
//	bookings.txt  id,customerId,flightId,bookingDate,price
//	sequence.txt  lastBookingId
//
// Trailing fields (balance, price) may be missing in older files.
//
// Store is all-or-nothing: every file is staged next to the live one, then a
// commit marker is written and the staged files are renamed into place. Load
// finishes a committed swap that was interrupted and drops staged files that
// were never committed.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Load(_ context.Context) (ledger.State, error) {
	if err := s.finishPending(); err != nil {
		return ledger.State{}, err
	}

	var state ledger.State
	err := s.readRecords(flightsFile, 7, func(r []string) error {
		f, err := parseFlight(r)
		if err != nil {
			return err
		}
		state.Flights = append(state.Flights, f)
		return nil
	})
	if err != nil {
		return ledger.State{}, err
	}

	err = s.readRecords(customersFile, 4, func(r []string) error {
		c, err := parseCustomer(r)
		if err != nil {
			return err
		}
		state.Customers = append(state.Customers, c)
		return nil
	})
	if err != nil {
		return ledger.State{}, err
	}

	err = s.readRecords(bookingsFile, 4, func(r []string) error {
		b, err := parseBooking(r)
		if err != nil {
			return err
		}
		state.Bookings = append(state.Bookings, b)
		return nil
	})
	if err != nil {
		return ledger.State{}, err
	}

	err = s.readRecords(sequenceFile, 1, func(r []string) error {
		last, err := strconv.ParseInt(r[0], 10, 64)
		if err != nil {
			return err
		}
		state.LastBookingID = last
		return nil
	})
	if err != nil {
		return ledger.State{}, err
	}

	return state, nil
}

// Store rewrites every file as one snapshot.
func (s *FileStore) Store(_ context.Context, state ledger.State) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create data dir: %v", ErrStorage, err)
	}

	flights := make([][]string, 0, len(state.Flights))
	for _, f := range state.Flights {
		flights = append(flights, []string{
			formatID(f.ID), f.FlightNumber, f.Origin, f.Destination,
			f.DepartureDate.Format(domain.DateLayout), strconv.Itoa(f.Seats), formatID(f.Price),
		})
	}
	customers := make([][]string, 0, len(state.Customers))
	for _, c := range state.Customers {
		customers = append(customers, []string{formatID(c.ID), c.Name, c.Phone, c.Email, formatID(c.Balance)})
	}
	bookings := make([][]string, 0, len(state.Bookings))
	for _, b := range state.Bookings {
		bookings = append(bookings, []string{
			formatID(b.ID), formatID(b.CustomerID), formatID(b.FlightID),
			b.BookingDate.Format(domain.DateLayout), formatID(b.Price),
		})
	}

	files := []struct {
		name    string
		records [][]string
	}{
		{flightsFile, flights},
		{customersFile, customers},
		{bookingsFile, bookings},
		{sequenceFile, [][]string{{formatID(state.LastBookingID)}}},
	}
	for _, f := range files {
		if err := s.writeRecords(f.name+stagedExt, f.records); err != nil {
			s.dropStaged()
			return err
		}
	}
	if err := s.writeRecords(commitFile, nil); err != nil {
		s.dropStaged()
		return err
	}
	return s.commit()
}

// commit moves staged files over the live ones and then removes the marker.
// Running it again after a crash is safe.
func (s *FileStore) commit() error {
	for _, name := range snapshotFiles {
		err := os.Rename(filepath.Join(s.dir, name+stagedExt), filepath.Join(s.dir, name))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: replace %s: %v", ErrStorage, name, err)
		}
	}
	if err := os.Remove(filepath.Join(s.dir, commitFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: remove commit marker: %v", ErrStorage, err)
	}
	return nil
}

func (s *FileStore) finishPending() error {
	_, err := os.Stat(filepath.Join(s.dir, commitFile))
	switch {
	case err == nil:
		return s.commit()
	case errors.Is(err, fs.ErrNotExist):
		s.dropStaged()
		return nil
	default:
		return fmt.Errorf("%w: stat commit marker: %v", ErrStorage, err)
	}
}

func (s *FileStore) dropStaged() {
	for _, name := range snapshotFiles {
		_ = os.Remove(filepath.Join(s.dir, name+stagedExt))
	}
}

func (s *FileStore) readRecords(name string, minFields int, fn func([]string) error) error {
	file, err := os.Open(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrStorage, name, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	for line := 1; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: read %s: %v", ErrStorage, name, err)
		}
		if len(record) < minFields {
			return fmt.Errorf("%w: %s line %d: want at least %d fields, got %d", ErrStorage, name, line, minFields, len(record))
		}
		if err := fn(record); err != nil {
			return fmt.Errorf("%w: %s line %d: %v", ErrStorage, name, line, err)
		}
	}
}

func (s *FileStore) writeRecords(name string, records [][]string) error {
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrStorage, name, err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(records); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %v", ErrStorage, name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: sync %s: %v", ErrStorage, name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrStorage, name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("%w: replace %s: %v", ErrStorage, name, err)
	}
	return nil
}

func parseFlight(r []string) (domain.Flight, error) {
	id, err := parseID(r[0])
	if err != nil {
		return domain.Flight{}, err
	}
	departure, err := domain.ParseDate(r[4])
	if err != nil {
		return domain.Flight{}, err
	}
	seats, err := strconv.Atoi(r[5])
	if err != nil {
		return domain.Flight{}, err
	}
	price, err := parseID(r[6])
	if err != nil {
		return domain.Flight{}, err
	}
	return domain.Flight{
		ID:            id,
		FlightNumber:  r[1],
		Origin:        r[2],
		Destination:   r[3],
		DepartureDate: departure,
		Seats:         seats,
		Price:         price,
	}, nil
}

func parseCustomer(r []string) (domain.Customer, error) {
	id, err := parseID(r[0])
	if err != nil {
		return domain.Customer{}, err
	}
	c := domain.Customer{ID: id, Name: r[1], Phone: r[2], Email: r[3]}
	if len(r) > 4 {
		if c.Balance, err = parseID(r[4]); err != nil {
			return domain.Customer{}, err
		}
	}
	return c, nil
}

func parseBooking(r []string) (domain.Booking, error) {
	var (
		b   domain.Booking
		err error
	)
	if b.ID, err = parseID(r[0]); err != nil {
		return b, err
	}
	if b.CustomerID, err = parseID(r[1]); err != nil {
		return b, err
	}
	if b.FlightID, err = parseID(r[2]); err != nil {
		return b, err
	}
	if b.BookingDate, err = domain.ParseDate(r[3]); err != nil {
		return b, err
	}
	if len(r) > 4 {
		if b.Price, err = parseID(r[4]); err != nil {
			return b, err
		}
	}
	return b, nil
}

// parseID reads an integer field; an empty field reads as zero.
func parseID(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func formatID(v int64) string {
	return strconv.FormatInt(v, 10)
}

var _ SnapshotStore = (*FileStore)(nil)
