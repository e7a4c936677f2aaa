package trace

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/chazu/vmdump/dump"
)

var log = commonlog.GetLogger("vmdump.trace")

// Row is one recorded instruction.
type Row struct {
	Session  uuid.UUID
	Seq      int64
	Function string
	Index    int
	Opcode   string
	Op1      string
	Op2      string
	Result   string
	Extended string
}

// Store persists trace rows in SQLite. Each Store writes under its own
// session id.
type Store struct {
	db        *sql.DB
	session   uuid.UUID
	precision int
	mu        sync.Mutex
	seq       int64
}

// OpenStore opens or creates a trace database. Constants in operand columns
// are rendered with the given double precision.
func OpenStore(path string, precision int) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS trace_rows (
		session  TEXT NOT NULL,
		seq      INTEGER NOT NULL,
		function TEXT NOT NULL,
		pc       INTEGER NOT NULL,
		opcode   TEXT NOT NULL,
		op1      TEXT NOT NULL,
		op2      TEXT NOT NULL,
		result   TEXT NOT NULL,
		extended TEXT NOT NULL,
		PRIMARY KEY (session, seq)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	s := &Store{db: db, session: uuid.New(), precision: precision}
	log.Infof("trace session %s in %s", s.session, path)
	return s, nil
}

// Session returns the id rows are recorded under.
func (s *Store) Session() uuid.UUID { return s.session }

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record stores one event.
func (s *Store) Record(ev Event) error {
	fields := dump.Fields(ev.Program, ev.Index, s.precision)
	if fields == nil {
		return fmt.Errorf("instruction %d out of range", ev.Index)
	}
	name := ""
	if ev.Function != nil {
		name = ev.Function.QualifiedName()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT INTO trace_rows (session, seq, function, pc, opcode, op1, op2, result, extended) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		s.session.String(), s.seq, name, ev.Index,
		fields[0], fields[1], fields[2], fields[3], fields[4],
	)
	if err != nil {
		return fmt.Errorf("recording row: %w", err)
	}
	s.seq++
	return nil
}

// Hook records ev and logs failures. Hooks have no error return.
func (s *Store) Hook(ev Event) {
	if err := s.Record(ev); err != nil {
		log.Errorf("trace store: %s", err)
	}
}

// Rows returns the rows of a session in execution order.
func (s *Store) Rows(session uuid.UUID) ([]Row, error) {
	rows, err := s.db.Query(
		"SELECT seq, function, pc, opcode, op1, op2, result, extended FROM trace_rows WHERE session = ? ORDER BY seq",
		session.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("querying rows: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		r := Row{Session: session}
		if err := rows.Scan(&r.Seq, &r.Function, &r.Index, &r.Opcode, &r.Op1, &r.Op2, &r.Result, &r.Extended); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return out, nil
}

// Sessions lists the session ids present in the store.
func (s *Store) Sessions() ([]uuid.UUID, error) {
	rows, err := s.db.Query("SELECT DISTINCT session FROM trace_rows ORDER BY session")
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		u, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("bad session id %q: %w", id, err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
