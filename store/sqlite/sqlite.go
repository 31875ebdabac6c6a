/*
Package sqlite provides a SQLite-backed implementation of the engine's
collaborator interfaces.

PURPOSE:
  Implements StaffDirectory, ClaimStore, AttendanceStore, HolidayCalendar,
  SummaryStore, and AuditLog on SQLite. In production the same patterns
  apply to PostgreSQL; only minor SQL dialect differences.

KEY TABLES:
  staff:        directory records (owned externally, engine reads them)
  claims:       OT claims with their submission-time snapshots
  attendance:   clock-in/out records (owned externally)
  holidays:     static reference calendar
  summaries:    one row per (staff, month), overwritten on recompute
  activity_log: append-only audit trail

INDEXES:
  - idx_claims_staff_month: quota sums and summary folds (hot path)
  - idx_claims_staff_date:  same-day overlap scans
  - UNIQUE(staff_email, month) on summaries backs the upsert

WAL MODE:
  SQLite is opened with WAL for better read concurrency. A sync.RWMutex
  guards the connection; the engine adds its own per-staff serialization
  above this layer.

USAGE:
  store, err := sqlite.New("./data/overtime.db")   // or ":memory:"
  defer store.Close()

SEE ALSO:
  - overtime/stores.go: interface definitions
  - store/memory: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/overtime-engine/overtime"
)

// Store implements every collaborator interface on one SQLite handle.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS staff (
		email TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		team TEXT NOT NULL,
		role TEXT NOT NULL,
		team_leader TEXT,
		active BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE INDEX IF NOT EXISTS idx_staff_leader ON staff(team_leader);

	CREATE TABLE IF NOT EXISTS claims (
		id TEXT PRIMARY KEY,
		staff_email TEXT NOT NULL,
		staff_name TEXT NOT NULL,
		team TEXT NOT NULL,
		ot_date TEXT NOT NULL,          -- YYYY-MM-DD
		month TEXT NOT NULL,            -- YYYY-MM, derived from ot_date
		start_time TEXT NOT NULL,       -- HH:MM[:SS]
		end_time TEXT NOT NULL,
		base_hours TEXT NOT NULL,       -- decimal as string
		holiday BOOLEAN NOT NULL DEFAULT FALSE,
		multiplier INTEGER NOT NULL DEFAULT 1,
		total_hours TEXT NOT NULL,
		claim_type TEXT NOT NULL,
		leave_days TEXT NOT NULL DEFAULT '0',
		proof_name TEXT,
		proof_url TEXT,
		status TEXT NOT NULL,
		submitted_at TEXT NOT NULL,
		rest_gap_hours TEXT NOT NULL DEFAULT '0',
		rest_gap_valid BOOLEAN NOT NULL DEFAULT FALSE,
		warnings_json TEXT,
		approved_by TEXT,
		decided_at TEXT,
		remarks TEXT
	);

	-- Quota sums and summary folds filter on these (hot path)
	CREATE INDEX IF NOT EXISTS idx_claims_staff_month
		ON claims(staff_email, month, status);
	-- Same-day overlap scans
	CREATE INDEX IF NOT EXISTS idx_claims_staff_date
		ON claims(staff_email, ot_date);
	CREATE INDEX IF NOT EXISTS idx_claims_team_status
		ON claims(team, status);

	CREATE TABLE IF NOT EXISTS attendance (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		staff_email TEXT NOT NULL,
		work_date TEXT NOT NULL,
		clock_in TEXT NOT NULL,
		clock_out TEXT,                 -- NULL while still clocked in
		hours TEXT NOT NULL DEFAULT '0',
		shift_type TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_staff_out
		ON attendance(staff_email, clock_out);

	CREATE TABLE IF NOT EXISTS holidays (
		date TEXT PRIMARY KEY,          -- YYYY-MM-DD
		name TEXT NOT NULL,
		year INTEGER NOT NULL,
		region TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_holidays_year ON holidays(year);

	CREATE TABLE IF NOT EXISTS summaries (
		staff_email TEXT NOT NULL,
		month TEXT NOT NULL,
		total_ot_hours TEXT NOT NULL,
		money_claim_hours TEXT NOT NULL,
		leave_claim_hours TEXT NOT NULL,
		leave_days_earned TEXT NOT NULL,
		status TEXT NOT NULL,
		recomputed_at TEXT NOT NULL,
		UNIQUE(staff_email, month)
	);

	CREATE TABLE IF NOT EXISTS activity_log (
		id TEXT PRIMARY KEY,
		actor_id TEXT NOT NULL,
		action TEXT NOT NULL,
		detail TEXT,
		claim_id TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_activity_actor ON activity_log(actor_id);
	CREATE INDEX IF NOT EXISTS idx_activity_claim ON activity_log(claim_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// STAFF DIRECTORY
// =============================================================================

// PutStaff inserts or updates a directory record. The directory is owned by
// an external process; this exists for seeding and sync jobs.
func (s *Store) PutStaff(ctx context.Context, m overtime.StaffMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO staff (email, name, team, role, team_leader, active)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			name = excluded.name, team = excluded.team, role = excluded.role,
			team_leader = excluded.team_leader, active = excluded.active
	`, m.Email, m.Name, m.Team, string(m.Role), m.TeamLeader, m.Active)
	if err != nil {
		return fmt.Errorf("failed to upsert staff: %w", err)
	}
	return nil
}

func (s *Store) GetStaff(ctx context.Context, email string) (*overtime.StaffMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT email, name, team, role, COALESCE(team_leader, ''), active
		FROM staff WHERE email = ?
	`, email)

	var m overtime.StaffMember
	var role string
	if err := row.Scan(&m.Email, &m.Name, &m.Team, &role, &m.TeamLeader, &m.Active); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load staff: %w", err)
	}
	m.Role = overtime.Role(role)
	return &m, nil
}

func (s *Store) GetTeamMembers(ctx context.Context, leaderEmail string) ([]overtime.StaffMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT email, name, team, role, COALESCE(team_leader, ''), active
		FROM staff WHERE team_leader = ? AND active ORDER BY email
	`, leaderEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to query team members: %w", err)
	}
	defer rows.Close()

	var out []overtime.StaffMember
	for rows.Next() {
		var m overtime.StaffMember
		var role string
		if err := rows.Scan(&m.Email, &m.Name, &m.Team, &role, &m.TeamLeader, &m.Active); err != nil {
			return nil, err
		}
		m.Role = overtime.Role(role)
		out = append(out, m)
	}
	return out, rows.Err()
}

// =============================================================================
// CLAIM STORE
// =============================================================================

func (s *Store) InsertClaim(ctx context.Context, c *overtime.OTClaim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	warningsJSON, _ := json.Marshal(c.Warnings)
	proofName, proofURL := "", ""
	if c.Proof != nil {
		proofName, proofURL = c.Proof.Name, c.Proof.URL
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO claims
		(id, staff_email, staff_name, team, ot_date, month, start_time, end_time,
		 base_hours, holiday, multiplier, total_hours, claim_type, leave_days,
		 proof_name, proof_url, status, submitted_at, rest_gap_hours, rest_gap_valid,
		 warnings_json, approved_by, decided_at, remarks)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '', NULL, '')
	`,
		c.ID, c.StaffEmail, c.StaffName, c.Team,
		c.Date.String(), c.Date.MonthKey(),
		c.StartTime.String(), c.EndTime.String(),
		c.BaseHours.String(), c.Holiday, c.Multiplier, c.TotalHours.String(),
		string(c.Type), c.LeaveDaysEarned.String(),
		proofName, proofURL,
		string(c.Status), c.SubmittedAt.UTC().Format(time.RFC3339),
		c.RestGapHours.String(), c.RestGapValid,
		string(warningsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert claim: %w", err)
	}
	return nil
}

const claimColumns = `
	id, staff_email, staff_name, team, ot_date, start_time, end_time,
	base_hours, holiday, multiplier, total_hours, claim_type, leave_days,
	COALESCE(proof_name, ''), COALESCE(proof_url, ''), status, submitted_at,
	rest_gap_hours, rest_gap_valid, COALESCE(warnings_json, '[]'),
	COALESCE(approved_by, ''), decided_at, COALESCE(remarks, '')`

func (s *Store) GetClaim(ctx context.Context, id string) (*overtime.OTClaim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+claimColumns+` FROM claims WHERE id = ?`, id)
	c, err := scanClaim(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (s *Store) ListClaims(ctx context.Context, f overtime.ClaimFilter) ([]overtime.OTClaim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var conds []string
	var args []any
	if f.StaffEmail != "" {
		conds = append(conds, "staff_email = ?")
		args = append(args, f.StaffEmail)
	}
	if f.Team != "" {
		conds = append(conds, "team = ?")
		args = append(args, f.Team)
	}
	if f.Date != nil {
		conds = append(conds, "ot_date = ?")
		args = append(args, f.Date.String())
	}
	if f.Month != "" {
		conds = append(conds, "month = ?")
		args = append(args, f.Month)
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.ExcludeStatus != "" {
		conds = append(conds, "status != ?")
		args = append(args, string(f.ExcludeStatus))
	}

	query := `SELECT ` + claimColumns + ` FROM claims`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY ot_date ASC, start_time ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query claims: %w", err)
	}
	defer rows.Close()

	var out []overtime.OTClaim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *Store) UpdateClaimStatus(ctx context.Context, id string, status overtime.ClaimStatus, approver, remarks string, decidedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE claims SET status = ?, approved_by = ?, remarks = ?, decided_at = ?
		WHERE id = ? AND status = ?
	`, string(status), approver, remarks, decidedAt.UTC().Format(time.RFC3339),
		id, string(overtime.StatusPending))
	if err != nil {
		return fmt.Errorf("failed to update claim status: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		// Distinguish a missing claim from one already decided.
		var current string
		err := s.db.QueryRowContext(ctx, `SELECT status FROM claims WHERE id = ?`, id).Scan(&current)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: %s", overtime.ErrClaimNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("failed to update claim status: %w", err)
		}
		return &overtime.InvalidStateError{ClaimID: id, Status: overtime.ClaimStatus(current), Action: "decide"}
	}
	return nil
}

// PromoteDraft rewrites the draft's computed snapshot and status in place.
func (s *Store) PromoteDraft(ctx context.Context, c *overtime.OTClaim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	warningsJSON, _ := json.Marshal(c.Warnings)
	res, err := s.db.ExecContext(ctx, `
		UPDATE claims SET
			ot_date = ?, month = ?, start_time = ?, end_time = ?,
			base_hours = ?, holiday = ?, multiplier = ?, total_hours = ?,
			claim_type = ?, leave_days = ?, status = ?, submitted_at = ?,
			rest_gap_hours = ?, rest_gap_valid = ?, warnings_json = ?
		WHERE id = ? AND status = ?
	`,
		c.Date.String(), c.Date.MonthKey(), c.StartTime.String(), c.EndTime.String(),
		c.BaseHours.String(), c.Holiday, c.Multiplier, c.TotalHours.String(),
		string(c.Type), c.LeaveDaysEarned.String(),
		string(c.Status), c.SubmittedAt.UTC().Format(time.RFC3339),
		c.RestGapHours.String(), c.RestGapValid, string(warningsJSON),
		c.ID, string(overtime.StatusDraft),
	)
	if err != nil {
		return fmt.Errorf("failed to promote draft: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s is not a draft", overtime.ErrInvalidState, c.ID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClaim(row rowScanner) (*overtime.OTClaim, error) {
	var c overtime.OTClaim
	var otDate, start, end, base, total, leaveDays, gapHours string
	var claimType, status, submittedAt, warningsJSON, proofName, proofURL string
	var decidedAt sql.NullString

	err := row.Scan(
		&c.ID, &c.StaffEmail, &c.StaffName, &c.Team,
		&otDate, &start, &end,
		&base, &c.Holiday, &c.Multiplier, &total, &claimType, &leaveDays,
		&proofName, &proofURL, &status, &submittedAt,
		&gapHours, &c.RestGapValid, &warningsJSON,
		&c.ApprovedBy, &decidedAt, &c.Remarks,
	)
	if err != nil {
		return nil, err
	}

	if c.Date, err = overtime.ParseDate(otDate); err != nil {
		return nil, fmt.Errorf("corrupt claim %s: %w", c.ID, err)
	}
	if c.StartTime, err = overtime.ParseTimeOfDay(start); err != nil {
		return nil, fmt.Errorf("corrupt claim %s: %w", c.ID, err)
	}
	if c.EndTime, err = overtime.ParseTimeOfDay(end); err != nil {
		return nil, fmt.Errorf("corrupt claim %s: %w", c.ID, err)
	}
	if c.BaseHours, err = decimal.NewFromString(base); err != nil {
		return nil, fmt.Errorf("corrupt claim %s: %w", c.ID, err)
	}
	if c.TotalHours, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("corrupt claim %s: %w", c.ID, err)
	}
	if c.LeaveDaysEarned, err = decimal.NewFromString(leaveDays); err != nil {
		return nil, fmt.Errorf("corrupt claim %s: %w", c.ID, err)
	}
	if c.RestGapHours, err = decimal.NewFromString(gapHours); err != nil {
		return nil, fmt.Errorf("corrupt claim %s: %w", c.ID, err)
	}
	c.Type = overtime.ClaimType(claimType)
	c.Status = overtime.ClaimStatus(status)
	if t, err := time.Parse(time.RFC3339, submittedAt); err == nil {
		c.SubmittedAt = t
	}
	if decidedAt.Valid && decidedAt.String != "" {
		if t, err := time.Parse(time.RFC3339, decidedAt.String); err == nil {
			c.DecidedAt = t
		}
	}
	if proofName != "" || proofURL != "" {
		c.Proof = &overtime.ProofRef{Name: proofName, URL: proofURL}
	}
	_ = json.Unmarshal([]byte(warningsJSON), &c.Warnings)

	return &c, nil
}

// =============================================================================
// ATTENDANCE STORE
// =============================================================================

// AddAttendance records a clock-in/out pair. Attendance is owned by an
// external collection process; this exists for seeding and ingestion.
func (s *Store) AddAttendance(ctx context.Context, r overtime.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var clockOut any
	if !r.ClockOut.IsZero() {
		clockOut = r.ClockOut.UTC().Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance (staff_email, work_date, clock_in, clock_out, hours, shift_type)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.StaffEmail, r.Date.String(), r.ClockIn.UTC().Format(time.RFC3339),
		clockOut, r.Hours.String(), r.ShiftType)
	if err != nil {
		return fmt.Errorf("failed to insert attendance: %w", err)
	}
	return nil
}

func (s *Store) ListAttendance(ctx context.Context, staffEmail string, before time.Time) ([]overtime.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT staff_email, work_date, clock_in, COALESCE(clock_out, ''), hours, COALESCE(shift_type, '')
		FROM attendance WHERE staff_email = ?`
	args := []any{staffEmail}
	// A zero cutoff lists everything, open shifts included.
	if !before.IsZero() {
		query += ` AND clock_out IS NOT NULL AND clock_out < ?`
		args = append(args, before.UTC().Format(time.RFC3339))
	}
	query += ` ORDER BY clock_in ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	var out []overtime.AttendanceRecord
	for rows.Next() {
		var r overtime.AttendanceRecord
		var workDate, clockIn, clockOut, hours string
		if err := rows.Scan(&r.StaffEmail, &workDate, &clockIn, &clockOut, &hours, &r.ShiftType); err != nil {
			return nil, err
		}
		if r.Date, err = overtime.ParseDate(workDate); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, clockIn); err == nil {
			r.ClockIn = t
		}
		if clockOut != "" {
			if t, err := time.Parse(time.RFC3339, clockOut); err == nil {
				r.ClockOut = t
			}
		}
		r.Hours, _ = decimal.NewFromString(hours)
		out = append(out, r)
	}
	return out, rows.Err()
}

// =============================================================================
// HOLIDAY CALENDAR
// =============================================================================

func (s *Store) PutHoliday(ctx context.Context, h overtime.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holidays (date, name, year, region) VALUES (?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET name = excluded.name,
			year = excluded.year, region = excluded.region
	`, h.Date.String(), h.Name, h.Year, h.Region)
	if err != nil {
		return fmt.Errorf("failed to upsert holiday: %w", err)
	}
	return nil
}

func (s *Store) IsHoliday(ctx context.Context, d overtime.Date) (bool, error) {
	h, err := s.HolidayDetails(ctx, d)
	return h != nil, err
}

func (s *Store) HolidayDetails(ctx context.Context, d overtime.Date) (*overtime.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT date, name, year, COALESCE(region, '') FROM holidays WHERE date = ?
	`, d.String())

	var h overtime.Holiday
	var date string
	if err := row.Scan(&date, &h.Name, &h.Year, &h.Region); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load holiday: %w", err)
	}
	var err error
	if h.Date, err = overtime.ParseDate(date); err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *Store) ListHolidays(ctx context.Context, year int) ([]overtime.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT date, name, year, COALESCE(region, '') FROM holidays`
	var args []any
	if year != 0 {
		query += ` WHERE year = ?`
		args = append(args, year)
	}
	query += ` ORDER BY date ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var out []overtime.Holiday
	for rows.Next() {
		var h overtime.Holiday
		var date string
		if err := rows.Scan(&date, &h.Name, &h.Year, &h.Region); err != nil {
			return nil, err
		}
		if h.Date, err = overtime.ParseDate(date); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// =============================================================================
// SUMMARY STORE
// =============================================================================

func (s *Store) GetSummary(ctx context.Context, staffEmail, month string) (*overtime.MonthlySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT staff_email, month, total_ot_hours, money_claim_hours,
		       leave_claim_hours, leave_days_earned, status, recomputed_at
		FROM summaries WHERE staff_email = ? AND month = ?
	`, staffEmail, month)

	var sum overtime.MonthlySummary
	var total, money, leave, days, status, recomputed string
	err := row.Scan(&sum.StaffEmail, &sum.Month, &total, &money, &leave, &days, &status, &recomputed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load summary: %w", err)
	}

	if sum.TotalOTHours, err = decimal.NewFromString(total); err != nil {
		return nil, err
	}
	if sum.MoneyClaimHours, err = decimal.NewFromString(money); err != nil {
		return nil, err
	}
	if sum.LeaveClaimHours, err = decimal.NewFromString(leave); err != nil {
		return nil, err
	}
	if sum.LeaveDaysEarned, err = decimal.NewFromString(days); err != nil {
		return nil, err
	}
	sum.Status = overtime.TrafficLight(status)
	if t, err := time.Parse(time.RFC3339, recomputed); err == nil {
		sum.RecomputedAt = t
	}
	return &sum, nil
}

func (s *Store) UpsertSummary(ctx context.Context, sum *overtime.MonthlySummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO summaries
		(staff_email, month, total_ot_hours, money_claim_hours, leave_claim_hours,
		 leave_days_earned, status, recomputed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(staff_email, month) DO UPDATE SET
			total_ot_hours = excluded.total_ot_hours,
			money_claim_hours = excluded.money_claim_hours,
			leave_claim_hours = excluded.leave_claim_hours,
			leave_days_earned = excluded.leave_days_earned,
			status = excluded.status,
			recomputed_at = excluded.recomputed_at
	`, sum.StaffEmail, sum.Month, sum.TotalOTHours.String(), sum.MoneyClaimHours.String(),
		sum.LeaveClaimHours.String(), sum.LeaveDaysEarned.String(),
		string(sum.Status), sum.RecomputedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to upsert summary: %w", err)
	}
	return nil
}

// =============================================================================
// AUDIT LOG
// =============================================================================

func (s *Store) Record(ctx context.Context, entry overtime.ActivityLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_log (id, actor_id, action, detail, claim_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.ActorID, string(entry.Action), entry.Detail, entry.ClaimID,
		entry.Timestamp.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, f overtime.AuditFilter) ([]overtime.ActivityLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var conds []string
	var args []any
	if f.ActorID != "" {
		conds = append(conds, "actor_id = ?")
		args = append(args, f.ActorID)
	}
	if f.ClaimID != "" {
		conds = append(conds, "claim_id = ?")
		args = append(args, f.ClaimID)
	}
	if len(f.Actions) > 0 {
		ph := make([]string, len(f.Actions))
		for i, a := range f.Actions {
			ph[i] = "?"
			args = append(args, string(a))
		}
		conds = append(conds, "action IN ("+strings.Join(ph, ",")+")")
	}
	if !f.From.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, f.From.UTC().Format(time.RFC3339))
	}
	if !f.To.IsZero() {
		conds = append(conds, "created_at <= ?")
		args = append(args, f.To.UTC().Format(time.RFC3339))
	}

	query := `SELECT id, actor_id, action, COALESCE(detail, ''), COALESCE(claim_id, ''), created_at FROM activity_log`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity log: %w", err)
	}
	defer rows.Close()

	var out []overtime.ActivityLogEntry
	for rows.Next() {
		var e overtime.ActivityLogEntry
		var action, createdAt string
		if err := rows.Scan(&e.ID, &e.ActorID, &action, &e.Detail, &e.ClaimID, &createdAt); err != nil {
			return nil, err
		}
		e.Action = overtime.ActivityAction(action)
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			e.Timestamp = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
