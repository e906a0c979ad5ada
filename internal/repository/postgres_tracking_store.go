package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"VolScan/internal/domain/models"
	applogger "VolScan/pkg/logger"
)

var trackingSchema = []string{
	`CREATE TABLE IF NOT EXISTS signals (
        id           TEXT PRIMARY KEY,
        symbol       TEXT NOT NULL,
        type         TEXT NOT NULL,
        strength     INT NOT NULL,
        entry_price  DOUBLE PRECISION NOT NULL,
        strike_price DOUBLE PRECISION NOT NULL,
        stop_loss    DOUBLE PRECISION NOT NULL,
        target_price DOUBLE PRECISION NOT NULL,
        entry_window TEXT NOT NULL,
        created_at   TIMESTAMPTZ NOT NULL,
        rationale    TEXT NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_signals_symbol ON signals (symbol)`,
	`CREATE TABLE IF NOT EXISTS prediction_records (
        signal_id        TEXT PRIMARY KEY REFERENCES signals (id),
        symbol           TEXT NOT NULL,
        type             TEXT NOT NULL,
        strength         INT NOT NULL,
        entry_price      DOUBLE PRECISION NOT NULL,
        stop_loss        DOUBLE PRECISION NOT NULL,
        target_price     DOUBLE PRECISION NOT NULL,
        created_at       TIMESTAMPTZ NOT NULL,
        status           TEXT NOT NULL DEFAULT 'PENDING',
        resolution_price DOUBLE PRECISION,
        resolution_date  TIMESTAMPTZ,
        return_pct       DOUBLE PRECISION
    )`,
	`CREATE INDEX IF NOT EXISTS idx_predictions_status ON prediction_records (status)`,
}

type signalRow struct {
	ID          string    `db:"id"`
	Symbol      string    `db:"symbol"`
	Type        string    `db:"type"`
	Strength    int       `db:"strength"`
	EntryPrice  float64   `db:"entry_price"`
	StrikePrice float64   `db:"strike_price"`
	StopLoss    float64   `db:"stop_loss"`
	TargetPrice float64   `db:"target_price"`
	EntryWindow string    `db:"entry_window"`
	CreatedAt   time.Time `db:"created_at"`
	Rationale   string    `db:"rationale"`
}

type predictionRow struct {
	SignalID        string          `db:"signal_id"`
	Symbol          string          `db:"symbol"`
	Type            string          `db:"type"`
	Strength        int             `db:"strength"`
	EntryPrice      float64         `db:"entry_price"`
	StopLoss        float64         `db:"stop_loss"`
	TargetPrice     float64         `db:"target_price"`
	CreatedAt       time.Time       `db:"created_at"`
	Status          string          `db:"status"`
	ResolutionPrice sql.NullFloat64 `db:"resolution_price"`
	ResolutionDate  sql.NullTime    `db:"resolution_date"`
	ReturnPct       sql.NullFloat64 `db:"return_pct"`
}

func (r predictionRow) toModel() models.PredictionRecord {
	rec := models.PredictionRecord{
		SignalID:    r.SignalID,
		Symbol:      r.Symbol,
		Type:        models.SignalType(r.Type),
		Strength:    r.Strength,
		EntryPrice:  r.EntryPrice,
		StopLoss:    r.StopLoss,
		TargetPrice: r.TargetPrice,
		CreatedAt:   r.CreatedAt,
		Status:      models.PredictionStatus(r.Status),
	}
	if r.ResolutionPrice.Valid {
		rec.ResolutionPrice = r.ResolutionPrice.Float64
	}
	if r.ResolutionDate.Valid {
		rec.ResolutionDate = r.ResolutionDate.Time
	}
	if r.ReturnPct.Valid {
		rec.ReturnPct = r.ReturnPct.Float64
	}
	return rec
}

// PGTrackingStore implements TrackingStore on Postgres. Resolution is
// guarded by a status-qualified UPDATE, so a record can leave PENDING
// exactly once even under concurrent scan runs.
type PGTrackingStore struct {
	db *sqlx.DB
	l  *applogger.Logger
}

func NewPGTrackingStore(db *sqlx.DB) *PGTrackingStore {
	return &PGTrackingStore{db: db}
}

// SetLogger injects a structured logger.
func (s *PGTrackingStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *PGTrackingStore) Init(ctx context.Context) error {
	for _, stmt := range trackingSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init tracking schema: %w", err)
		}
	}
	return nil
}

func (s *PGTrackingStore) AppendSignal(ctx context.Context, sig models.Signal) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append signal: %w", err)
	}
	defer tx.Rollback()

	row := signalRow{
		ID:          sig.ID,
		Symbol:      sig.Symbol,
		Type:        string(sig.Type),
		Strength:    sig.Strength,
		EntryPrice:  sig.EntryPrice,
		StrikePrice: sig.StrikePrice,
		StopLoss:    sig.StopLoss,
		TargetPrice: sig.TargetPrice,
		EntryWindow: sig.EntryWindow,
		CreatedAt:   sig.CreatedAt,
		Rationale:   sig.Rationale,
	}
	const insSignal = `
	INSERT INTO signals (
		id, symbol, type, strength, entry_price, strike_price,
		stop_loss, target_price, entry_window, created_at, rationale
	) VALUES (
		:id, :symbol, :type, :strength, :entry_price, :strike_price,
		:stop_loss, :target_price, :entry_window, :created_at, :rationale
	)`
	if _, err := tx.NamedExecContext(ctx, insSignal, row); err != nil {
		return fmt.Errorf("insert signal: %w", err)
	}

	const insRecord = `
	INSERT INTO prediction_records (
		signal_id, symbol, type, strength, entry_price,
		stop_loss, target_price, created_at, status
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := tx.ExecContext(ctx, insRecord,
		sig.ID, sig.Symbol, string(sig.Type), sig.Strength, sig.EntryPrice,
		sig.StopLoss, sig.TargetPrice, sig.CreatedAt, string(models.StatusPending),
	); err != nil {
		return fmt.Errorf("insert prediction record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append signal: %w", err)
	}
	if s.l != nil {
		s.l.Info("signal appended",
			applogger.String("signal_id", sig.ID),
			applogger.String("symbol", sig.Symbol),
			applogger.String("type", string(sig.Type)),
		)
	}
	return nil
}

func (s *PGTrackingStore) Signals(ctx context.Context, typ models.SignalType, limit int) ([]models.Signal, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
	SELECT id, symbol, type, strength, entry_price, strike_price,
	       stop_loss, target_price, entry_window, created_at, rationale
	FROM signals`
	args := []any{}
	if typ != "" {
		query += ` WHERE type = $1`
		args = append(args, string(typ))
	}
	query += fmt.Sprintf(` ORDER BY strength DESC, symbol ASC, created_at DESC LIMIT %d`, limit)

	var rows []signalRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select signals: %w", err)
	}
	out := make([]models.Signal, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.Signal{
			ID:          r.ID,
			Symbol:      r.Symbol,
			Type:        models.SignalType(r.Type),
			Strength:    r.Strength,
			EntryPrice:  r.EntryPrice,
			StrikePrice: r.StrikePrice,
			StopLoss:    r.StopLoss,
			TargetPrice: r.TargetPrice,
			EntryWindow: r.EntryWindow,
			CreatedAt:   r.CreatedAt,
			Rationale:   r.Rationale,
		})
	}
	return out, nil
}

func (s *PGTrackingStore) Pending(ctx context.Context) ([]models.PredictionRecord, error) {
	const q = `
	SELECT signal_id, symbol, type, strength, entry_price, stop_loss,
	       target_price, created_at, status, resolution_price,
	       resolution_date, return_pct
	FROM prediction_records
	WHERE status = 'PENDING'
	ORDER BY created_at ASC`

	var rows []predictionRow
	if err := s.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("select pending: %w", err)
	}
	out := make([]models.PredictionRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *PGTrackingStore) Records(ctx context.Context, status models.PredictionStatus, symbol string, limit int) ([]models.PredictionRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
	SELECT signal_id, symbol, type, strength, entry_price, stop_loss,
	       target_price, created_at, status, resolution_price,
	       resolution_date, return_pct
	FROM prediction_records
	WHERE 1=1`
	args := []any{}
	if status != "" {
		args = append(args, string(status))
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if symbol != "" {
		args = append(args, symbol)
		query += fmt.Sprintf(` AND symbol = $%d`, len(args))
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, limit)

	var rows []predictionRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}
	out := make([]models.PredictionRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *PGTrackingStore) Resolve(ctx context.Context, signalID string, status models.PredictionStatus, price float64, date time.Time, returnPct float64) (bool, error) {
	if !status.Terminal() {
		return false, fmt.Errorf("resolve to non-terminal status %q", status)
	}
	const q = `
	UPDATE prediction_records
	SET status = $1, resolution_price = $2, resolution_date = $3, return_pct = $4
	WHERE signal_id = $5 AND status = 'PENDING'`

	res, err := s.db.ExecContext(ctx, q, string(status), price, date, returnPct, signalID)
	if err != nil {
		return false, fmt.Errorf("resolve prediction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("resolve rows affected: %w", err)
	}
	if n > 0 && s.l != nil {
		s.l.Info("prediction resolved",
			applogger.String("signal_id", signalID),
			applogger.String("status", string(status)),
			applogger.Float64("price", price),
		)
	}
	return n > 0, nil
}

func (s *PGTrackingStore) HasPending(ctx context.Context, symbol string, typ models.SignalType) (bool, error) {
	const q = `
	SELECT EXISTS (
		SELECT 1 FROM prediction_records
		WHERE symbol = $1 AND type = $2 AND status = 'PENDING'
	)`
	var exists bool
	if err := s.db.GetContext(ctx, &exists, q, symbol, string(typ)); err != nil {
		return false, fmt.Errorf("has pending: %w", err)
	}
	return exists, nil
}

func (s *PGTrackingStore) Close() error {
	return s.db.Close()
}
