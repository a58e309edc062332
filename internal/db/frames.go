package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/banshee-data/sensorframe/internal/frame"
	"github.com/banshee-data/sensorframe/internal/monitoring"
	"github.com/banshee-data/sensorframe/internal/wire"
)

// ErrFrameNotFound is returned by GetFrame for an unknown id.
var ErrFrameNotFound = errors.New("frame not found")

// Shared zstd coders; EncodeAll and DecodeAll are safe for concurrent use.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithZeroFrames(true))
	zstdDecoder, _ = zstd.NewReader(nil)
)

var logf = monitoring.Prefixed("store")

// FrameRecord is one stored frame. Encoded holds the wire bytes produced by
// wire.Encode; the summary columns are kept alongside so listings do not need
// to parse them.
type FrameRecord struct {
	ID           string    `json:"id"`
	SensorID     string    `json:"sensor_id"`
	CreatedAt    time.Time `json:"created_at"`
	IntSlots     int       `json:"int_slots"`
	FloatSlots   int       `json:"float_slots"`
	PresentCount int       `json:"present_count"`
	Payload      string    `json:"payload"`
	Presence     []byte    `json:"presence"`
	Encoded      []byte    `json:"encoded"`
}

// InsertFrame encodes f, stores it compressed under a new id and returns
// that id.
func (db *DB) InsertFrame(ctx context.Context, sensorID string, f *frame.Frame) (string, error) {
	if sensorID == "" {
		return "", fmt.Errorf("sensor id must not be empty")
	}

	encoded := wire.Encode(f)
	compressed := zstdEncoder.EncodeAll(encoded, nil)
	schema := f.Schema()
	id := uuid.NewString()

	_, err := db.ExecContext(ctx, `
		INSERT INTO sensor_frames (
			frame_id, sensor_id, created_unix_nano, int_slots, float_slots,
			present_count, payload, encoded_size, encoded_zstd, presence
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, sensorID, db.clock.Now().UnixNano(), schema.IntSlots, schema.FloatSlots,
		f.PresentCount(), f.Payload(), len(encoded), compressed, f.PresenceBytes(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert frame: %w", err)
	}

	logf("stored frame %s sensor=%s present=%d bytes=%d compressed=%d",
		id, sensorID, f.PresentCount(), len(encoded), len(compressed))
	return id, nil
}

// ListFrames returns up to limit frames, newest first. An empty sensorID
// lists every sensor; limit <= 0 means 100.
func (db *DB) ListFrames(ctx context.Context, sensorID string, limit int) ([]FrameRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT frame_id, sensor_id, created_unix_nano, int_slots, float_slots,
			present_count, payload, encoded_size, encoded_zstd, presence
		FROM sensor_frames`
	args := []interface{}{}
	if sensorID != "" {
		query += ` WHERE sensor_id = ?`
		args = append(args, sensorID)
	}
	query += ` ORDER BY created_unix_nano DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query frames: %w", err)
	}
	defer rows.Close()

	var records []FrameRecord
	for rows.Next() {
		rec, err := scanFrame(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate frames: %w", err)
	}
	return records, nil
}

// GetFrame returns the frame stored under id.
func (db *DB) GetFrame(ctx context.Context, id string) (*FrameRecord, error) {
	row := db.QueryRowContext(ctx, `SELECT frame_id, sensor_id, created_unix_nano, int_slots, float_slots,
			present_count, payload, encoded_size, encoded_zstd, presence
		FROM sensor_frames WHERE frame_id = ?`, id)
	rec, err := scanFrame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrFrameNotFound, id)
	}
	return rec, err
}

// CountFrames returns how many frames are stored for sensorID, or in total
// when sensorID is empty.
func (db *DB) CountFrames(ctx context.Context, sensorID string) (int, error) {
	var n int
	var err error
	if sensorID == "" {
		err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sensor_frames`).Scan(&n)
	} else {
		err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sensor_frames WHERE sensor_id = ?`, sensorID).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count frames: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFrame(s rowScanner) (*FrameRecord, error) {
	var (
		rec         FrameRecord
		createdNano int64
		encodedSize int
		compressed  []byte
	)
	if err := s.Scan(
		&rec.ID, &rec.SensorID, &createdNano, &rec.IntSlots, &rec.FloatSlots,
		&rec.PresentCount, &rec.Payload, &encodedSize, &compressed, &rec.Presence,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan frame: %w", err)
	}

	encoded, err := zstdDecoder.DecodeAll(compressed, make([]byte, 0, encodedSize))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress frame %s: %w", rec.ID, err)
	}
	if len(encoded) != encodedSize {
		return nil, fmt.Errorf("frame %s: decompressed %d bytes, expected %d", rec.ID, len(encoded), encodedSize)
	}
	rec.Encoded = encoded
	rec.CreatedAt = time.Unix(0, createdNano).UTC()
	return &rec, nil
}
