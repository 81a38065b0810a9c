package database

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"airport_sim/internal/models"
)

type FleetRepository interface {
	InsertBatch(planes []*models.Plane) error
	IsTablePopulated() (bool, error)
	LoadFromCSV(csvPath string, batchSize int) error
	List() ([]*models.Plane, error)
}

type fleetRepository struct {
	db *sql.DB
}

func NewFleetRepository(db *sql.DB) FleetRepository {
	return &fleetRepository{db: db}
}

// InsertBatch inserts or replaces planes in a single transaction
func (r *fleetRepository) InsertBatch(planes []*models.Plane) error {
	if len(planes) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO fleet (
		id, icao24, typecode, operator, registration
	) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range planes {
		if _, err := stmt.Exec(p.ID, p.ICAO24, p.TypeCode, p.Operator, p.Registration); err != nil {
			return fmt.Errorf("failed to insert plane %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *fleetRepository) IsTablePopulated() (bool, error) {
	var ignored int
	err := r.db.QueryRow("SELECT 1 FROM fleet LIMIT 1").Scan(&ignored)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check fleet table: %w", err)
	}
	return true, nil
}

// List returns every registered plane ordered by id. Each call returns fresh
// Plane values, so callers should list once and keep the pointers.
func (r *fleetRepository) List() ([]*models.Plane, error) {
	rows, err := r.db.Query(`SELECT id, icao24, typecode, operator, registration FROM fleet ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query fleet: %w", err)
	}
	defer rows.Close()

	var planes []*models.Plane
	for rows.Next() {
		var (
			p                                        models.Plane
			icao24, typecode, operator, registration sql.NullString
		)
		if err := rows.Scan(&p.ID, &icao24, &typecode, &operator, &registration); err != nil {
			return nil, fmt.Errorf("failed to scan plane: %w", err)
		}
		p.ICAO24 = icao24.String
		p.TypeCode = typecode.String
		p.Operator = operator.String
		p.Registration = registration.String
		planes = append(planes, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read fleet: %w", err)
	}
	return planes, nil
}

// LoadFromCSV loads planes from a CSV file with a header row. Recognised
// columns are id, icao24, typecode, operator and registration; id falls back
// to registration, then icao24. Rows without any identifier are skipped.
func (r *fleetRepository) LoadFromCSV(csvPath string, batchSize int) error {
	if batchSize <= 0 {
		batchSize = 500
	}

	file, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("failed to open CSV file %s: %w", csvPath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header from %s: %w", csvPath, err)
	}
	headerMap := make(map[string]int, len(header))
	for i, h := range header {
		headerMap[strings.ToLower(strings.Trim(strings.TrimSpace(h), "'\""))] = i
	}

	batch := make([]*models.Plane, 0, batchSize)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read CSV record from %s: %w", csvPath, err)
		}

		p := &models.Plane{
			ID:           getField(record, headerMap, "id"),
			ICAO24:       strings.ToLower(getField(record, headerMap, "icao24")),
			TypeCode:     getField(record, headerMap, "typecode"),
			Operator:     getField(record, headerMap, "operator"),
			Registration: getField(record, headerMap, "registration"),
		}
		if p.ID == "" {
			p.ID = p.Registration
		}
		if p.ID == "" {
			p.ID = p.ICAO24
		}
		if p.ID == "" {
			continue
		}

		batch = append(batch, p)
		if len(batch) >= batchSize {
			if err := r.InsertBatch(batch); err != nil {
				return fmt.Errorf("failed to insert batch: %w", err)
			}
			batch = batch[:0]
		}
	}

	if err := r.InsertBatch(batch); err != nil {
		return fmt.Errorf("failed to insert final batch: %w", err)
	}

	return nil
}

// getField safely retrieves a field from a CSV record by header name
func getField(record []string, headerMap map[string]int, fieldName string) string {
	if idx, ok := headerMap[fieldName]; ok && idx < len(record) {
		return strings.Trim(strings.TrimSpace(record[idx]), "'\"")
	}
	return ""
}
