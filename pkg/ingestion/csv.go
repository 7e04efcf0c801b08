// Package ingestion parses uploaded spreadsheet exports into entity rows.
//
// Parsing is deliberately tolerant: headers are matched case- and
// separator-insensitively, numeric cells that fail to parse coerce to zero so
// the validation pass can flag them, and unparseable attribute JSON becomes
// the invalid-sentinel instead of failing the upload.
package ingestion

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tidygrid/tidygrid/pkg/models"
)

// ErrEmptyFile is returned when a table file has no header row.
var ErrEmptyFile = errors.New("file has no header row")

// ParseClients reads the Clients table from CSV.
func ParseClients(r io.Reader) ([]models.Client, error) {
	header, records, err := readTable(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read clients table: %w", err)
	}

	clients := make([]models.Client, 0, len(records))

	for _, record := range records {
		clients = append(clients, models.Client{
			ClientID:         header.get(record, "clientid"),
			ClientName:       header.get(record, "clientname"),
			PriorityLevel:    parseInt(header.get(record, "prioritylevel")),
			RequestedTaskIDs: splitList(header.get(record, "requestedtaskids")),
			GroupTag:         header.get(record, "grouptag"),
			AttributesJSON:   parseAttributes(header.get(record, "attributesjson")),
		})
	}

	return clients, nil
}

// ParseWorkers reads the Workers table from CSV.
func ParseWorkers(r io.Reader) ([]models.Worker, error) {
	header, records, err := readTable(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workers table: %w", err)
	}

	workers := make([]models.Worker, 0, len(records))

	for _, record := range records {
		workers = append(workers, models.Worker{
			WorkerID:           header.get(record, "workerid"),
			WorkerName:         header.get(record, "workername"),
			Skills:             splitList(header.get(record, "skills")),
			AvailableSlots:     parsePhaseList(header.get(record, "availableslots")),
			MaxLoadPerPhase:    parseInt(header.get(record, "maxloadperphase")),
			WorkerGroup:        header.get(record, "workergroup"),
			QualificationLevel: parseInt(header.get(record, "qualificationlevel")),
		})
	}

	return workers, nil
}

// ParseTasks reads the Tasks table from CSV.
func ParseTasks(r io.Reader) ([]models.Task, error) {
	header, records, err := readTable(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read tasks table: %w", err)
	}

	tasks := make([]models.Task, 0, len(records))

	for _, record := range records {
		tasks = append(tasks, models.Task{
			TaskID:          header.get(record, "taskid"),
			TaskName:        header.get(record, "taskname"),
			Category:        header.get(record, "category"),
			Duration:        parseInt(header.get(record, "duration")),
			RequiredSkills:  splitList(header.get(record, "requiredskills")),
			PreferredPhases: parsePhaseList(header.get(record, "preferredphases")),
			MaxConcurrent:   parseInt(header.get(record, "maxconcurrent")),
		})
	}

	return tasks, nil
}

// LoadDataSet parses all three tables. A nil reader leaves its table empty,
// so partial uploads are allowed.
func LoadDataSet(clients, workers, tasks io.Reader) (*models.DataSet, error) {
	dataset := &models.DataSet{
		Clients: []models.Client{},
		Workers: []models.Worker{},
		Tasks:   []models.Task{},
	}

	var err error

	if clients != nil {
		if dataset.Clients, err = ParseClients(clients); err != nil {
			return nil, err
		}
	}

	if workers != nil {
		if dataset.Workers, err = ParseWorkers(workers); err != nil {
			return nil, err
		}
	}

	if tasks != nil {
		if dataset.Tasks, err = ParseTasks(tasks); err != nil {
			return nil, err
		}
	}

	return dataset, nil
}

// headerIndex maps normalized column names to positions.
type headerIndex map[string]int

func (h headerIndex) get(record []string, name string) string {
	idx, ok := h[name]
	if !ok || idx >= len(record) {
		return ""
	}

	return strings.TrimSpace(record[idx])
}

func readTable(r io.Reader) (headerIndex, [][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows happen in hand-edited sheets
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(rows) == 0 {
		return nil, nil, ErrEmptyFile
	}

	header := make(headerIndex, len(rows[0]))
	for i, name := range rows[0] {
		header[normalizeHeader(name)] = i
	}

	return header, rows[1:], nil
}

// normalizeHeader matches "ClientID", "client_id" and "Client Id" alike.
func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "_", "")
	name = strings.ReplaceAll(name, " ", "")
	name = strings.ReplaceAll(name, "-", "")

	return name
}

func parseInt(cell string) int {
	value, err := strconv.Atoi(strings.TrimSpace(cell))
	if err != nil {
		return 0
	}

	return value
}

func splitList(cell string) []string {
	if strings.TrimSpace(cell) == "" {
		return nil
	}

	parts := strings.Split(cell, ",")
	out := make([]string, 0, len(parts))

	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}

// parsePhaseList accepts "1,2,3", "[1,2,3]" and range syntax "1-3", all of
// which appear in real uploads.
func parsePhaseList(cell string) []int {
	cell = strings.TrimSpace(cell)
	cell = strings.TrimPrefix(cell, "[")
	cell = strings.TrimSuffix(cell, "]")

	if cell == "" {
		return nil
	}

	var phases []int

	for _, part := range strings.Split(cell, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if low, high, ok := strings.Cut(part, "-"); ok {
			start, startErr := strconv.Atoi(strings.TrimSpace(low))
			end, endErr := strconv.Atoi(strings.TrimSpace(high))

			if startErr == nil && endErr == nil && start <= end {
				for phase := start; phase <= end; phase++ {
					phases = append(phases, phase)
				}
			}

			continue
		}

		if phase, err := strconv.Atoi(part); err == nil {
			phases = append(phases, phase)
		}
	}

	return phases
}

func parseAttributes(cell string) models.Attributes {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}

	var attrs map[string]any
	if err := json.Unmarshal([]byte(cell), &attrs); err != nil {
		return models.InvalidAttributes(cell)
	}

	return models.Attributes(attrs)
}
