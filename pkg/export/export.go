// Package export renders a validated dataset back to CSV files plus a rule
// configuration document.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tidygrid/tidygrid/pkg/models"
)

// ErrUnresolvedErrors gates export while error-severity issues remain.
// Warnings never block export.
var ErrUnresolvedErrors = errors.New("dataset has unresolved validation errors")

// RuleConfig is the exported rules.json document.
type RuleConfig struct {
	Rules       []models.Rule `json:"rules"`
	GeneratedAt time.Time     `json:"generatedAt"`
}

// Bundle holds every file of one export.
type Bundle struct {
	ClientsCSV []byte `json:"-"`
	WorkersCSV []byte `json:"-"`
	TasksCSV   []byte `json:"-"`
	RulesJSON  []byte `json:"-"`
}

// Build renders the full export bundle. When the issue list still contains
// errors the export is refused unless force is set; the product gate is
// "discourage, don't block".
func Build(dataset *models.DataSet, issues []models.Issue, force bool) (*Bundle, error) {
	if errorCount, _ := models.CountBySeverity(issues); errorCount > 0 && !force {
		return nil, fmt.Errorf("%w: %d remaining", ErrUnresolvedErrors, errorCount)
	}

	bundle := &Bundle{}

	var buf bytes.Buffer

	if err := WriteClientsCSV(&buf, dataset.Clients); err != nil {
		return nil, err
	}

	bundle.ClientsCSV = append([]byte(nil), buf.Bytes()...)
	buf.Reset()

	if err := WriteWorkersCSV(&buf, dataset.Workers); err != nil {
		return nil, err
	}

	bundle.WorkersCSV = append([]byte(nil), buf.Bytes()...)
	buf.Reset()

	if err := WriteTasksCSV(&buf, dataset.Tasks); err != nil {
		return nil, err
	}

	bundle.TasksCSV = append([]byte(nil), buf.Bytes()...)
	buf.Reset()

	if err := WriteRuleConfig(&buf, dataset.Rules); err != nil {
		return nil, err
	}

	bundle.RulesJSON = append([]byte(nil), buf.Bytes()...)

	return bundle, nil
}

// WriteClientsCSV writes the cleaned Clients table.
func WriteClientsCSV(w io.Writer, clients []models.Client) error {
	writer := csv.NewWriter(w)

	header := []string{"ClientID", "ClientName", "PriorityLevel", "RequestedTaskIDs", "GroupTag", "AttributesJSON"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write clients header: %w", err)
	}

	for _, client := range clients {
		attrs := ""

		if client.AttributesJSON != nil {
			encoded, err := json.Marshal(client.AttributesJSON)
			if err != nil {
				return fmt.Errorf("failed to marshal attributes for %s: %w", client.ClientID, err)
			}

			attrs = string(encoded)
		}

		record := []string{
			client.ClientID,
			client.ClientName,
			strconv.Itoa(client.PriorityLevel),
			strings.Join(client.RequestedTaskIDs, ","),
			client.GroupTag,
			attrs,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write client %s: %w", client.ClientID, err)
		}
	}

	writer.Flush()

	return writer.Error()
}

// WriteWorkersCSV writes the cleaned Workers table.
func WriteWorkersCSV(w io.Writer, workers []models.Worker) error {
	writer := csv.NewWriter(w)

	header := []string{"WorkerID", "WorkerName", "Skills", "AvailableSlots", "MaxLoadPerPhase", "WorkerGroup", "QualificationLevel"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write workers header: %w", err)
	}

	for _, worker := range workers {
		record := []string{
			worker.WorkerID,
			worker.WorkerName,
			strings.Join(worker.Skills, ","),
			joinInts(worker.AvailableSlots),
			strconv.Itoa(worker.MaxLoadPerPhase),
			worker.WorkerGroup,
			strconv.Itoa(worker.QualificationLevel),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write worker %s: %w", worker.WorkerID, err)
		}
	}

	writer.Flush()

	return writer.Error()
}

// WriteTasksCSV writes the cleaned Tasks table.
func WriteTasksCSV(w io.Writer, tasks []models.Task) error {
	writer := csv.NewWriter(w)

	header := []string{"TaskID", "TaskName", "Category", "Duration", "RequiredSkills", "PreferredPhases", "MaxConcurrent"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write tasks header: %w", err)
	}

	for _, task := range tasks {
		record := []string{
			task.TaskID,
			task.TaskName,
			task.Category,
			strconv.Itoa(task.Duration),
			strings.Join(task.RequiredSkills, ","),
			joinInts(task.PreferredPhases),
			strconv.Itoa(task.MaxConcurrent),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write task %s: %w", task.TaskID, err)
		}
	}

	writer.Flush()

	return writer.Error()
}

// WriteRuleConfig writes the rules.json configuration document.
func WriteRuleConfig(w io.Writer, ruleList []models.Rule) error {
	if ruleList == nil {
		ruleList = []models.Rule{}
	}

	config := RuleConfig{
		Rules:       ruleList,
		GeneratedAt: time.Now().UTC(),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to encode rule config: %w", err)
	}

	return nil
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, value := range values {
		parts[i] = strconv.Itoa(value)
	}

	return strings.Join(parts, ",")
}
