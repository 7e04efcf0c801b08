// Package corrections applies externally proposed field fixes to a dataset.
//
// Applying a correction is an unconditional field write. It never re-runs the
// validators that produced the original issue; the next full validation pass
// decides whether the issue is actually resolved.
package corrections

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/tidygrid/tidygrid/pkg/models"
)

var (
	// ErrRowNotFound is returned when the correction targets a row that is not
	// in the dataset.
	ErrRowNotFound = errors.New("row not found")
	// ErrUnknownEntityType is returned for an entity type outside client,
	// worker, task.
	ErrUnknownEntityType = errors.New("unknown entity type")
	// ErrUnknownField is returned when the named field does not exist on the
	// target entity.
	ErrUnknownField = errors.New("unknown field")
	// ErrInvalidValue is returned when the proposed value cannot be coerced to
	// the field's type.
	ErrInvalidValue = errors.New("invalid value for field")
	// ErrNotAppendable is returned when an append correction targets a field
	// that is not set-valued.
	ErrNotAppendable = errors.New("field is not set-valued")
)

// Apply writes one correction into the dataset in place. Values arrive from
// JSON, so scalars may be float64 or string and sequences may be []any; the
// write coerces them to the field's declared type.
func Apply(dataset *models.DataSet, correction models.Correction) error {
	switch correction.EntityType {
	case models.EntityTypeClient:
		for i := range dataset.Clients {
			if dataset.Clients[i].ClientID == correction.RowID {
				return applyClient(&dataset.Clients[i], correction)
			}
		}
	case models.EntityTypeWorker:
		for i := range dataset.Workers {
			if dataset.Workers[i].WorkerID == correction.RowID {
				return applyWorker(&dataset.Workers[i], correction)
			}
		}
	case models.EntityTypeTask:
		for i := range dataset.Tasks {
			if dataset.Tasks[i].TaskID == correction.RowID {
				return applyTask(&dataset.Tasks[i], correction)
			}
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEntityType, correction.EntityType)
	}

	return fmt.Errorf("%w: %s %q", ErrRowNotFound, correction.EntityType, correction.RowID)
}

func applyClient(client *models.Client, correction models.Correction) error {
	switch correction.Field {
	case "ClientID":
		return writeString(&client.ClientID, correction)
	case "ClientName":
		return writeString(&client.ClientName, correction)
	case "PriorityLevel":
		return writeInt(&client.PriorityLevel, correction)
	case "RequestedTaskIDs":
		return writeStringSet(&client.RequestedTaskIDs, correction)
	case "GroupTag":
		return writeString(&client.GroupTag, correction)
	case "AttributesJSON":
		return writeAttributes(&client.AttributesJSON, correction)
	default:
		return fmt.Errorf("%w: client.%s", ErrUnknownField, correction.Field)
	}
}

func applyWorker(worker *models.Worker, correction models.Correction) error {
	switch correction.Field {
	case "WorkerID":
		return writeString(&worker.WorkerID, correction)
	case "WorkerName":
		return writeString(&worker.WorkerName, correction)
	case "Skills":
		return writeStringSet(&worker.Skills, correction)
	case "AvailableSlots":
		return writeIntSet(&worker.AvailableSlots, correction)
	case "MaxLoadPerPhase":
		return writeInt(&worker.MaxLoadPerPhase, correction)
	case "WorkerGroup":
		return writeString(&worker.WorkerGroup, correction)
	case "QualificationLevel":
		return writeInt(&worker.QualificationLevel, correction)
	default:
		return fmt.Errorf("%w: worker.%s", ErrUnknownField, correction.Field)
	}
}

func applyTask(task *models.Task, correction models.Correction) error {
	switch correction.Field {
	case "TaskID":
		return writeString(&task.TaskID, correction)
	case "TaskName":
		return writeString(&task.TaskName, correction)
	case "Category":
		return writeString(&task.Category, correction)
	case "Duration":
		return writeInt(&task.Duration, correction)
	case "RequiredSkills":
		return writeStringSet(&task.RequiredSkills, correction)
	case "PreferredPhases":
		return writeIntSet(&task.PreferredPhases, correction)
	case "MaxConcurrent":
		return writeInt(&task.MaxConcurrent, correction)
	default:
		return fmt.Errorf("%w: task.%s", ErrUnknownField, correction.Field)
	}
}

func writeString(target *string, correction models.Correction) error {
	if correction.CorrectionType != models.CorrectionReplace {
		return fmt.Errorf("%w: %s", ErrNotAppendable, correction.Field)
	}

	value, err := coerceString(correction.NewValue)
	if err != nil {
		return err
	}

	*target = value

	return nil
}

func writeInt(target *int, correction models.Correction) error {
	if correction.CorrectionType != models.CorrectionReplace {
		return fmt.Errorf("%w: %s", ErrNotAppendable, correction.Field)
	}

	value, err := coerceInt(correction.NewValue)
	if err != nil {
		return err
	}

	*target = value

	return nil
}

func writeAttributes(target *models.Attributes, correction models.Correction) error {
	if correction.CorrectionType != models.CorrectionReplace {
		return fmt.Errorf("%w: %s", ErrNotAppendable, correction.Field)
	}

	switch value := correction.NewValue.(type) {
	case map[string]any:
		*target = models.Attributes(value)
	case models.Attributes:
		*target = value
	case nil:
		*target = nil
	default:
		return fmt.Errorf("%w: AttributesJSON expects an object, got %T", ErrInvalidValue, correction.NewValue)
	}

	return nil
}

func writeStringSet(target *[]string, correction models.Correction) error {
	values, err := coerceStringSlice(correction.NewValue)
	if err != nil {
		return err
	}

	// Replace writes the submitted sequence verbatim; only append dedupes,
	// so a value already present is not added twice.
	if correction.CorrectionType == models.CorrectionReplace {
		*target = values

		return nil
	}

	*target = dedupeStrings(append(*target, values...))

	return nil
}

func writeIntSet(target *[]int, correction models.Correction) error {
	values, err := coerceIntSlice(correction.NewValue)
	if err != nil {
		return err
	}

	if correction.CorrectionType == models.CorrectionReplace {
		*target = values

		return nil
	}

	*target = dedupeInts(append(*target, values...))

	return nil
}

func coerceString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("%w: expected string, got %T", ErrInvalidValue, value)
	}
}

func coerceInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case float64:
		return int(v), nil
	case string:
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, v)
		}

		return parsed, nil
	default:
		return 0, fmt.Errorf("%w: expected integer, got %T", ErrInvalidValue, value)
	}
}

// coerceStringSlice accepts a sequence or a scalar; a scalar becomes a
// one-element sequence so append corrections can carry a single value.
func coerceStringSlice(value any) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))

		for _, item := range v {
			s, err := coerceString(item)
			if err != nil {
				return nil, err
			}

			out = append(out, s)
		}

		return out, nil
	default:
		s, err := coerceString(value)
		if err != nil {
			return nil, err
		}

		return []string{s}, nil
	}
}

func coerceIntSlice(value any) ([]int, error) {
	switch v := value.(type) {
	case []int:
		return v, nil
	case []any:
		out := make([]int, 0, len(v))

		for _, item := range v {
			n, err := coerceInt(item)
			if err != nil {
				return nil, err
			}

			out = append(out, n)
		}

		return out, nil
	default:
		n, err := coerceInt(value)
		if err != nil {
			return nil, err
		}

		return []int{n}, nil
	}
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))

	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}

		seen[value] = struct{}{}

		out = append(out, value)
	}

	return out
}

func dedupeInts(values []int) []int {
	seen := make(map[int]struct{}, len(values))
	out := make([]int, 0, len(values))

	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}

		seen[value] = struct{}{}

		out = append(out, value)
	}

	return out
}
