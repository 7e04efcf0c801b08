package corrections

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidygrid/tidygrid/pkg/models"
)

func testDataSet() *models.DataSet {
	return &models.DataSet{
		Clients: []models.Client{
			{ClientID: "C1", ClientName: "Acme", PriorityLevel: 9, RequestedTaskIDs: []string{"T1"}},
		},
		Workers: []models.Worker{
			{WorkerID: "W1", WorkerName: "Ada", Skills: []string{"welding"}},
		},
		Tasks: []models.Task{
			{TaskID: "T1", Duration: 0, PreferredPhases: []int{1}},
		},
	}
}

func TestApply_ReplaceScalar(t *testing.T) {
	dataset := testDataSet()

	err := Apply(dataset, models.Correction{
		RowID:          "C1",
		EntityType:     models.EntityTypeClient,
		Field:          "PriorityLevel",
		NewValue:       float64(3), // JSON numbers decode as float64
		CorrectionType: models.CorrectionReplace,
	})

	require.NoError(t, err)
	assert.Equal(t, 3, dataset.Clients[0].PriorityLevel)
}

func TestApply_ReplaceListWritesVerbatim(t *testing.T) {
	dataset := testDataSet()

	err := Apply(dataset, models.Correction{
		RowID:          "C1",
		EntityType:     models.EntityTypeClient,
		Field:          "RequestedTaskIDs",
		NewValue:       []any{"T1", "T1", "T2"},
		CorrectionType: models.CorrectionReplace,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"T1", "T1", "T2"}, dataset.Clients[0].RequestedTaskIDs)
}

func TestApply_ReplaceIntSetWritesVerbatim(t *testing.T) {
	dataset := testDataSet()

	err := Apply(dataset, models.Correction{
		RowID:          "T1",
		EntityType:     models.EntityTypeTask,
		Field:          "PreferredPhases",
		NewValue:       []any{float64(2), float64(2), float64(3)},
		CorrectionType: models.CorrectionReplace,
	})

	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 3}, dataset.Tasks[0].PreferredPhases)
}

func TestApply_AppendIsIdempotent(t *testing.T) {
	dataset := testDataSet()

	correction := models.Correction{
		RowID:          "W1",
		EntityType:     models.EntityTypeWorker,
		Field:          "Skills",
		NewValue:       "plumbing", // scalar coerced to one-element sequence
		CorrectionType: models.CorrectionAppend,
	}

	require.NoError(t, Apply(dataset, correction))
	assert.Equal(t, []string{"welding", "plumbing"}, dataset.Workers[0].Skills)

	require.NoError(t, Apply(dataset, correction))
	assert.Equal(t, []string{"welding", "plumbing"}, dataset.Workers[0].Skills)
}

func TestApply_AppendIntSet(t *testing.T) {
	dataset := testDataSet()

	err := Apply(dataset, models.Correction{
		RowID:          "T1",
		EntityType:     models.EntityTypeTask,
		Field:          "PreferredPhases",
		NewValue:       []any{float64(2), float64(1)},
		CorrectionType: models.CorrectionAppend,
	})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, dataset.Tasks[0].PreferredPhases)
}

func TestApply_AppendToScalarFieldFails(t *testing.T) {
	dataset := testDataSet()

	err := Apply(dataset, models.Correction{
		RowID:          "C1",
		EntityType:     models.EntityTypeClient,
		Field:          "ClientName",
		NewValue:       "Emca",
		CorrectionType: models.CorrectionAppend,
	})

	assert.ErrorIs(t, err, ErrNotAppendable)
}

func TestApply_ReplaceAttributes(t *testing.T) {
	dataset := testDataSet()
	dataset.Clients[0].AttributesJSON = models.InvalidAttributes("{oops")

	err := Apply(dataset, models.Correction{
		RowID:          "C1",
		EntityType:     models.EntityTypeClient,
		Field:          "AttributesJSON",
		NewValue:       map[string]any{"budget": float64(10000)},
		CorrectionType: models.CorrectionReplace,
	})

	require.NoError(t, err)
	assert.False(t, dataset.Clients[0].AttributesJSON.Invalid())
	assert.Equal(t, float64(10000), dataset.Clients[0].AttributesJSON["budget"])
}

func TestApply_RowNotFound(t *testing.T) {
	err := Apply(testDataSet(), models.Correction{
		RowID:          "C9",
		EntityType:     models.EntityTypeClient,
		Field:          "ClientName",
		NewValue:       "x",
		CorrectionType: models.CorrectionReplace,
	})

	assert.ErrorIs(t, err, ErrRowNotFound)
}

func TestApply_UnknownEntityType(t *testing.T) {
	err := Apply(testDataSet(), models.Correction{
		RowID:          "C1",
		EntityType:     "invoice",
		Field:          "ClientName",
		NewValue:       "x",
		CorrectionType: models.CorrectionReplace,
	})

	assert.ErrorIs(t, err, ErrUnknownEntityType)
}

func TestApply_UnknownField(t *testing.T) {
	err := Apply(testDataSet(), models.Correction{
		RowID:          "W1",
		EntityType:     models.EntityTypeWorker,
		Field:          "FavoriteColor",
		NewValue:       "teal",
		CorrectionType: models.CorrectionReplace,
	})

	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestApply_InvalidValue(t *testing.T) {
	err := Apply(testDataSet(), models.Correction{
		RowID:          "T1",
		EntityType:     models.EntityTypeTask,
		Field:          "Duration",
		NewValue:       "not-a-number",
		CorrectionType: models.CorrectionReplace,
	})

	assert.ErrorIs(t, err, ErrInvalidValue)
}
