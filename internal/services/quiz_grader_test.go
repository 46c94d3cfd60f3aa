package services

import (
	"errors"
	"testing"

	"makerspace/internal/dto"
	"makerspace/internal/entities"
	apperrors "makerspace/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quizModule() *entities.TrainingModule {
	return &entities.TrainingModule{
		ID:   7,
		Name: "Drill Press Safety",
		Quiz: []entities.ModuleItem{
			{ID: "intro", Type: entities.ItemText, Text: "Read carefully."},
			{ID: "q1", Type: entities.ItemCheckboxes, Options: []entities.ModuleOption{
				option("1", true), option("2", true), option("3", false),
			}},
			{ID: "video", Type: entities.ItemYoutube},
			{ID: "q2", Type: entities.ItemMultipleChoice, Options: []entities.ModuleOption{
				option("a", false), option("b", true),
			}},
		},
	}
}

func TestGradeSubmission_SetEquality(t *testing.T) {
	tests := []struct {
		name      string
		submitted []string
		correct   bool
	}{
		{"same order", []string{"1", "2"}, true},
		{"reversed order", []string{"2", "1"}, true},
		{"duplicates collapse", []string{"2", "1", "2"}, true},
		{"subset", []string{"1"}, false},
		{"superset", []string{"1", "2", "3"}, false},
		{"disjoint", []string{"3"}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grade, err := GradeSubmission(quizModule(), []dto.AnswerDTO{
				{ItemID: "q1", OptionIDs: tt.submitted},
				{ItemID: "q2", OptionIDs: []string{"b"}},
			})
			require.NoError(t, err)
			assert.Equal(t, 2, grade.Total)
			if tt.correct {
				assert.Equal(t, 2, grade.Correct)
				assert.Equal(t, 100, grade.Score)
				assert.True(t, grade.Passed)
			} else {
				assert.Equal(t, 1, grade.Correct)
				assert.Equal(t, 50, grade.Score)
				assert.False(t, grade.Passed)
			}
		})
	}
}

func TestGradeSubmission_MissingAnswerIsIncorrect(t *testing.T) {
	grade, err := GradeSubmission(quizModule(), []dto.AnswerDTO{{ItemID: "q2", OptionIDs: []string{"b"}}})
	require.NoError(t, err)
	assert.Equal(t, 1, grade.Correct)
	assert.Equal(t, 2, grade.Total)
}

func TestGradeSubmission_AnswersToUnknownItemsAreIgnored(t *testing.T) {
	grade, err := GradeSubmission(quizModule(), []dto.AnswerDTO{
		{ItemID: "intro", OptionIDs: []string{"x"}},
		{ItemID: "nope", OptionIDs: []string{"1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, grade.Correct)
	assert.Equal(t, 2, grade.Total)
}

func TestGradeSubmission_ThresholdAndFloor(t *testing.T) {
	items := make([]entities.ModuleItem, 0, 5)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		items = append(items, entities.ModuleItem{ID: id, Type: entities.ItemMultipleChoice, Options: []entities.ModuleOption{
			option("yes", true), option("no", false),
		}})
	}
	module := &entities.TrainingModule{ID: 1, Quiz: items}

	answer := func(n int) []dto.AnswerDTO {
		var answers []dto.AnswerDTO
		for i, item := range items {
			choice := "no"
			if i < n {
				choice = "yes"
			}
			answers = append(answers, dto.AnswerDTO{ItemID: item.ID, OptionIDs: []string{choice}})
		}
		return answers
	}

	grade, err := GradeSubmission(module, answer(4))
	require.NoError(t, err)
	assert.Equal(t, 80, grade.Score)
	assert.True(t, grade.Passed, "exactly the threshold passes")

	grade, err = GradeSubmission(module, answer(3))
	require.NoError(t, err)
	assert.Equal(t, 60, grade.Score)
	assert.False(t, grade.Passed)

	module.Quiz = items[:3]
	grade, err = GradeSubmission(module, answer(2)[:3])
	require.NoError(t, err)
	assert.Equal(t, 66, grade.Score, "score is rounded down")
	assert.False(t, grade.Passed)
}

func TestGradeSubmission_NoScorableItems(t *testing.T) {
	module := &entities.TrainingModule{ID: 3, Quiz: []entities.ModuleItem{
		{ID: "t", Type: entities.ItemText},
		{ID: "i", Type: entities.ItemImage},
	}}
	_, err := GradeSubmission(module, nil)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidState))
}

func TestGradeSubmission_ScorableItemWithoutOptions(t *testing.T) {
	module := &entities.TrainingModule{ID: 3, Quiz: []entities.ModuleItem{{ID: "q", Type: entities.ItemCheckboxes}}}
	_, err := GradeSubmission(module, []dto.AnswerDTO{{ItemID: "q"}})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidState))
}

func TestGradeSubmission_DuplicateItemAnswersRejected(t *testing.T) {
	_, err := GradeSubmission(quizModule(), []dto.AnswerDTO{
		{ItemID: "q2", OptionIDs: []string{"a"}},
		{ItemID: "q2", OptionIDs: []string{"b"}},
	})
	var invalid *apperrors.InvalidInputError
	assert.True(t, errors.As(err, &invalid))
}
