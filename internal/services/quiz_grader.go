package services

import (
	"fmt"
	"time"

	"makerspace/internal/dto"
	"makerspace/internal/entities"
	apperrors "makerspace/pkg/errors"
)

const (
	// PassingThreshold is the minimum score, in percent, of a passing attempt.
	PassingThreshold = 80
	// SubmissionValidity is how long a passing attempt counts toward access.
	SubmissionValidity = 365 * 24 * time.Hour
)

// Grade is the outcome of grading one answer sheet.
type Grade struct {
	Score   int
	Passed  bool
	Correct int
	Total   int
}

// GradeSubmission scores an answer sheet against the module's answer key.
// Only multiple choice and checkbox items count; an item is correct when the
// submitted option set equals the correct option set exactly. A module with no
// scorable items cannot be graded.
func GradeSubmission(module *entities.TrainingModule, answers []dto.AnswerDTO) (Grade, error) {
	submitted := make(map[string]map[string]struct{}, len(answers))
	for _, answer := range answers {
		if _, dup := submitted[answer.ItemID]; dup {
			return Grade{}, apperrors.NewInvalidInputError("item %q is answered more than once", answer.ItemID)
		}
		submitted[answer.ItemID] = toSet(answer.OptionIDs)
	}

	var grade Grade
	for _, item := range module.Quiz {
		if !item.Type.Scorable() {
			continue
		}
		if len(item.Options) == 0 {
			return Grade{}, fmt.Errorf("item %q of module #%d has no options: %w", item.ID, module.ID, apperrors.ErrInvalidState)
		}

		correct := make(map[string]struct{})
		for _, option := range item.Options {
			if option.IsCorrect() {
				correct[option.ID] = struct{}{}
			}
		}

		grade.Total++
		if chosen, ok := submitted[item.ID]; ok && sameSet(chosen, correct) {
			grade.Correct++
		}
	}

	if grade.Total == 0 {
		return Grade{}, fmt.Errorf("module #%d has no scorable items: %w", module.ID, apperrors.ErrInvalidState)
	}

	grade.Score = grade.Correct * 100 / grade.Total
	grade.Passed = grade.Correct*100 >= PassingThreshold*grade.Total
	return grade, nil
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func sameSet(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if _, ok := b[id]; !ok {
			return false
		}
	}
	return true
}
