package entities

import "encoding/json"

type ModuleItemType string

const (
	ItemMultipleChoice ModuleItemType = "MULTIPLE_CHOICE"
	ItemCheckboxes     ModuleItemType = "CHECKBOXES"
	ItemText           ModuleItemType = "TEXT"
	ItemImage          ModuleItemType = "IMAGE"
	ItemYoutube        ModuleItemType = "YOUTUBE"
)

// Scorable reports whether answers to the item can be checked by option-set comparison.
func (t ModuleItemType) Scorable() bool {
	return t == ItemMultipleChoice || t == ItemCheckboxes
}

type ModuleOption struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct *bool  `json:"correct,omitempty"`
}

// IsCorrect treats a missing flag as incorrect.
func (o ModuleOption) IsCorrect() bool { return o.Correct != nil && *o.Correct }

type ModuleItem struct {
	ID      string         `json:"id"`
	Type    ModuleItemType `json:"type"`
	Text    string         `json:"text"`
	Options []ModuleOption `json:"options,omitempty"`
}

type TrainingModule struct {
	ID                uint64          `json:"id" db:"id"`
	Name              string          `json:"name" db:"name"`
	Quiz              []ModuleItem    `json:"quiz" db:"quiz"`
	ReservationPrompt json.RawMessage `json:"reservationPrompt,omitempty" db:"reservation_prompt"`
	Archived          bool            `json:"archived" db:"archived"`
}

// WithoutAnswers returns a deep copy of the module with every correctness flag removed.
func (m *TrainingModule) WithoutAnswers() *TrainingModule {
	stripped := *m
	stripped.Quiz = make([]ModuleItem, len(m.Quiz))
	for i, item := range m.Quiz {
		copied := item
		if item.Options != nil {
			copied.Options = make([]ModuleOption, len(item.Options))
			for j, option := range item.Options {
				option.Correct = nil
				copied.Options[j] = option
			}
		}
		stripped.Quiz[i] = copied
	}
	return &stripped
}
