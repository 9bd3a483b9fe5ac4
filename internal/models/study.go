package models

// StudyOptions configures a new study session.
type StudyOptions struct {
	Mode          string         `json:"mode" validate:"omitempty,oneof=flashcard learn"`
	IgnoreDueDate bool           `json:"ignoreDueDate"`
	Types         []QuestionType `json:"types" validate:"omitempty,dive,oneof=multiple_choices written"`
	Direction     Direction      `json:"direction" validate:"omitempty,oneof=term_to_def def_to_term both"`
}

// SaveAnswersRequest is the body of an answer persistence call.
type SaveAnswersRequest struct {
	Answers []Answer `json:"answers" validate:"dive"`
}
