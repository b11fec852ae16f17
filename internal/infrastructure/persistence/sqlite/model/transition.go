package model

type Transition struct {
	TransitionID    uint64  `gorm:"column:transition_id;primaryKey;autoIncrement"`
	SubmissionID    string  `gorm:"column:submission_id;type:text;not null;index"`
	FromState       string  `gorm:"column:from_state;type:text;not null"`
	ToState         string  `gorm:"column:to_state;type:text;not null"`
	Action          string  `gorm:"column:action;type:text;not null"`
	ActorID         string  `gorm:"column:actor_id;type:text;not null"`
	ActorRole       string  `gorm:"column:actor_role;type:text;not null"`
	GeneralText     string  `gorm:"column:general_text;type:text;not null"`
	AnnotationsJSON string  `gorm:"column:annotations_json;type:text;not null"`
	DueDate         *string `gorm:"column:due_date;type:text"`
	SchedulingHint  *string `gorm:"column:scheduling_hint;type:text"`
	CreatedAt       string  `gorm:"column:created_at;type:text;not null"`
}

func (Transition) TableName() string {
	return "transitions"
}
