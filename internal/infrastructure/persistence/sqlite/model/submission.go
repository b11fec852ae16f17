package model

type Submission struct {
	SubmissionID    string `gorm:"column:submission_id;type:text;primaryKey"`
	CampaignID      string `gorm:"column:campaign_id;type:text;not null;index"`
	CreatorID       string `gorm:"column:creator_id;type:text;not null;index"`
	ContentKind     string `gorm:"column:content_kind;type:text;not null"`
	ContentRef      string `gorm:"column:content_ref;type:text;not null"`
	DurationSeconds int    `gorm:"column:duration_seconds;not null;default:0"`
	State           string `gorm:"column:state;type:text;not null;index"`
	Version         int64  `gorm:"column:version;not null;default:0"`
	CreatedAt       string `gorm:"column:created_at;type:text;not null"`
	UpdatedAt       string `gorm:"column:updated_at;type:text;not null"`
}

func (Submission) TableName() string {
	return "submissions"
}
