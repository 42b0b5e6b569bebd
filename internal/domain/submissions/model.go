package submissions

import "time"

// Fulfillment pipeline stages, forward-only. DELIVERED is terminal.
const (
	StatusNew        = "NEW"
	StatusInProgress = "IN_PROGRESS"
	StatusQA         = "QA"
	StatusDelivered  = "DELIVERED"
)

const (
	LanguageEN   = "EN"
	LanguageAR   = "AR"
	LanguageBoth = "BOTH"
)

// Submission is one resume-service request. OrderID is nullable: a submission
// may be filed while payment confirmation is still in flight, or in
// storage-degraded mode without uploaded files.
type Submission struct {
	ID                 string  `gorm:"primaryKey" json:"id"`
	UserID             string  `gorm:"not null;index:idx_submissions_user_id" json:"userId"`
	OrderID            *string `gorm:"column:order_id" json:"orderId"`
	RoleTarget         string  `gorm:"not null" json:"roleTarget"`
	Industry           string  `json:"industry"`
	Language           string  `gorm:"type:varchar(4);not null;default:'EN'" json:"language"`
	JobAdURL           string  `gorm:"column:job_ad_url" json:"jobAdUrl"`
	JobAdText          string  `gorm:"column:job_ad_text" json:"jobAdText"`
	Notes              string  `json:"notes"`
	CVFileURL          string  `gorm:"column:cv_file_url" json:"cvFileUrl"`
	CoverLetterFileURL string  `gorm:"column:cover_letter_file_url" json:"coverLetterFileUrl"`
	Status             string  `gorm:"type:varchar(12);not null;default:'NEW'" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var stageRank = map[string]int{
	StatusNew:        0,
	StatusInProgress: 1,
	StatusQA:         2,
	StatusDelivered:  3,
}

// ValidStatus reports whether s names a pipeline stage.
func ValidStatus(s string) bool {
	_, ok := stageRank[s]
	return ok
}

// CanAdvance reports whether a submission may move from one stage to the next.
// Stages only move forward, and DELIVERED admits no further moves.
func CanAdvance(from, to string) bool {
	f, okF := stageRank[from]
	t, okT := stageRank[to]
	return okF && okT && t > f
}

// ValidLanguage reports whether l is one of the supported delivery languages.
func ValidLanguage(l string) bool {
	switch l {
	case LanguageEN, LanguageAR, LanguageBoth:
		return true
	}
	return false
}
