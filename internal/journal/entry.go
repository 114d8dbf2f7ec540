package journal

import "time"

// Period is one part of the day an entry covers.
type Period string

const (
	Morning   Period = "morning"
	Afternoon Period = "afternoon"
	Evening   Period = "evening"
)

// Periods lists the periods in chronological order.
var Periods = []Period{Morning, Afternoon, Evening}

// Fields holds everything the caller supplies for a new entry.
type Fields struct {
	Morning   string `json:"morning" validate:"required"`
	Afternoon string `json:"afternoon" validate:"required"`
	Evening   string `json:"evening" validate:"required"`

	MorningMood  string `json:"morningMood" validate:"required"`
	MorningScore int    `json:"morningScore" validate:"min=1,max=10"`
	MorningTip   string `json:"morningTip,omitempty"`

	AfternoonMood  string `json:"afternoonMood" validate:"required"`
	AfternoonScore int    `json:"afternoonScore" validate:"min=1,max=10"`
	AfternoonTip   string `json:"afternoonTip,omitempty"`

	EveningMood  string `json:"eveningMood" validate:"required"`
	EveningScore int    `json:"eveningScore" validate:"min=1,max=10"`
	EveningTip   string `json:"eveningTip,omitempty"`

	OverallMood  string `json:"overallMood" validate:"required"`
	OverallScore int    `json:"overallScore" validate:"min=1,max=10"`
	DailySummary string `json:"dailySummary,omitempty"`

	// Date is the calendar day the entry was written for. It is informational;
	// ordering always uses CreatedAt.
	Date string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// Entry is one persisted day of journaling.
type Entry struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Fields
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PeriodView is the slice of an entry that belongs to one period.
type PeriodView struct {
	Period Period
	Text   string
	Mood   string
	Score  int
	Tip    string
}

// Period returns the text and analysis recorded for p.
func (f Fields) Period(p Period) PeriodView {
	switch p {
	case Morning:
		return PeriodView{p, f.Morning, f.MorningMood, f.MorningScore, f.MorningTip}
	case Afternoon:
		return PeriodView{p, f.Afternoon, f.AfternoonMood, f.AfternoonScore, f.AfternoonTip}
	case Evening:
		return PeriodView{p, f.Evening, f.EveningMood, f.EveningScore, f.EveningTip}
	}
	return PeriodView{Period: p}
}

// Patch changes selected fields of an existing entry. Nil fields are left
// unchanged. Identity and CreatedAt can never be patched.
type Patch struct {
	Morning   *string `json:"morning,omitempty" validate:"omitnil,min=1"`
	Afternoon *string `json:"afternoon,omitempty" validate:"omitnil,min=1"`
	Evening   *string `json:"evening,omitempty" validate:"omitnil,min=1"`

	MorningMood  *string `json:"morningMood,omitempty" validate:"omitnil,min=1"`
	MorningScore *int    `json:"morningScore,omitempty" validate:"omitnil,min=1,max=10"`
	MorningTip   *string `json:"morningTip,omitempty"`

	AfternoonMood  *string `json:"afternoonMood,omitempty" validate:"omitnil,min=1"`
	AfternoonScore *int    `json:"afternoonScore,omitempty" validate:"omitnil,min=1,max=10"`
	AfternoonTip   *string `json:"afternoonTip,omitempty"`

	EveningMood  *string `json:"eveningMood,omitempty" validate:"omitnil,min=1"`
	EveningScore *int    `json:"eveningScore,omitempty" validate:"omitnil,min=1,max=10"`
	EveningTip   *string `json:"eveningTip,omitempty"`

	OverallMood  *string `json:"overallMood,omitempty" validate:"omitnil,min=1"`
	OverallScore *int    `json:"overallScore,omitempty" validate:"omitnil,min=1,max=10"`
	DailySummary *string `json:"dailySummary,omitempty"`

	Date *string `json:"date,omitempty" validate:"omitnil,datetime=2006-01-02"`
}

// Apply merges the patch into f.
func (p Patch) Apply(f *Fields) {
	setString(&f.Morning, p.Morning)
	setString(&f.Afternoon, p.Afternoon)
	setString(&f.Evening, p.Evening)
	setString(&f.MorningMood, p.MorningMood)
	setInt(&f.MorningScore, p.MorningScore)
	setString(&f.MorningTip, p.MorningTip)
	setString(&f.AfternoonMood, p.AfternoonMood)
	setInt(&f.AfternoonScore, p.AfternoonScore)
	setString(&f.AfternoonTip, p.AfternoonTip)
	setString(&f.EveningMood, p.EveningMood)
	setInt(&f.EveningScore, p.EveningScore)
	setString(&f.EveningTip, p.EveningTip)
	setString(&f.OverallMood, p.OverallMood)
	setInt(&f.OverallScore, p.OverallScore)
	setString(&f.DailySummary, p.DailySummary)
	setString(&f.Date, p.Date)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
