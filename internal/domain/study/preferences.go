package study

// Preferences holds the user's scheduling settings. Clock values are "HH:MM"
// in the user's local time.
type Preferences struct {
	StudyWindowStart string `json:"study_window_start" validate:"omitempty,datetime=15:04"`
	StudyWindowEnd   string `json:"study_window_end" validate:"omitempty,datetime=15:04"`
	PreferredStart   string `json:"preferred_start" validate:"omitempty,datetime=15:04"`
	PreferredEnd     string `json:"preferred_end" validate:"omitempty,datetime=15:04"`
	FocusMinutes     int    `json:"focus_minutes" validate:"gte=0,lte=480"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		StudyWindowStart: "08:00",
		StudyWindowEnd:   "22:00",
		FocusMinutes:     25,
	}
}
