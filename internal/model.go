package internal

import "time"

// Mode selects which side of the night the user anchors: a fixed bedtime
// (recommend wake-up times) or a fixed alarm (recommend bedtimes).
type Mode string

const (
	ModeBedtime Mode = "bedtime"
	ModeAlarm   Mode = "alarm"
)

func (m Mode) Valid() bool {
	return m == ModeBedtime || m == ModeAlarm
}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	DOB          string    `json:"dob"` // 2006-01-02
	Age          int       `json:"age"`
	CreatedAt    time.Time `json:"created_at"`
}

// AgeAt returns the user's age in full years at the given date, derived from
// DOB. The stored Age field is refreshed against this at every login.
func (u *User) AgeAt(now time.Time) (int, error) {
	dob, err := time.Parse("2006-01-02", u.DOB)
	if err != nil {
		return 0, err
	}
	age := now.Year() - dob.Year()
	if now.YearDay() < dob.YearDay() {
		age--
	}
	if age < 0 {
		age = 0
	}
	return age, nil
}

type SleepLogEntry struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Date         string    `json:"date"`          // display string, e.g. "04/30/2025"
	Hours        float64   `json:"hours"`         // slept hours, > 0
	SelectedTime string    `json:"selected_time"` // "07:30 AM"
	Mode         Mode      `json:"mode"`
	CreatedAt    time.Time `json:"created_at"`
}

// SessionClaims is the identity a verified session token carries. Sessions
// are stateless: nothing is persisted server-side and a token stays valid
// until its embedded expiry.
type SessionClaims struct {
	UserID   string
	Username string
}
