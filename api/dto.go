package api

import (
	"github.com/linguedo/strike-engine/engine"
)

// =============================================================================
// REQUEST DTOs - Validated at the HTTP boundary
// =============================================================================

type createVacationRequest struct {
	Email     string `json:"email" validate:"required,email"`
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	Days      int    `json:"days" validate:"required,min=1"`
}

type createHolidayRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Name string `json:"name" validate:"required"`
}

type setParamRequest struct {
	Value string `json:"value" validate:"required"`
}

type createUserRequest struct {
	Username  string `json:"username" validate:"required"`
	Email     string `json:"email" validate:"omitempty,email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	StartDate string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

// =============================================================================
// RESPONSE DTOs
// =============================================================================

type userResponse struct {
	Username         string `json:"username"`
	Email            string `json:"email"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	MemriseStrike    int    `json:"memriseStrike"`
	AudioStrike      int    `json:"audioStrike"`
	QuizStrike       int    `json:"quizStrike"`
	TotalStrikes     int    `json:"totalStrikes"`
	DeductedStrikes  int    `json:"deductedStrikes"`
	DeductedManually int    `json:"deductedManually"`
	StartDate        string `json:"startDate,omitempty"`
	EndDate          string `json:"endDate,omitempty"`
	VacationsTaken   int    `json:"vacationsTaken"`
	DaysOffLeft      int    `json:"daysOffLeft"`
	LastNotified     string `json:"lastNotified,omitempty"`
}

func toUserResponse(u engine.UserRecord, vacationLimit int) userResponse {
	return userResponse{
		Username:         u.Username,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		MemriseStrike:    u.MemriseStrike,
		AudioStrike:      u.AudioStrike,
		QuizStrike:       u.QuizStrike,
		TotalStrikes:     u.TotalStrikes(),
		DeductedStrikes:  u.DeductedStrikes,
		DeductedManually: u.DeductedManually,
		StartDate:        u.StartDate.String(),
		EndDate:          u.EndDate.String(),
		VacationsTaken:   u.VacationsTaken,
		DaysOffLeft:      vacationLimit - u.VacationsTaken,
		LastNotified:     u.LastNotified.String(),
	}
}

type holidayResponse struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

type vacationResponse struct {
	Email     string `json:"email"`
	StartDate string `json:"startDate"`
	Days      int    `json:"days"`
}

type runResponse struct {
	RunID  string `json:"runId"`
	Result any    `json:"result,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}
