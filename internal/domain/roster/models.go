package roster

import "time"

type Employee struct {
	Name         string   `json:"name"`
	Phone        string   `json:"phone"`
	Address      string   `json:"address"`
	PayRate      float64  `json:"payRate"`
	Role         string   `json:"role"`
	HoursWorked  float64  `json:"hoursWorked"`
	Team         string   `json:"team"`
	TeamExpenses *float64 `json:"teamExpenses,omitempty"`
}

type Client struct {
	Name           string  `json:"name"`
	Address        string  `json:"address"`
	CleaningValue  float64 `json:"cleaningValue"`
	HouseSize      float64 `json:"houseSize"`
	PaymentMethod  string  `json:"paymentMethod"`
	DayOfCleaning  string  `json:"dayOfCleaning"`
	TimeOfCleaning string  `json:"timeOfCleaning"`
	SpecialRequest string  `json:"specialRequest"`
	Phone          string  `json:"phone"`
	TypeClean      bool    `json:"typeClean"`
	Team           string  `json:"team"`
}

type Team struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"companyId"`
	Name      string    `json:"name"`
	Expenses  *float64  `json:"expenses,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type ParseResult struct {
	Employees []Employee `json:"employees"`
	Clients   []Client   `json:"clients"`
	// DroppedClientRows counts client rows that appeared before any employee
	// in their sheet and were therefore discarded.
	DroppedClientRows int `json:"droppedClientRows"`
}

type ImportResult struct {
	Teams     int `json:"teams"`
	Employees int `json:"employees"`
	Clients   int `json:"clients"`
}

// ScheduledClient is a stored client as shown on a team's schedule.
type ScheduledClient struct {
	ID string `json:"id"`
	Client
}

type Schedule struct {
	Team    Team              `json:"team"`
	Clients []ScheduledClient `json:"clients"`
}

// ScheduleRange bounds a schedule by YYYY-MM-DD day; empty ends are open.
// Clients without a cleaning day are listed only when both ends are open.
type ScheduleRange struct {
	From string
	To   string
}
