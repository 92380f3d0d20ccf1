package planner

// Task identifies which kind of generation a request asks for.
type Task string

const (
	TaskBudget Task = "budget"
	TaskTrip   Task = "trip"
	TaskMusic  Task = "music"
)

type Transportation string

const (
	TransportPublic   Transportation = "public"
	TransportPersonal Transportation = "personal"
	TransportFlight   Transportation = "flight"
)

type Accommodation string

const (
	StayHostel Accommodation = "hostel"
	StayHotel  Accommodation = "hotel"
	StayLuxury Accommodation = "luxury"
)

type TravelStyle string

const (
	StyleRelaxing    TravelStyle = "relaxing"
	StyleAdventurous TravelStyle = "adventurous"
)

// BudgetRequest is the input of a budget estimate.
type BudgetRequest struct {
	Origin         string         `json:"origin"`
	Destination    string         `json:"destination"`
	Days           int            `json:"days"`
	Travelers      int            `json:"travelers"`
	Transportation Transportation `json:"transportation"`
	Accommodation  Accommodation  `json:"accommodation"`
}

// TripRequest is the input of a full trip plan.
type TripRequest struct {
	Origin      string      `json:"origin"`
	Destination string      `json:"destination"`
	Budget      int         `json:"budget"` // rupees
	Travelers   int         `json:"travelers"`
	TravelStyle TravelStyle `json:"travel_style"`
	Duration    int         `json:"duration"` // days
}

// MusicRequest is the input of a travel playlist recommendation.
type MusicRequest struct {
	Genre string `json:"genre"`
}

// PlanEvent is published after every generation attempt. It carries
// metadata only; generated text is never published.
type PlanEvent struct {
	RequestID  string `json:"request_id"`
	Task       Task   `json:"task"`
	Chars      int    `json:"chars"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
	Timestamp  string `json:"timestamp"`
}
