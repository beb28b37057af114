package request

import "time"

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CodeLoginRequest is the request body for logging in with a login code
type CodeLoginRequest struct {
	Code string `json:"code"`
}

// CreateUserRequest is the request body for creating a user
type CreateUserRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	Email           string `json:"email,omitempty"`
	Phone           string `json:"phone,omitempty"`
	AssignedStation string `json:"assignedStation,omitempty"`
	Rank            int    `json:"rank"`
	Code            string `json:"code,omitempty"`
}

// UpdateUserRequest is the request body for updating a user. Omitted fields are unchanged.
type UpdateUserRequest struct {
	FirstName       *string `json:"firstName,omitempty"`
	LastName        *string `json:"lastName,omitempty"`
	Username        *string `json:"username,omitempty"`
	Password        *string `json:"password,omitempty"`
	Email           *string `json:"email,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	AssignedStation *string `json:"assignedStation,omitempty"`
	Rank            *int    `json:"rank,omitempty"`
	Code            *string `json:"code,omitempty"`
}

// CreatePlayerRequest is the request body for adding a player to the roster
type CreatePlayerRequest struct {
	Name   string `json:"name"`
	Number string `json:"number"`
	Class  string `json:"class"`
}

// UpdatePlayerRequest is the request body for editing a player's identity
type UpdatePlayerRequest struct {
	Name   *string `json:"name,omitempty"`
	Number *string `json:"number,omitempty"`
	Class  *string `json:"class,omitempty"`
}

// CreateStationRequest is the request body for creating a station
type CreateStationRequest struct {
	Name      string `json:"name"`
	Number    string `json:"number"`
	MaxPoints int64  `json:"maxPoints"`
	// Status accepts a boolean or any truthy string
	Status any    `json:"status,omitempty"`
	Delay  any    `json:"delay,omitempty"`
	Image  string `json:"image,omitempty"`
}

// UpdateStationRequest is the request body for updating a station. Omitted fields are unchanged.
type UpdateStationRequest struct {
	Name      *string `json:"name,omitempty"`
	Number    *string `json:"number,omitempty"`
	MaxPoints *int64  `json:"maxPoints,omitempty"`
	Status    any     `json:"status,omitempty"`
	Delay     any     `json:"delay,omitempty"`
	Image     *string `json:"image,omitempty"`
}

// StatusRequest is the request body for setting a station's status
type StatusRequest struct {
	Status any `json:"status"`
}

// DelayRequest is the request body for setting a station's delay
type DelayRequest struct {
	Delay any `json:"delay"`
}

// RegisterPointsRequest is the request body for registering points.
// UserNumber is accepted as an alias of PlayerNumber.
type RegisterPointsRequest struct {
	PlayerNumber Number   `json:"playerNumber"`
	UserNumber   Number   `json:"userNumber"`
	StationID    string   `json:"stationId"`
	Points       *Integer `json:"points"`
	Description  string   `json:"description,omitempty"`
}

// EditPointsRequest is the request body for editing a log entry. Omitted fields are unchanged.
type EditPointsRequest struct {
	PlayerID    *string    `json:"playerId,omitempty"`
	StationID   *string    `json:"stationId,omitempty"`
	Points      *Integer   `json:"points,omitempty"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
	Description *string    `json:"description,omitempty"`
}
