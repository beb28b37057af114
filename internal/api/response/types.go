package response

import (
	"time"

	"github.com/mcoot/stationscore/internal/model"
	"github.com/mcoot/stationscore/internal/services/auth"
	"github.com/mcoot/stationscore/internal/services/ledger"
)

// Player represents a player in API responses
type Player struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Number      string    `json:"number"`
	Class       string    `json:"class"`
	Points      int64     `json:"points"`
	LastStation string    `json:"lastStation,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		Name:        p.Name,
		Number:      p.Number,
		Class:       p.Class,
		Points:      p.Points,
		LastStation: string(p.LastStation),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// PlayersFromModel converts a slice of players
func PlayersFromModel(players []*model.Player) []Player {
	result := make([]Player, len(players))
	for i, p := range players {
		result[i] = PlayerFromModel(p)
	}
	return result
}

// Station represents a station in API responses
type Station struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Number    string    `json:"number"`
	MaxPoints int64     `json:"maxPoints"`
	Status    bool      `json:"status"`
	Delay     int       `json:"delay"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StationFromModel converts a model.Station
func StationFromModel(s *model.Station) Station {
	return Station{
		ID:        string(s.ID),
		Name:      s.Name,
		Number:    s.Number,
		MaxPoints: s.MaxPoints,
		Status:    s.Status,
		Delay:     s.Delay,
		Image:     s.Image,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// StationsFromModel converts a slice of stations
func StationsFromModel(stations []*model.Station) []Station {
	result := make([]Station, len(stations))
	for i, s := range stations {
		result[i] = StationFromModel(s)
	}
	return result
}

// PointLog represents a point log entry in API responses
type PointLog struct {
	ID          string    `json:"id"`
	PlayerID    string    `json:"playerId"`
	StationID   string    `json:"stationId"`
	Points      int64     `json:"points"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description,omitempty"`
	RecordedBy  string    `json:"recordedBy,omitempty"`
}

// PointLogFromModel converts a model.PointLogEntry
func PointLogFromModel(e *model.PointLogEntry) PointLog {
	return PointLog{
		ID:          string(e.ID),
		PlayerID:    string(e.PlayerID),
		StationID:   string(e.StationID),
		Points:      e.Points,
		Timestamp:   e.Timestamp,
		Description: e.Description,
		RecordedBy:  string(e.RecordedBy),
	}
}

// PointLogsFromModel converts a slice of entries
func PointLogsFromModel(entries []*model.PointLogEntry) []PointLog {
	result := make([]PointLog, len(entries))
	for i, e := range entries {
		result[i] = PointLogFromModel(e)
	}
	return result
}

// Warning is a non-fatal condition reported with a ledger result
type Warning struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// LedgerResult is the response for register, edit and revoke
type LedgerResult struct {
	Entry    PointLog  `json:"entry"`
	Players  []Player  `json:"players"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// LedgerResultFromModel converts a model.LedgerResult
func LedgerResultFromModel(r *model.LedgerResult) LedgerResult {
	result := LedgerResult{
		Entry:   PointLogFromModel(r.Entry),
		Players: PlayersFromModel(r.Players),
	}
	for _, w := range r.Warnings {
		result.Warnings = append(result.Warnings, Warning{Kind: string(w.Kind), Message: w.Message})
	}
	return result
}

// User represents a user in API responses. The password hash is never included.
type User struct {
	ID              string     `json:"id"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	Username        string     `json:"username"`
	Email           string     `json:"email,omitempty"`
	Phone           string     `json:"phone,omitempty"`
	AssignedStation string     `json:"assignedStation,omitempty"`
	Rank            int        `json:"rank"`
	IsAdmin         bool       `json:"isAdmin"`
	Code            string     `json:"code,omitempty"`
	LastLogin       *time.Time `json:"lastLogin,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// UserFromModel converts a model.User
func UserFromModel(u *model.User) User {
	return User{
		ID:              string(u.ID),
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Username:        u.Username,
		Email:           u.Email,
		Phone:           u.Phone,
		AssignedStation: string(u.AssignedStation),
		Rank:            u.Rank,
		IsAdmin:         u.IsAdmin(),
		Code:            u.Code,
		LastLogin:       u.LastLogin,
		CreatedAt:       u.CreatedAt,
	}
}

// UsersFromModel converts a slice of users
func UsersFromModel(users []*model.User) []User {
	result := make([]User, len(users))
	for i, u := range users {
		result[i] = UserFromModel(u)
	}
	return result
}

// LoginLog represents a login attempt in API responses
type LoginLog struct {
	ID      string    `json:"id"`
	UserID  string    `json:"userId,omitempty"`
	Success bool      `json:"success"`
	IP      string    `json:"ip"`
	Date    time.Time `json:"date"`
}

// LoginLogsFromModel converts a slice of login log entries
func LoginLogsFromModel(entries []*model.LoginLogEntry) []LoginLog {
	result := make([]LoginLog, len(entries))
	for i, e := range entries {
		result[i] = LoginLog{
			ID:      e.ID,
			UserID:  string(e.UserID),
			Success: e.Success,
			IP:      e.IP,
			Date:    e.Date,
		}
	}
	return result
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	User         User      `json:"user"`
	SessionToken string    `json:"sessionToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		User:         UserFromModel(&s.User),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// PlayerAudit compares one player's cached balance with the ledger
type PlayerAudit struct {
	PlayerID   string `json:"playerId"`
	Cached     int64  `json:"cached"`
	Ledger     int64  `json:"ledger"`
	Consistent bool   `json:"consistent"`
}

// BalanceDrift is a player whose cached balance disagrees with the ledger
type BalanceDrift struct {
	PlayerID string `json:"playerId"`
	Number   string `json:"number"`
	Cached   int64  `json:"cached"`
	Ledger   int64  `json:"ledger"`
}

// BalanceDriftsFromAudit converts audit results
func BalanceDriftsFromAudit(drifts []ledger.BalanceDrift) []BalanceDrift {
	result := make([]BalanceDrift, len(drifts))
	for i, d := range drifts {
		result[i] = BalanceDrift{
			PlayerID: string(d.PlayerID),
			Number:   d.Number,
			Cached:   d.Cached,
			Ledger:   d.Ledger,
		}
	}
	return result
}

// Health is the body of GET /api/v1/health
type Health struct {
	Status  string `json:"status"`
	Viewers int    `json:"viewers"`
}
