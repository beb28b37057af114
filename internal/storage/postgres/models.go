package postgres

import (
	"time"

	"github.com/mcoot/stationscore/internal/model"
)

type playerRow struct {
	ID          string `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Number      string `gorm:"not null;uniqueIndex"`
	Class       string `gorm:"not null"`
	LastStation string `gorm:"not null"`
	Points      int64  `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (playerRow) TableName() string { return "players" }

func newPlayerRow(p *model.Player) *playerRow {
	return &playerRow{
		ID:          string(p.ID),
		Name:        p.Name,
		Number:      p.Number,
		Class:       p.Class,
		LastStation: string(p.LastStation),
		Points:      p.Points,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (r *playerRow) toModel() *model.Player {
	return &model.Player{
		ID:          model.PlayerID(r.ID),
		Name:        r.Name,
		Number:      r.Number,
		Class:       r.Class,
		LastStation: model.StationID(r.LastStation),
		Points:      r.Points,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type stationRow struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Number    string `gorm:"not null"`
	MaxPoints int64  `gorm:"not null"`
	Status    bool   `gorm:"not null"`
	Delay     int    `gorm:"not null"`
	Image     string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (stationRow) TableName() string { return "stations" }

func newStationRow(s *model.Station) *stationRow {
	return &stationRow{
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

func (r *stationRow) toModel() *model.Station {
	return &model.Station{
		ID:        model.StationID(r.ID),
		Name:      r.Name,
		Number:    r.Number,
		MaxPoints: r.MaxPoints,
		Status:    r.Status,
		Delay:     r.Delay,
		Image:     r.Image,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type pointLogRow struct {
	ID          string    `gorm:"primaryKey"`
	PlayerID    string    `gorm:"not null;index"`
	StationID   string    `gorm:"not null;index"`
	Points      int64     `gorm:"not null"`
	Timestamp   time.Time `gorm:"column:logged_at;not null"`
	Description string    `gorm:"not null"`
	RecordedBy  string    `gorm:"not null"`
}

func (pointLogRow) TableName() string { return "point_logs" }

func newPointLogRow(e *model.PointLogEntry) *pointLogRow {
	return &pointLogRow{
		ID:          string(e.ID),
		PlayerID:    string(e.PlayerID),
		StationID:   string(e.StationID),
		Points:      e.Points,
		Timestamp:   e.Timestamp,
		Description: e.Description,
		RecordedBy:  string(e.RecordedBy),
	}
}

func (r *pointLogRow) toModel() *model.PointLogEntry {
	return &model.PointLogEntry{
		ID:          model.PointLogID(r.ID),
		PlayerID:    model.PlayerID(r.PlayerID),
		StationID:   model.StationID(r.StationID),
		Points:      r.Points,
		Timestamp:   r.Timestamp,
		Description: r.Description,
		RecordedBy:  model.UserID(r.RecordedBy),
	}
}

type userRow struct {
	ID              string  `gorm:"primaryKey"`
	FirstName       string  `gorm:"not null"`
	LastName        string  `gorm:"not null"`
	Username        string  `gorm:"not null;uniqueIndex"`
	PasswordHash    string  `gorm:"not null"`
	Email           string  `gorm:"not null"`
	Phone           string  `gorm:"not null"`
	AssignedStation string  `gorm:"not null"`
	Rank            int     `gorm:"not null"`
	Code            *string `gorm:"uniqueIndex"` // NULL when the user has no login code
	LastLogin       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (userRow) TableName() string { return "users" }

func newUserRow(u *model.User) *userRow {
	row := &userRow{
		ID:              string(u.ID),
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Username:        u.Username,
		PasswordHash:    u.PasswordHash,
		Email:           u.Email,
		Phone:           u.Phone,
		AssignedStation: string(u.AssignedStation),
		Rank:            u.Rank,
		LastLogin:       u.LastLogin,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
	if u.Code != "" {
		code := u.Code
		row.Code = &code
	}
	return row
}

func (r *userRow) toModel() *model.User {
	u := &model.User{
		ID:              model.UserID(r.ID),
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Username:        r.Username,
		PasswordHash:    r.PasswordHash,
		Email:           r.Email,
		Phone:           r.Phone,
		AssignedStation: model.StationID(r.AssignedStation),
		Rank:            r.Rank,
		LastLogin:       r.LastLogin,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.Code != nil {
		u.Code = *r.Code
	}
	return u
}

type loginLogRow struct {
	ID      string `gorm:"primaryKey"`
	UserID  string `gorm:"not null"`
	Success bool   `gorm:"not null"`
	IP      string `gorm:"column:ip;not null"`
	Date    time.Time
}

func (loginLogRow) TableName() string { return "login_logs" }
