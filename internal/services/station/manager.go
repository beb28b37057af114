package station

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/stationscore/internal/dependencies/clock"
	"github.com/mcoot/stationscore/internal/dependencies/ids"
	"github.com/mcoot/stationscore/internal/keylock"
	"github.com/mcoot/stationscore/internal/model"
	"github.com/mcoot/stationscore/internal/realtime"
	"github.com/mcoot/stationscore/internal/storage"
)

// Manager applies station changes and tells viewers about them. Every mutation
// that reaches storage successfully triggers exactly one notification, sent after
// the write returns; a failed mutation triggers none.
type Manager struct {
	storage  storage.Storage
	notifier realtime.Notifier
	clock    clock.Clock
	ids      ids.Generator
	locks    *keylock.Locker
	logger   *slog.Logger
}

// NewManager creates a new station Manager
func NewManager(
	storage storage.Storage,
	notifier realtime.Notifier,
	clock clock.Clock,
	ids ids.Generator,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		storage:  storage,
		notifier: notifier,
		clock:    clock,
		ids:      ids,
		locks:    keylock.New(),
		logger:   logger.With(slog.String("component", "station")),
	}
}

// CreateInput holds the fields of a new station
type CreateInput struct {
	Name      string
	Number    string
	MaxPoints int64
	Status    bool
	Delay     int
	Image     string
}

// UpdateInput holds station fields to replace. Nil fields keep their value.
type UpdateInput struct {
	Name      *string
	Number    *string
	MaxPoints *int64
	Status    *bool
	Delay     *int
	Image     *string
}

// List returns all stations ordered by number
func (m *Manager) List(ctx context.Context) ([]*model.Station, error) {
	return m.storage.ListStations(ctx)
}

// Get returns a single station
func (m *Manager) Get(ctx context.Context, id model.StationID) (*model.Station, error) {
	return m.storage.GetStation(ctx, id)
}

// Create stores a new station. MaxPoints is kept as information only.
func (m *Manager) Create(ctx context.Context, in CreateInput) (*model.Station, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, model.InvalidInput("station name is required")
	}
	if in.Delay < 0 {
		return nil, model.InvalidInput("delay must not be negative")
	}
	image := strings.TrimSpace(in.Image)
	if image == "" {
		image = model.DefaultStationImage
	}

	now := m.clock.Now()
	station := &model.Station{
		ID:        model.StationID(m.ids.NewID()),
		Name:      name,
		Number:    strings.TrimSpace(in.Number),
		MaxPoints: in.MaxPoints,
		Status:    in.Status,
		Delay:     in.Delay,
		Image:     image,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.storage.CreateStation(ctx, station); err != nil {
		return nil, fmt.Errorf("create station: %w", err)
	}

	m.changed("station created", station)
	return station, nil
}

// Update replaces the given fields of a station
func (m *Manager) Update(ctx context.Context, id model.StationID, in UpdateInput) (*model.Station, error) {
	return m.mutate(ctx, id, "station updated", func(st *model.Station) error {
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return model.InvalidInput("station name must not be empty")
			}
			st.Name = name
		}
		if in.Number != nil {
			st.Number = strings.TrimSpace(*in.Number)
		}
		if in.MaxPoints != nil {
			st.MaxPoints = *in.MaxPoints
		}
		if in.Status != nil {
			st.Status = *in.Status
		}
		if in.Delay != nil {
			if *in.Delay < 0 {
				return model.InvalidInput("delay must not be negative")
			}
			st.Delay = *in.Delay
		}
		if in.Image != nil {
			st.Image = strings.TrimSpace(*in.Image)
			if st.Image == "" {
				st.Image = model.DefaultStationImage
			}
		}
		return nil
	})
}

// SetStatus opens or closes a station. The value is interpreted by CoerceStatus.
func (m *Manager) SetStatus(ctx context.Context, id model.StationID, value any) (*model.Station, error) {
	open := CoerceStatus(value)
	return m.mutate(ctx, id, "station status changed", func(st *model.Station) error {
		st.Status = open
		return nil
	})
}

// SetDelay sets the station's delay in seconds
func (m *Manager) SetDelay(ctx context.Context, id model.StationID, delay int) (*model.Station, error) {
	if delay < 0 {
		return nil, model.InvalidInput("delay must not be negative")
	}
	return m.mutate(ctx, id, "station delay changed", func(st *model.Station) error {
		st.Delay = delay
		return nil
	})
}

// Delete removes a station. Log entries referencing it are kept.
func (m *Manager) Delete(ctx context.Context, id model.StationID) error {
	unlock := m.locks.Lock(string(id))
	defer unlock()

	if err := m.storage.DeleteStation(ctx, id); err != nil {
		return err
	}
	m.changed("station deleted", &model.Station{ID: id})
	return nil
}

// mutate runs a read-modify-write on one station while holding its lock
func (m *Manager) mutate(ctx context.Context, id model.StationID, what string, apply func(*model.Station) error) (*model.Station, error) {
	unlock := m.locks.Lock(string(id))
	defer unlock()

	station, err := m.storage.GetStation(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(station); err != nil {
		return nil, err
	}
	station.UpdatedAt = m.clock.Now()

	if err := m.storage.UpdateStation(ctx, station); err != nil {
		return nil, fmt.Errorf("update station %s: %w", id, err)
	}

	m.changed(what, station)
	return station, nil
}

func (m *Manager) changed(what string, station *model.Station) {
	m.logger.Info(what,
		slog.String("station_id", string(station.ID)),
		slog.Bool("status", station.Status),
		slog.Int("delay", station.Delay),
	)
	m.notifier.NotifyStationsChanged()
}
