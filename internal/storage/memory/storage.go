package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mcoot/stationscore/internal/model"
	"github.com/mcoot/stationscore/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Records are copied on the way in and out so callers never share state with the store.
type Storage struct {
	mu sync.RWMutex

	players     map[model.PlayerID]*model.Player
	numberIndex map[string]model.PlayerID
	stations    map[model.StationID]*model.Station
	pointLogs   map[model.PointLogID]*model.PointLogEntry
	users       map[model.UserID]*model.User
	usernames   map[string]model.UserID
	codes       map[string]model.UserID
	loginLogs   []*model.LoginLogEntry
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:     make(map[model.PlayerID]*model.Player),
		numberIndex: make(map[string]model.PlayerID),
		stations:    make(map[model.StationID]*model.Station),
		pointLogs:   make(map[model.PointLogID]*model.PointLogEntry),
		users:       make(map[model.UserID]*model.User),
		usernames:   make(map[string]model.UserID),
		codes:       make(map[string]model.UserID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.numberIndex[player.Number]; taken {
		return model.ErrPlayerNumberTaken
	}
	p := *player
	s.players[p.ID] = &p
	s.numberIndex[p.Number] = p.ID
	return nil
}

func (s *Storage) UpdatePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.players[player.ID]
	if !ok {
		return model.ErrPlayerNotFound
	}
	if owner, taken := s.numberIndex[player.Number]; taken && owner != player.ID {
		return model.ErrPlayerNumberTaken
	}
	delete(s.numberIndex, existing.Number)
	existing.Name = player.Name
	existing.Number = player.Number
	existing.Class = player.Class
	existing.UpdatedAt = player.UpdatedAt
	s.numberIndex[existing.Number] = existing.ID
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *player
	return &p, nil
}

func (s *Storage) GetPlayerByNumber(ctx context.Context, number string) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.numberIndex[number]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *s.players[id]
	return &p, nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	players := make([]*model.Player, 0, len(s.players))
	for _, player := range s.players {
		p := *player
		players = append(players, &p)
	}
	slices.SortFunc(players, func(a, b *model.Player) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return players, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[id]
	if !ok {
		return model.ErrPlayerNotFound
	}
	delete(s.numberIndex, player.Number)
	delete(s.players, id)
	return nil
}

// Station operations

func (s *Storage) CreateStation(ctx context.Context, station *model.Station) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := *station
	s.stations[st.ID] = &st
	return nil
}

func (s *Storage) UpdateStation(ctx context.Context, station *model.Station) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stations[station.ID]; !ok {
		return model.ErrStationNotFound
	}
	st := *station
	s.stations[st.ID] = &st
	return nil
}

func (s *Storage) GetStation(ctx context.Context, id model.StationID) (*model.Station, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	station, ok := s.stations[id]
	if !ok {
		return nil, model.ErrStationNotFound
	}
	st := *station
	return &st, nil
}

func (s *Storage) ListStations(ctx context.Context) ([]*model.Station, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stations := make([]*model.Station, 0, len(s.stations))
	for _, station := range s.stations {
		st := *station
		stations = append(stations, &st)
	}
	slices.SortFunc(stations, storage.ByStationNumber)
	return stations, nil
}

func (s *Storage) DeleteStation(ctx context.Context, id model.StationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stations[id]; !ok {
		return model.ErrStationNotFound
	}
	delete(s.stations, id)
	return nil
}

// Point log operations

func (s *Storage) CreatePointLog(ctx context.Context, entry *model.PointLogEntry, adjustments []model.BalanceAdjustment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkAdjustments(adjustments); err != nil {
		return err
	}
	e := *entry
	s.pointLogs[e.ID] = &e
	s.applyAdjustments(adjustments)
	return nil
}

func (s *Storage) UpdatePointLog(ctx context.Context, prev, next *model.PointLogEntry, adjustments []model.BalanceAdjustment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkCurrent(prev); err != nil {
		return err
	}
	if err := s.checkAdjustments(adjustments); err != nil {
		return err
	}
	e := *next
	s.pointLogs[e.ID] = &e
	s.applyAdjustments(adjustments)
	return nil
}

func (s *Storage) DeletePointLog(ctx context.Context, prev *model.PointLogEntry, adjustments []model.BalanceAdjustment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkCurrent(prev); err != nil {
		return err
	}
	if err := s.checkAdjustments(adjustments); err != nil {
		return err
	}
	delete(s.pointLogs, prev.ID)
	s.applyAdjustments(adjustments)
	return nil
}

func (s *Storage) GetPointLog(ctx context.Context, id model.PointLogID) (*model.PointLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.pointLogs[id]
	if !ok {
		return nil, model.ErrLogEntryNotFound
	}
	e := *entry
	return &e, nil
}

func (s *Storage) QueryPointLogs(ctx context.Context, filter model.LogFilter) ([]*model.PointLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var entries []*model.PointLogEntry
	for _, entry := range s.pointLogs {
		if filter.Matches(entry) {
			e := *entry
			entries = append(entries, &e)
		}
	}
	slices.SortFunc(entries, model.NewestFirst)
	return entries, nil
}

// checkCurrent must be called with the write lock held
func (s *Storage) checkCurrent(prev *model.PointLogEntry) error {
	current, ok := s.pointLogs[prev.ID]
	if !ok {
		return model.ErrLogEntryNotFound
	}
	if !storage.SameEntry(current, prev) {
		return model.ErrLogEntryConflict
	}
	return nil
}

// checkAdjustments must be called with the write lock held
func (s *Storage) checkAdjustments(adjustments []model.BalanceAdjustment) error {
	for _, adj := range adjustments {
		if _, ok := s.players[adj.PlayerID]; !ok {
			return model.ErrPlayerNotFound
		}
	}
	return nil
}

// applyAdjustments must be called with the write lock held, after checkAdjustments
func (s *Storage) applyAdjustments(adjustments []model.BalanceAdjustment) {
	for _, adj := range adjustments {
		player := s.players[adj.PlayerID]
		player.Points += adj.Delta
		if adj.LastStation != "" {
			player.LastStation = adj.LastStation
		}
	}
}

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.usernames[user.Username]; taken {
		return model.ErrUsernameTaken
	}
	if _, taken := s.codes[user.Code]; taken && user.Code != "" {
		return model.ErrCodeTaken
	}
	u := *user
	s.users[u.ID] = &u
	s.usernames[u.Username] = u.ID
	if u.Code != "" {
		s.codes[u.Code] = u.ID
	}
	return nil
}

func (s *Storage) UpdateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.users[user.ID]
	if !ok {
		return model.ErrUserNotFound
	}
	if owner, taken := s.usernames[user.Username]; taken && owner != user.ID {
		return model.ErrUsernameTaken
	}
	if owner, taken := s.codes[user.Code]; taken && user.Code != "" && owner != user.ID {
		return model.ErrCodeTaken
	}
	delete(s.usernames, existing.Username)
	delete(s.codes, existing.Code)
	u := *user
	s.users[u.ID] = &u
	s.usernames[u.Username] = u.ID
	if u.Code != "" {
		s.codes[u.Code] = u.ID
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	id, ok := s.usernames[username]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return s.GetUser(ctx, id)
}

func (s *Storage) GetUserByCode(ctx context.Context, code string) (*model.User, error) {
	if code == "" {
		return nil, model.ErrUserNotFound
	}
	s.mu.RLock()
	id, ok := s.codes[code]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return s.GetUser(ctx, id)
}

func (s *Storage) ListUsers(ctx context.Context) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]*model.User, 0, len(s.users))
	for _, user := range s.users {
		u := *user
		users = append(users, &u)
	}
	slices.SortFunc(users, func(a, b *model.User) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return users, nil
}

func (s *Storage) CountUsersByRank(ctx context.Context, rank int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, user := range s.users {
		if user.Rank == rank {
			count++
		}
	}
	return count, nil
}

func (s *Storage) DeleteUser(ctx context.Context, id model.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	delete(s.usernames, user.Username)
	delete(s.codes, user.Code)
	delete(s.users, id)
	return nil
}

// Login log operations

func (s *Storage) AppendLoginLog(ctx context.Context, entry *model.LoginLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := *entry
	s.loginLogs = append(s.loginLogs, &e)
	return nil
}

func (s *Storage) ListLoginLogs(ctx context.Context, limit int) ([]*model.LoginLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*model.LoginLogEntry, 0, len(s.loginLogs))
	for i := len(s.loginLogs) - 1; i >= 0; i-- {
		if limit > 0 && len(result) == limit {
			break
		}
		e := *s.loginLogs[i]
		result = append(result, &e)
	}
	return result, nil
}
