package postgres

import (
	"context"
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mcoot/stationscore/internal/model"
	"github.com/mcoot/stationscore/internal/storage"
)

// Storage is a PostgreSQL implementation of the storage interface.
// Balance changes are applied with `points = points + ?` inside the same
// transaction as the log entry write.
type Storage struct {
	db *gorm.DB
}

// Open connects to Postgres. The schema is expected to be migrated already (see Migrate).
func Open(dsn string) (*Storage, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB wraps an existing gorm connection
func NewWithDB(db *gorm.DB) *Storage {
	return &Storage{db: db}
}

// Close releases the underlying connection pool
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// notFound maps gorm's missing-row error to the given domain error
func notFound(err, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return storage.BackendError(err)
}

// duplicate maps a unique violation to the given domain error
func duplicate(err, domainErr error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainErr
	}
	return storage.BackendError(err)
}

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	err := s.db.WithContext(ctx).Create(newPlayerRow(player)).Error
	return duplicate(err, model.ErrPlayerNumberTaken)
}

func (s *Storage) UpdatePlayer(ctx context.Context, player *model.Player) error {
	res := s.db.WithContext(ctx).
		Model(&playerRow{}).
		Where("id = ?", string(player.ID)).
		UpdateColumns(map[string]any{
			"name":       player.Name,
			"number":     player.Number,
			"class":      player.Class,
			"updated_at": player.UpdatedAt,
		})
	if res.Error != nil {
		return duplicate(res.Error, model.ErrPlayerNumberTaken)
	}
	if res.RowsAffected == 0 {
		return model.ErrPlayerNotFound
	}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var row playerRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", string(id)).Error; err != nil {
		return nil, notFound(err, model.ErrPlayerNotFound)
	}
	return row.toModel(), nil
}

func (s *Storage) GetPlayerByNumber(ctx context.Context, number string) (*model.Player, error) {
	var row playerRow
	if err := s.db.WithContext(ctx).First(&row, "number = ?", number).Error; err != nil {
		return nil, notFound(err, model.ErrPlayerNotFound)
	}
	return row.toModel(), nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	var rows []playerRow
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, model.StorageError(err)
	}
	players := make([]*model.Player, len(rows))
	for i := range rows {
		players[i] = rows[i].toModel()
	}
	return players, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	res := s.db.WithContext(ctx).Delete(&playerRow{}, "id = ?", string(id))
	if res.Error != nil {
		return model.StorageError(res.Error)
	}
	if res.RowsAffected == 0 {
		return model.ErrPlayerNotFound
	}
	return nil
}

// Station operations

func (s *Storage) CreateStation(ctx context.Context, station *model.Station) error {
	return storage.BackendError(s.db.WithContext(ctx).Create(newStationRow(station)).Error)
}

func (s *Storage) UpdateStation(ctx context.Context, station *model.Station) error {
	res := s.db.WithContext(ctx).
		Model(&stationRow{}).
		Where("id = ?", string(station.ID)).
		Select("name", "number", "max_points", "status", "delay", "image", "updated_at").
		Updates(newStationRow(station))
	if res.Error != nil {
		return model.StorageError(res.Error)
	}
	if res.RowsAffected == 0 {
		return model.ErrStationNotFound
	}
	return nil
}

func (s *Storage) GetStation(ctx context.Context, id model.StationID) (*model.Station, error) {
	var row stationRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", string(id)).Error; err != nil {
		return nil, notFound(err, model.ErrStationNotFound)
	}
	return row.toModel(), nil
}

func (s *Storage) ListStations(ctx context.Context) ([]*model.Station, error) {
	var rows []stationRow
	if err := s.db.WithContext(ctx).Order("number ASC, name ASC").Find(&rows).Error; err != nil {
		return nil, model.StorageError(err)
	}
	stations := make([]*model.Station, len(rows))
	for i := range rows {
		stations[i] = rows[i].toModel()
	}
	return stations, nil
}

func (s *Storage) DeleteStation(ctx context.Context, id model.StationID) error {
	res := s.db.WithContext(ctx).Delete(&stationRow{}, "id = ?", string(id))
	if res.Error != nil {
		return model.StorageError(res.Error)
	}
	if res.RowsAffected == 0 {
		return model.ErrStationNotFound
	}
	return nil
}

// Point log operations

func (s *Storage) CreatePointLog(ctx context.Context, entry *model.PointLogEntry, adjustments []model.BalanceAdjustment) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(newPointLogRow(entry)).Error; err != nil {
			return err
		}
		return applyAdjustments(tx, adjustments)
	})
	return storage.BackendError(err)
}

func (s *Storage) UpdatePointLog(ctx context.Context, prev, next *model.PointLogEntry, adjustments []model.BalanceAdjustment) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockCurrent(tx, prev); err != nil {
			return err
		}
		if err := tx.Save(newPointLogRow(next)).Error; err != nil {
			return err
		}
		return applyAdjustments(tx, adjustments)
	})
	return storage.BackendError(err)
}

func (s *Storage) DeletePointLog(ctx context.Context, prev *model.PointLogEntry, adjustments []model.BalanceAdjustment) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockCurrent(tx, prev); err != nil {
			return err
		}
		if err := tx.Delete(&pointLogRow{}, "id = ?", string(prev.ID)).Error; err != nil {
			return err
		}
		return applyAdjustments(tx, adjustments)
	})
	return storage.BackendError(err)
}

func (s *Storage) GetPointLog(ctx context.Context, id model.PointLogID) (*model.PointLogEntry, error) {
	var row pointLogRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", string(id)).Error; err != nil {
		return nil, notFound(err, model.ErrLogEntryNotFound)
	}
	return row.toModel(), nil
}

func (s *Storage) QueryPointLogs(ctx context.Context, filter model.LogFilter) ([]*model.PointLogEntry, error) {
	q := s.db.WithContext(ctx).Model(&pointLogRow{})
	if filter.PlayerID != "" {
		q = q.Where("player_id = ?", string(filter.PlayerID))
	}
	if filter.StationID != "" {
		q = q.Where("station_id = ?", string(filter.StationID))
	}

	var rows []pointLogRow
	if err := q.Order("logged_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, model.StorageError(err)
	}
	entries := make([]*model.PointLogEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].toModel()
	}
	return entries, nil
}

// lockCurrent takes a row lock on the stored entry and checks it still equals prev
func lockCurrent(tx *gorm.DB, prev *model.PointLogEntry) error {
	var row pointLogRow
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&row, "id = ?", string(prev.ID)).Error
	if err != nil {
		return notFound(err, model.ErrLogEntryNotFound)
	}
	if !storage.SameEntry(row.toModel(), prev) {
		return model.ErrLogEntryConflict
	}
	return nil
}

func applyAdjustments(tx *gorm.DB, adjustments []model.BalanceAdjustment) error {
	for _, adj := range adjustments {
		updates := map[string]any{"points": gorm.Expr("points + ?", adj.Delta)}
		if adj.LastStation != "" {
			updates["last_station"] = string(adj.LastStation)
		}
		res := tx.Model(&playerRow{}).
			Where("id = ?", string(adj.PlayerID)).
			UpdateColumns(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return model.ErrPlayerNotFound
		}
	}
	return nil
}

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUserUnique(tx, user); err != nil {
			return err
		}
		return tx.Create(newUserRow(user)).Error
	})
	return duplicate(err, model.ErrUsernameTaken)
}

func (s *Storage) UpdateUser(ctx context.Context, user *model.User) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUserUnique(tx, user); err != nil {
			return err
		}
		res := tx.Model(&userRow{}).
			Where("id = ?", string(user.ID)).
			Select("*").
			Omit("id", "created_at").
			Updates(newUserRow(user))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return model.ErrUserNotFound
		}
		return nil
	})
	return duplicate(err, model.ErrUsernameTaken)
}

// checkUserUnique reports which unique field another user already holds
func checkUserUnique(tx *gorm.DB, user *model.User) error {
	var n int64
	err := tx.Model(&userRow{}).
		Where("username = ? AND id <> ?", user.Username, string(user.ID)).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n > 0 {
		return model.ErrUsernameTaken
	}
	if user.Code == "" {
		return nil
	}
	err = tx.Model(&userRow{}).
		Where("code = ? AND id <> ?", user.Code, string(user.ID)).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n > 0 {
		return model.ErrCodeTaken
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	return s.userWhere(ctx, "id = ?", string(id))
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.userWhere(ctx, "username = ?", username)
}

func (s *Storage) GetUserByCode(ctx context.Context, code string) (*model.User, error) {
	if code == "" {
		return nil, model.ErrUserNotFound
	}
	return s.userWhere(ctx, "code = ?", code)
}

func (s *Storage) userWhere(ctx context.Context, query string, arg any) (*model.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).First(&row, query, arg).Error; err != nil {
		return nil, notFound(err, model.ErrUserNotFound)
	}
	return row.toModel(), nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]*model.User, error) {
	var rows []userRow
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, model.StorageError(err)
	}
	users := make([]*model.User, len(rows))
	for i := range rows {
		users[i] = rows[i].toModel()
	}
	return users, nil
}

func (s *Storage) CountUsersByRank(ctx context.Context, rank int) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&userRow{}).Where("rank = ?", rank).Count(&n).Error; err != nil {
		return 0, model.StorageError(err)
	}
	return int(n), nil
}

func (s *Storage) DeleteUser(ctx context.Context, id model.UserID) error {
	res := s.db.WithContext(ctx).Delete(&userRow{}, "id = ?", string(id))
	if res.Error != nil {
		return model.StorageError(res.Error)
	}
	if res.RowsAffected == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// Login log operations

func (s *Storage) AppendLoginLog(ctx context.Context, entry *model.LoginLogEntry) error {
	row := &loginLogRow{
		ID:      entry.ID,
		UserID:  string(entry.UserID),
		Success: entry.Success,
		IP:      entry.IP,
		Date:    entry.Date,
	}
	return storage.BackendError(s.db.WithContext(ctx).Create(row).Error)
}

func (s *Storage) ListLoginLogs(ctx context.Context, limit int) ([]*model.LoginLogEntry, error) {
	q := s.db.WithContext(ctx).Order("date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []loginLogRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, model.StorageError(err)
	}
	logs := make([]*model.LoginLogEntry, len(rows))
	for i, row := range rows {
		logs[i] = &model.LoginLogEntry{
			ID:      row.ID,
			UserID:  model.UserID(row.UserID),
			Success: row.Success,
			IP:      row.IP,
			Date:    row.Date,
		}
	}
	return logs, nil
}
