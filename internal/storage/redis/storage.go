package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/stationscore/internal/model"
	"github.com/mcoot/stationscore/internal/storage"
)

var errTxContention = errors.New("transaction retries exhausted")

// Storage is a Redis-backed implementation of the storage interface.
//
// Multi-key writes run as optimistic transactions (WATCH/MULTI/EXEC). A player's
// balance lives in its own hash and is only ever changed with HINCRBY.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.MaxTxRetries <= 0 {
		cfg.MaxTxRetries = DefaultConfig().MaxTxRetries
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Client exposes the underlying client so other Redis-backed components can share the pool
func (s *Storage) Client() *redis.Client {
	return s.client
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// txn runs fn inside WATCH on keys, retrying when a watched key changes underneath it
func (s *Storage) txn(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for range s.cfg.MaxTxRetries {
		err := s.client.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return storage.BackendError(err)
	}
	return model.StorageError(errTxContention)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getJSON[T any](ctx context.Context, c getter, key string, notFound error) (*T, error) {
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound
		}
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Storage) mgetJSON(ctx context.Context, keys []string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([][]byte, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue // Deleted between index read and fetch
		}
		out = append(out, []byte(str))
	}
	return out, nil
}

// Player operations

// playerRecord is the stored identity of a player. Balance and last station
// live in the player's state hash.
type playerRecord struct {
	ID        model.PlayerID
	Name      string
	Number    string
	Class     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	fieldPoints      = "points"
	fieldLastStation = "last_station"
)

func newPlayerRecord(p *model.Player) playerRecord {
	return playerRecord{
		ID:        p.ID,
		Name:      p.Name,
		Number:    p.Number,
		Class:     p.Class,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (r *playerRecord) toModel(state map[string]string) (*model.Player, error) {
	p := &model.Player{
		ID:          r.ID,
		Name:        r.Name,
		Number:      r.Number,
		Class:       r.Class,
		LastStation: model.StationID(state[fieldLastStation]),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if raw, ok := state[fieldPoints]; ok {
		points, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("player %s has corrupt balance %q: %w", r.ID, raw, err)
		}
		p.Points = points
	}
	return p, nil
}

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(newPlayerRecord(player))
	if err != nil {
		return err
	}
	numKey := playerNumberIndexKey(player.Number)

	return s.txn(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, numKey).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return model.ErrPlayerNumberTaken
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, playerKey(player.ID), data, 0)
			pipe.HSet(ctx, playerStateKey(player.ID),
				fieldPoints, player.Points,
				fieldLastStation, string(player.LastStation))
			pipe.Set(ctx, numKey, string(player.ID), 0)
			pipe.ZAdd(ctx, playersIndexKey(), redis.Z{
				Score:  float64(player.CreatedAt.UnixMilli()),
				Member: string(player.ID),
			})
			return nil
		})
		return err
	}, numKey)
}

func (s *Storage) UpdatePlayer(ctx context.Context, player *model.Player) error {
	pKey := playerKey(player.ID)
	numKey := playerNumberIndexKey(player.Number)

	return s.txn(ctx, func(tx *redis.Tx) error {
		existing, err := getJSON[playerRecord](ctx, tx, pKey, model.ErrPlayerNotFound)
		if err != nil {
			return err
		}
		owner, err := tx.Get(ctx, numKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil && owner != string(player.ID) {
			return model.ErrPlayerNumberTaken
		}

		rec := *existing
		rec.Name = player.Name
		rec.Number = player.Number
		rec.Class = player.Class
		rec.UpdatedAt = player.UpdatedAt
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if existing.Number != rec.Number {
				pipe.Del(ctx, playerNumberIndexKey(existing.Number))
			}
			pipe.Set(ctx, numKey, string(player.ID), 0)
			pipe.Set(ctx, pKey, data, 0)
			return nil
		})
		return err
	}, pKey, numKey)
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var recCmd *redis.StringCmd
	var stateCmd *redis.MapStringStringCmd
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		recCmd = pipe.Get(ctx, playerKey(id))
		stateCmd = pipe.HGetAll(ctx, playerStateKey(id))
		return nil
	})
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, model.StorageError(err)
	}
	return decodePlayer(recCmd, stateCmd)
}

func decodePlayer(recCmd *redis.StringCmd, stateCmd *redis.MapStringStringCmd) (*model.Player, error) {
	data, err := recCmd.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, model.StorageError(err)
	}
	var rec playerRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, model.StorageError(err)
	}
	player, err := rec.toModel(stateCmd.Val())
	return player, storage.BackendError(err)
}

func (s *Storage) GetPlayerByNumber(ctx context.Context, number string) (*model.Player, error) {
	id, err := s.client.Get(ctx, playerNumberIndexKey(number)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, model.StorageError(err)
	}
	return s.GetPlayer(ctx, model.PlayerID(id))
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	ids, err := s.client.ZRevRange(ctx, playersIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, model.StorageError(err)
	}
	if len(ids) == 0 {
		return []*model.Player{}, nil
	}

	type playerCmds struct {
		rec   *redis.StringCmd
		state *redis.MapStringStringCmd
	}
	cmds := make([]playerCmds, len(ids))
	pipe := s.client.Pipeline()
	for i, id := range ids {
		cmds[i] = playerCmds{
			rec:   pipe.Get(ctx, playerKey(model.PlayerID(id))),
			state: pipe.HGetAll(ctx, playerStateKey(model.PlayerID(id))),
		}
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, model.StorageError(err)
	}

	players := make([]*model.Player, 0, len(ids))
	for _, c := range cmds {
		player, err := decodePlayer(c.rec, c.state)
		if errors.Is(err, model.ErrPlayerNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		players = append(players, player)
	}
	return players, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	pKey := playerKey(id)
	return s.txn(ctx, func(tx *redis.Tx) error {
		rec, err := getJSON[playerRecord](ctx, tx, pKey, model.ErrPlayerNotFound)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, pKey, playerStateKey(id), playerNumberIndexKey(rec.Number))
			pipe.ZRem(ctx, playersIndexKey(), string(id))
			return nil
		})
		return err
	}, pKey)
}

// Station operations

func (s *Storage) CreateStation(ctx context.Context, station *model.Station) error {
	data, err := json.Marshal(station)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, stationKey(station.ID), data, 0)
		pipe.SAdd(ctx, stationsIndexKey(), string(station.ID))
		return nil
	})
	return storage.BackendError(err)
}

func (s *Storage) UpdateStation(ctx context.Context, station *model.Station) error {
	data, err := json.Marshal(station)
	if err != nil {
		return err
	}
	updated, err := s.client.SetXX(ctx, stationKey(station.ID), data, 0).Result()
	if err != nil {
		return model.StorageError(err)
	}
	if !updated {
		return model.ErrStationNotFound
	}
	return nil
}

func (s *Storage) GetStation(ctx context.Context, id model.StationID) (*model.Station, error) {
	station, err := getJSON[model.Station](ctx, s.client, stationKey(id), model.ErrStationNotFound)
	return station, storage.BackendError(err)
}

func (s *Storage) ListStations(ctx context.Context) ([]*model.Station, error) {
	ids, err := s.client.SMembers(ctx, stationsIndexKey()).Result()
	if err != nil {
		return nil, model.StorageError(err)
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = stationKey(model.StationID(id))
	}
	raw, err := s.mgetJSON(ctx, keys)
	if err != nil {
		return nil, model.StorageError(err)
	}

	stations := make([]*model.Station, 0, len(raw))
	for _, data := range raw {
		var station model.Station
		if err := json.Unmarshal(data, &station); err != nil {
			return nil, model.StorageError(err)
		}
		stations = append(stations, &station)
	}
	slices.SortFunc(stations, storage.ByStationNumber)
	return stations, nil
}

func (s *Storage) DeleteStation(ctx context.Context, id model.StationID) error {
	var delCmd *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		delCmd = pipe.Del(ctx, stationKey(id))
		pipe.SRem(ctx, stationsIndexKey(), string(id))
		return nil
	})
	if err != nil {
		return model.StorageError(err)
	}
	if delCmd.Val() == 0 {
		return model.ErrStationNotFound
	}
	return nil
}

// Point log operations

func (s *Storage) CreatePointLog(ctx context.Context, entry *model.PointLogEntry, adjustments []model.BalanceAdjustment) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	keys := append([]string{pointLogKey(entry.ID)}, adjustedPlayerKeys(adjustments)...)

	return s.txn(ctx, func(tx *redis.Tx) error {
		if err := checkPlayersExist(ctx, tx, adjustments); err != nil {
			return err
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, pointLogKey(entry.ID), data, 0)
			addPointLogIndexes(ctx, pipe, entry)
			applyAdjustments(ctx, pipe, adjustments)
			return nil
		})
		return err
	}, keys...)
}

func (s *Storage) UpdatePointLog(ctx context.Context, prev, next *model.PointLogEntry, adjustments []model.BalanceAdjustment) error {
	data, err := json.Marshal(next)
	if err != nil {
		return err
	}
	key := pointLogKey(prev.ID)
	keys := append([]string{key}, adjustedPlayerKeys(adjustments)...)

	return s.txn(ctx, func(tx *redis.Tx) error {
		if err := checkCurrent(ctx, tx, prev); err != nil {
			return err
		}
		if err := checkPlayersExist(ctx, tx, adjustments); err != nil {
			return err
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			removePointLogIndexes(ctx, pipe, prev)
			pipe.Set(ctx, key, data, 0)
			addPointLogIndexes(ctx, pipe, next)
			applyAdjustments(ctx, pipe, adjustments)
			return nil
		})
		return err
	}, keys...)
}

func (s *Storage) DeletePointLog(ctx context.Context, prev *model.PointLogEntry, adjustments []model.BalanceAdjustment) error {
	key := pointLogKey(prev.ID)
	keys := append([]string{key}, adjustedPlayerKeys(adjustments)...)

	return s.txn(ctx, func(tx *redis.Tx) error {
		if err := checkCurrent(ctx, tx, prev); err != nil {
			return err
		}
		if err := checkPlayersExist(ctx, tx, adjustments); err != nil {
			return err
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			removePointLogIndexes(ctx, pipe, prev)
			applyAdjustments(ctx, pipe, adjustments)
			return nil
		})
		return err
	}, keys...)
}

func (s *Storage) GetPointLog(ctx context.Context, id model.PointLogID) (*model.PointLogEntry, error) {
	entry, err := getJSON[model.PointLogEntry](ctx, s.client, pointLogKey(id), model.ErrLogEntryNotFound)
	return entry, storage.BackendError(err)
}

func (s *Storage) QueryPointLogs(ctx context.Context, filter model.LogFilter) ([]*model.PointLogEntry, error) {
	indexKey := pointLogsIndexKey()
	switch {
	case filter.PlayerID != "":
		indexKey = pointLogsByPlayerKey(filter.PlayerID)
	case filter.StationID != "":
		indexKey = pointLogsByStationKey(filter.StationID)
	}

	ids, err := s.client.ZRevRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, model.StorageError(err)
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = pointLogKey(model.PointLogID(id))
	}
	raw, err := s.mgetJSON(ctx, keys)
	if err != nil {
		return nil, model.StorageError(err)
	}

	entries := make([]*model.PointLogEntry, 0, len(raw))
	for _, data := range raw {
		var entry model.PointLogEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return nil, model.StorageError(err)
		}
		if filter.Matches(&entry) {
			entries = append(entries, &entry)
		}
	}
	// Index scores are millisecond timestamps; the full ordering is applied here
	slices.SortFunc(entries, model.NewestFirst)
	return entries, nil
}

func checkCurrent(ctx context.Context, tx *redis.Tx, prev *model.PointLogEntry) error {
	current, err := getJSON[model.PointLogEntry](ctx, tx, pointLogKey(prev.ID), model.ErrLogEntryNotFound)
	if err != nil {
		return err
	}
	if !storage.SameEntry(current, prev) {
		return model.ErrLogEntryConflict
	}
	return nil
}

func adjustedPlayerKeys(adjustments []model.BalanceAdjustment) []string {
	keys := make([]string, len(adjustments))
	for i, adj := range adjustments {
		keys[i] = playerKey(adj.PlayerID)
	}
	return keys
}

func checkPlayersExist(ctx context.Context, tx *redis.Tx, adjustments []model.BalanceAdjustment) error {
	for _, adj := range adjustments {
		n, err := tx.Exists(ctx, playerKey(adj.PlayerID)).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return model.ErrPlayerNotFound
		}
	}
	return nil
}

func applyAdjustments(ctx context.Context, pipe redis.Pipeliner, adjustments []model.BalanceAdjustment) {
	for _, adj := range adjustments {
		stateKey := playerStateKey(adj.PlayerID)
		if adj.Delta != 0 {
			pipe.HIncrBy(ctx, stateKey, fieldPoints, adj.Delta)
		}
		if adj.LastStation != "" {
			pipe.HSet(ctx, stateKey, fieldLastStation, string(adj.LastStation))
		}
	}
}

func addPointLogIndexes(ctx context.Context, pipe redis.Pipeliner, entry *model.PointLogEntry) {
	z := redis.Z{Score: float64(entry.Timestamp.UnixMilli()), Member: string(entry.ID)}
	pipe.ZAdd(ctx, pointLogsIndexKey(), z)
	pipe.ZAdd(ctx, pointLogsByPlayerKey(entry.PlayerID), z)
	pipe.ZAdd(ctx, pointLogsByStationKey(entry.StationID), z)
}

func removePointLogIndexes(ctx context.Context, pipe redis.Pipeliner, entry *model.PointLogEntry) {
	pipe.ZRem(ctx, pointLogsIndexKey(), string(entry.ID))
	pipe.ZRem(ctx, pointLogsByPlayerKey(entry.PlayerID), string(entry.ID))
	pipe.ZRem(ctx, pointLogsByStationKey(entry.StationID), string(entry.ID))
}

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	nameKey := usernameIndexKey(user.Username)
	codeKey := userCodeIndexKey(user.Code)

	return s.txn(ctx, func(tx *redis.Tx) error {
		if n, err := tx.Exists(ctx, nameKey).Result(); err != nil {
			return err
		} else if n > 0 {
			return model.ErrUsernameTaken
		}
		if user.Code != "" {
			if n, err := tx.Exists(ctx, codeKey).Result(); err != nil {
				return err
			} else if n > 0 {
				return model.ErrCodeTaken
			}
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, userKey(user.ID), data, 0)
			pipe.Set(ctx, nameKey, string(user.ID), 0)
			if user.Code != "" {
				pipe.Set(ctx, codeKey, string(user.ID), 0)
			}
			pipe.SAdd(ctx, usersIndexKey(), string(user.ID))
			return nil
		})
		return err
	}, nameKey, codeKey)
}

// indexOwner returns the ID stored at an index key, or "" when unset
func indexOwner(ctx context.Context, tx *redis.Tx, key string) (string, error) {
	owner, err := tx.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return owner, err
}

func (s *Storage) UpdateUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	uKey := userKey(user.ID)
	nameKey := usernameIndexKey(user.Username)
	codeKey := userCodeIndexKey(user.Code)

	return s.txn(ctx, func(tx *redis.Tx) error {
		existing, err := getJSON[model.User](ctx, tx, uKey, model.ErrUserNotFound)
		if err != nil {
			return err
		}
		owner, err := indexOwner(ctx, tx, nameKey)
		if err != nil {
			return err
		}
		if owner != "" && owner != string(user.ID) {
			return model.ErrUsernameTaken
		}
		if user.Code != "" {
			owner, err := indexOwner(ctx, tx, codeKey)
			if err != nil {
				return err
			}
			if owner != "" && owner != string(user.ID) {
				return model.ErrCodeTaken
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, usernameIndexKey(existing.Username))
			if existing.Code != "" {
				pipe.Del(ctx, userCodeIndexKey(existing.Code))
			}
			pipe.Set(ctx, nameKey, string(user.ID), 0)
			if user.Code != "" {
				pipe.Set(ctx, codeKey, string(user.ID), 0)
			}
			pipe.Set(ctx, uKey, data, 0)
			return nil
		})
		return err
	}, uKey, nameKey, codeKey)
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	user, err := getJSON[model.User](ctx, s.client, userKey(id), model.ErrUserNotFound)
	return user, storage.BackendError(err)
}

func (s *Storage) userByIndex(ctx context.Context, indexKey string) (*model.User, error) {
	id, err := s.client.Get(ctx, indexKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, model.StorageError(err)
	}
	return s.GetUser(ctx, model.UserID(id))
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.userByIndex(ctx, usernameIndexKey(username))
}

func (s *Storage) GetUserByCode(ctx context.Context, code string) (*model.User, error) {
	if code == "" {
		return nil, model.ErrUserNotFound
	}
	return s.userByIndex(ctx, userCodeIndexKey(code))
}

func (s *Storage) ListUsers(ctx context.Context) ([]*model.User, error) {
	ids, err := s.client.SMembers(ctx, usersIndexKey()).Result()
	if err != nil {
		return nil, model.StorageError(err)
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = userKey(model.UserID(id))
	}
	raw, err := s.mgetJSON(ctx, keys)
	if err != nil {
		return nil, model.StorageError(err)
	}

	users := make([]*model.User, 0, len(raw))
	for _, data := range raw {
		var user model.User
		if err := json.Unmarshal(data, &user); err != nil {
			return nil, model.StorageError(err)
		}
		users = append(users, &user)
	}
	slices.SortFunc(users, func(a, b *model.User) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return users, nil
}

func (s *Storage) CountUsersByRank(ctx context.Context, rank int) (int, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, user := range users {
		if user.Rank == rank {
			count++
		}
	}
	return count, nil
}

func (s *Storage) DeleteUser(ctx context.Context, id model.UserID) error {
	uKey := userKey(id)
	return s.txn(ctx, func(tx *redis.Tx) error {
		user, err := getJSON[model.User](ctx, tx, uKey, model.ErrUserNotFound)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, uKey, usernameIndexKey(user.Username))
			if user.Code != "" {
				pipe.Del(ctx, userCodeIndexKey(user.Code))
			}
			pipe.SRem(ctx, usersIndexKey(), string(id))
			return nil
		})
		return err
	}, uKey)
}

// Login log operations

func (s *Storage) AppendLoginLog(ctx context.Context, entry *model.LoginLogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return storage.BackendError(s.client.LPush(ctx, loginLogsKey(), data).Err())
}

func (s *Storage) ListLoginLogs(ctx context.Context, limit int) ([]*model.LoginLogEntry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	values, err := s.client.LRange(ctx, loginLogsKey(), 0, stop).Result()
	if err != nil {
		return nil, model.StorageError(err)
	}
	logs := make([]*model.LoginLogEntry, 0, len(values))
	for _, val := range values {
		var entry model.LoginLogEntry
		if err := json.Unmarshal([]byte(val), &entry); err != nil {
			return nil, model.StorageError(err)
		}
		logs = append(logs, &entry)
	}
	return logs, nil
}
