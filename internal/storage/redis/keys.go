package redis

import (
	"fmt"

	"github.com/mcoot/stationscore/internal/model"
)

// Key prefix for all scoring data
const keyPrefix = "stscore"

// playerKey returns the Redis key for a player's identity record
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// playerStateKey returns the Redis HASH holding a player's balance and last station
func playerStateKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player_state:%s", keyPrefix, id)
}

// playerNumberIndexKey returns the Redis key for the number -> player_id index
func playerNumberIndexKey(number string) string {
	return fmt.Sprintf("%s:idx:player_number:%s", keyPrefix, number)
}

// playersIndexKey returns the ZSET of player IDs scored by creation time
func playersIndexKey() string {
	return fmt.Sprintf("%s:idx:players", keyPrefix)
}

func stationKey(id model.StationID) string {
	return fmt.Sprintf("%s:station:%s", keyPrefix, id)
}

func stationsIndexKey() string {
	return fmt.Sprintf("%s:idx:stations", keyPrefix)
}

func pointLogKey(id model.PointLogID) string {
	return fmt.Sprintf("%s:pointlog:%s", keyPrefix, id)
}

// Point log ZSETs are scored by entry timestamp in milliseconds

func pointLogsIndexKey() string {
	return fmt.Sprintf("%s:idx:pointlogs", keyPrefix)
}

func pointLogsByPlayerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:idx:pointlogs:player:%s", keyPrefix, id)
}

func pointLogsByStationKey(id model.StationID) string {
	return fmt.Sprintf("%s:idx:pointlogs:station:%s", keyPrefix, id)
}

func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

func userCodeIndexKey(code string) string {
	return fmt.Sprintf("%s:idx:usercode:%s", keyPrefix, code)
}

func usersIndexKey() string {
	return fmt.Sprintf("%s:idx:users", keyPrefix)
}

// loginLogsKey returns the LIST of login attempts, newest at the head
func loginLogsKey() string {
	return fmt.Sprintf("%s:login_logs", keyPrefix)
}
