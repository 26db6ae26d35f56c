package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// PaperKey returns the cache key for a room's candidate paper
// (the test definition with correct answers stripped).
func (r *CacheKeyStruct) PaperKey(roomNumber string) string {
	return fmt.Sprintf("room:%s:paper", roomNumber)
}

// RoomMonitorChannel returns the Redis PubSub channel name for a room's
// live admin monitor feed.
func (r *CacheKeyStruct) RoomMonitorChannel(roomNumber string) string {
	return fmt.Sprintf("room:%s:monitor", roomNumber)
}

var CacheKey = NewCacheKeyStruct()
