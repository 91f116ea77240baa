package internal

import (
	"fmt"
	"time"

	"raid-lab/domain/raid"
)

type Config struct {
	NumberOfWorkers      int           `env:"NUMBER_OF_WORKERS,required=true"`
	BufferSize           int           `env:"BUFFER_SIZE,required=true"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,required=true"`
	CharReplacement      string        `env:"CHARACTER_REPLACEMENT,default=*"`
	GroupCapacity        int           `env:"GROUP_CAPACITY,default=20"`
	InviteCapacity       int           `env:"INVITE_CAPACITY,default=10"`
	RaidGroupLimit       int           `env:"RAID_GROUP_LIMIT,default=3"`
	MuleGroupCapacity    int           `env:"MULE_GROUP_CAPACITY,default=20"`
	MuleInviteCapacity   int           `env:"MULE_INVITE_CAPACITY,default=20"`
	InvitePageSize       int           `env:"INVITE_PAGE_SIZE,default=5"`
	SessionTTL           time.Duration `env:"SESSION_TTL,default=2h"`
	ExpiryInterval       time.Duration `env:"EXPIRY_INTERVAL,default=1m"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=30s"`
	LowCapacityThreshold int           `env:"LOW_CAPACITY_THRESHOLD,default=10"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
}

// RaidOptions are the limits of a regular raid or raid train.
func (c Config) RaidOptions() raid.Options {
	return raid.Options{
		Capacity:       c.GroupCapacity,
		InviteCapacity: c.InviteCapacity,
		GroupLimit:     c.RaidGroupLimit,
	}
}

// MuleOptions are the limits of a mule session, always a single group.
func (c Config) MuleOptions() raid.Options {
	return raid.Options{
		Capacity:       c.MuleGroupCapacity,
		InviteCapacity: c.MuleInviteCapacity,
		GroupLimit:     raid.MuleGroupLimit,
	}
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
