// Package config resolves daybook's file locations and runtime settings.
// Settings come from environment variables (DAYBOOK_*), optionally seeded
// from an env-style config file, with sane defaults and clamps for
// everything.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/drewfead/daybook/internal/planner"
)

const (
	maxWarmMonths   = 6
	defaultSchedule = "*/10 * * * *"
)

// Runtime is the resolved runtime configuration.
type Runtime struct {
	ConfigFile string

	Accounts []planner.AccountKind

	// APIEndpoint overrides the Google Calendar API base URL, mainly for
	// pointing the client at a test server.
	APIEndpoint string

	HourHeight       float64
	ColumnWidth      float64
	MinEventHeight   float64
	Gap              float64
	AllDayItemHeight float64
	AllDayPadding    float64
	BaseHour         int
	VisibleHours     int

	MemoryTTL  time.Duration
	PersistTTL time.Duration
	WarmMonths int

	CacheDB       string
	WatchSchedule string
}

// Load resolves the runtime configuration.
func Load() (Runtime, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return Runtime{}, err
	}

	defaultConfig := filepath.Join(configDir, "daybook.env")
	configFile := strings.TrimSpace(os.Getenv("DAYBOOK_CONFIG_FILE"))
	if configFile == "" {
		configFile = defaultConfig
	}

	_ = loadEnvFile(configFile)

	defaultCacheDB, err := GetCacheDBPath()
	if err != nil {
		return Runtime{}, err
	}

	v := viper.New()
	v.SetEnvPrefix("DAYBOOK")
	v.AutomaticEnv()

	v.SetDefault("accounts", "personal,professional")
	v.SetDefault("api_endpoint", "")
	v.SetDefault("hour_height", 60)
	v.SetDefault("column_width", 200)
	v.SetDefault("min_event_height", 20)
	v.SetDefault("gap", 2)
	v.SetDefault("all_day_item_height", 20)
	v.SetDefault("all_day_padding", 4)
	v.SetDefault("base_hour", 0)
	v.SetDefault("visible_hours", 24)
	v.SetDefault("memory_ttl_minutes", 30)
	v.SetDefault("persist_ttl_hours", 24)
	v.SetDefault("warm_months", 1)
	v.SetDefault("cache_db", defaultCacheDB)
	v.SetDefault("watch_schedule", defaultSchedule)

	accounts, err := parseAccounts(v.GetString("accounts"))
	if err != nil {
		return Runtime{}, err
	}

	hourHeight := v.GetFloat64("hour_height")
	if hourHeight <= 0 {
		hourHeight = 60
	}

	columnWidth := v.GetFloat64("column_width")
	if columnWidth <= 0 {
		columnWidth = 200
	}

	minEventHeight := v.GetFloat64("min_event_height")
	if minEventHeight <= 0 {
		minEventHeight = 20
	}

	gap := v.GetFloat64("gap")
	if gap < 0 {
		gap = 2
	}

	baseHour := v.GetInt("base_hour")
	if baseHour < 0 || baseHour > 23 {
		baseHour = 0
	}

	visibleHours := v.GetInt("visible_hours")
	if visibleHours < 1 || visibleHours > 24 {
		visibleHours = 24
	}

	memoryTTLMinutes := v.GetInt("memory_ttl_minutes")
	if memoryTTLMinutes <= 0 {
		memoryTTLMinutes = 30
	}

	persistTTLHours := v.GetInt("persist_ttl_hours")
	if persistTTLHours <= 0 {
		persistTTLHours = 24
	}

	warmMonths := v.GetInt("warm_months")
	if warmMonths < 1 {
		warmMonths = 1
	}
	if warmMonths > maxWarmMonths {
		warmMonths = maxWarmMonths
	}

	cacheDB := strings.TrimSpace(v.GetString("cache_db"))
	if cacheDB == "" {
		cacheDB = defaultCacheDB
	}

	schedule := strings.TrimSpace(v.GetString("watch_schedule"))
	if schedule == "" {
		schedule = defaultSchedule
	}

	return Runtime{
		ConfigFile:       configFile,
		Accounts:         accounts,
		APIEndpoint:      strings.TrimSpace(v.GetString("api_endpoint")),
		HourHeight:       hourHeight,
		ColumnWidth:      columnWidth,
		MinEventHeight:   minEventHeight,
		Gap:              gap,
		AllDayItemHeight: v.GetFloat64("all_day_item_height"),
		AllDayPadding:    v.GetFloat64("all_day_padding"),
		BaseHour:         baseHour,
		VisibleHours:     visibleHours,
		MemoryTTL:        time.Duration(memoryTTLMinutes) * time.Minute,
		PersistTTL:       time.Duration(persistTTLHours) * time.Hour,
		WarmMonths:       warmMonths,
		CacheDB:          cacheDB,
		WatchSchedule:    schedule,
	}, nil
}

func parseAccounts(raw string) ([]planner.AccountKind, error) {
	var accounts []planner.AccountKind
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kind, err := planner.ParseAccountKind(part)
		if err != nil {
			return nil, fmt.Errorf("invalid accounts setting: %w", err)
		}
		accounts = append(accounts, kind)
	}
	if len(accounts) == 0 {
		return planner.Kinds(), nil
	}
	return accounts, nil
}

// loadEnvFile seeds the process environment from an env-style file, without
// overriding variables already set.
func loadEnvFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("unable to open config file %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" {
			continue
		}

		if len(value) >= 2 {
			if (value[0] == '\'' && value[len(value)-1] == '\'') ||
				(value[0] == '"' && value[len(value)-1] == '"') {
				value = value[1 : len(value)-1]
			}
		}

		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		_ = os.Setenv(key, value)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("unable to scan config file %s: %w", path, err)
	}
	return nil
}
