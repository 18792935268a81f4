package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"

	"github.com/klokku/kladd/pkg/timerange"
	"github.com/klokku/kladd/pkg/timezone"
)

type Application struct {
	Listen   string   `koanf:"listen"`
	Locale   Locale   `koanf:"locale"`
	Calendar Calendar `koanf:"calendar"`
	Sessions Sessions `koanf:"sessions"`
	Google   Google   `koanf:"google"`
}

// Locale holds the date and time conventions fields are edited in. The
// formats use strftime notation.
type Locale struct {
	LongDateFormat   string        `koanf:"longdateformat"`
	TimeFormat       string        `koanf:"timeformat"`
	Timezone         string        `koanf:"timezone"`
	FirstWeekday     string        `koanf:"firstweekday"`
	EventDuration    time.Duration `koanf:"eventduration"`
	DayEventDuration time.Duration `koanf:"dayeventduration"`
}

type Calendar struct {
	Dir string `koanf:"dir"`
}

type Sessions struct {
	// TTL is how long an untouched draft session stays alive.
	TTL time.Duration `koanf:"ttl"`
	// Sweep is the cron spec for evicting expired sessions.
	Sweep string `koanf:"sweep"`
}

type Google struct {
	Enabled      bool   `koanf:"enabled"`
	ClientId     string `koanf:"clientid"`
	ClientSecret string `koanf:"clientsecret"`
	TokenFile    string `koanf:"tokenfile"`
	CalendarId   string `koanf:"calendarid"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Listen: ":8080",
		Locale: Locale{
			LongDateFormat:   "%d.%m.%Y",
			TimeFormat:       "%H:%M",
			Timezone:         "UTC",
			FirstWeekday:     "monday",
			EventDuration:    time.Hour,
			DayEventDuration: 24 * time.Hour,
		},
		Calendar: Calendar{
			Dir: "calendar",
		},
		Sessions: Sessions{
			TTL:   time.Hour,
			Sweep: "*/5 * * * *",
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "KLADD_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "KLADD_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// TimerangeLocale compiles the locale section into the form the editing
// packages work with.
func (a Application) TimerangeLocale() (timerange.Locale, error) {
	zone, err := timezone.Load(a.Locale.Timezone)
	if err != nil {
		return timerange.Locale{}, fmt.Errorf("locale timezone: %w", err)
	}
	locale, err := timerange.NewLocale(a.Locale.LongDateFormat, a.Locale.TimeFormat, zone)
	if err != nil {
		return timerange.Locale{}, err
	}

	if a.Locale.FirstWeekday != "" {
		weekday, ok := weekdays[strings.ToLower(a.Locale.FirstWeekday)]
		if !ok {
			return timerange.Locale{}, fmt.Errorf("unknown first weekday %q", a.Locale.FirstWeekday)
		}
		locale.FirstWeekday = weekday
	}
	if a.Locale.EventDuration > 0 {
		locale.DefaultEventDuration = a.Locale.EventDuration
	}
	if a.Locale.DayEventDuration > 0 {
		locale.DefaultDayEventDuration = a.Locale.DayEventDuration
	}
	return locale, nil
}
