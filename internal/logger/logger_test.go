package logger_test

import (
	"testing"

	"github.com/mealtrack/meal-tracker/internal/logger"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		format     string
		wantLevel  logrus.Level
		wantFormat interface{}
	}{
		{"json debug", "debug", "json", logrus.DebugLevel, &logrus.JSONFormatter{}},
		{"text warn", "warn", "TEXT", logrus.WarnLevel, &logrus.TextFormatter{}},
		{"unknown level", "loud", "", logrus.InfoLevel, &logrus.JSONFormatter{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := logger.New(tt.level, tt.format)
			assert.Equal(t, tt.wantLevel, log.GetLevel())
			assert.IsType(t, tt.wantFormat, log.Formatter)
		})
	}
}

func TestComponent(t *testing.T) {
	entry := logger.Component(nil, "cache")
	assert.Equal(t, "cache", entry.Data["component"])
}
