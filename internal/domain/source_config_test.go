package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/newsclip/newsclip/internal/domain"
)

func TestSectionRuleList(t *testing.T) {
	t.Parallel()

	cfg := &domain.SourceConfig{SectionRules: "nav a@href\n\n  .menu a@href  \n"}
	assert.Equal(t, []string{"nav a@href", ".menu a@href"}, cfg.SectionRuleList())

	empty := &domain.SourceConfig{}
	assert.Empty(t, empty.SectionRuleList())
}

func TestInterval_DefaultApplied(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 20*time.Minute, (&domain.SourceConfig{}).Interval())
	assert.Equal(t, 20*time.Minute, (&domain.SourceConfig{IntervalMinutes: -5}).Interval())
	assert.Equal(t, 45*time.Minute, (&domain.SourceConfig{IntervalMinutes: 45}).Interval())
}

func TestDue(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.August, 20, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-5 * time.Minute)
	stale := now.Add(-30 * time.Minute)

	tests := []struct {
		name string
		cfg  domain.SourceConfig
		want bool
	}{
		{"never run", domain.SourceConfig{Enabled: true}, true},
		{"disabled", domain.SourceConfig{Enabled: false}, false},
		{"running never due", domain.SourceConfig{Enabled: true, Status: domain.StatusRunning, LastRunAt: &stale}, false},
		{"within interval", domain.SourceConfig{Enabled: true, LastRunAt: &recent}, false},
		{"past interval", domain.SourceConfig{Enabled: true, LastRunAt: &stale}, true},
		{"past custom interval", domain.SourceConfig{Enabled: true, IntervalMinutes: 10, LastRunAt: &recent}, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.cfg.Due(now))
		})
	}
}
