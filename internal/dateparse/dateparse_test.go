package dateparse_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsclip/newsclip/internal/dateparse"
)

func TestParseIn_PortugueseLongForm(t *testing.T) {
	t.Parallel()

	ts, ok := dateparse.ParseIn("Quarta-feira, 20 de Agosto de 2025, 11h30", time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.August, 20, 11, 30, 0, 0, time.UTC), ts)
}

func TestParseIn_AbbreviatedMonthAndBareHour(t *testing.T) {
	t.Parallel()

	ts, ok := dateparse.ParseIn("21 ago 2025 10h", time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.August, 21, 10, 0, 0, 0, time.UTC), ts)
}

func TestParseIn_LongFormWithoutTime(t *testing.T) {
	t.Parallel()

	ts, ok := dateparse.ParseIn("1 de março de 2024", time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), ts)
}

func TestParseIn_NumericDayFirst(t *testing.T) {
	t.Parallel()

	ts, ok := dateparse.ParseIn("20/08/2025 14:03", time.UTC)
	require.True(t, ok)
	assert.Equal(t, 20, ts.Day())
	assert.Equal(t, time.August, ts.Month())
	assert.Equal(t, 2025, ts.Year())
	assert.Equal(t, 14, ts.Hour())
	assert.Equal(t, 3, ts.Minute())
}

func TestParseIn_UpdatedTailStripped(t *testing.T) {
	t.Parallel()

	ts, ok := dateparse.ParseIn("20/08/2025 09:15 - Atualizado em 21/08/2025", time.UTC)
	require.True(t, ok)
	assert.Equal(t, 20, ts.Day())
	assert.Equal(t, 9, ts.Hour())
}

func TestParseIn_ISOFromMetaTag(t *testing.T) {
	t.Parallel()

	ts, ok := dateparse.ParseIn("2025-08-20T11:30:00Z", time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.August, 20, 11, 30, 0, 0, time.UTC), ts)
}

func TestParseIn_Garbage(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "   ", "sem data", "clique aqui", "31/02/2025"} {
		_, ok := dateparse.ParseIn(raw, time.UTC)
		assert.False(t, ok, "input %q", raw)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "weekday and connectors removed",
			in:   "Quarta-feira, 20 de Agosto de 2025, 11h30",
			want: "20 August 2025 11:30",
		},
		{
			name: "bare hour marker",
			in:   "21 ago 2025 10h",
			want: "21 August 2025 10:00",
		},
		{
			name: "hour with colon variant",
			in:   "11h:45",
			want: "11:45",
		},
		{
			name: "pipe tail dropped",
			in:   "20/08/2025 | Economia",
			want: "20/08/2025",
		},
		{
			name: "as with grave accent",
			in:   "20 de agosto de 2025 às 14h",
			want: "20 August 2025 14:00",
		},
		{
			name: "whitespace collapsed",
			in:   "  20/08/2025\n\t14:03  ",
			want: "20/08/2025 14:03",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, dateparse.Normalize(tt.in))
		})
	}
}
