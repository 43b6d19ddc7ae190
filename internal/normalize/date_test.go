package normalize_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-qc/internal/normalize"
)

func TestDateNormalizer_Parse(t *testing.T) {
	n := normalize.NewDateNormalizer()

	tests := []struct {
		name     string
		raw      string
		expected time.Time
	}{
		{"iso", "2024-03-15", time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)},
		{"german", "22.05.2024", time.Date(2024, time.May, 22, 0, 0, 0, 0, time.UTC)},
		{"slashed day first", "03/04/2024", time.Date(2024, time.April, 3, 0, 0, 0, 0, time.UTC)},
		{"slashed iso", "2024/05/22", time.Date(2024, time.May, 22, 0, 0, 0, 0, time.UTC)},
		{"textual us", "March 15, 2024", time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)},
		{"textual european", "15 March 2024", time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)},
		{"whitespace", "  2024-03-15  ", time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Parse(tt.raw)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "got %s", got)
		})
	}
}

func TestDateNormalizer_Unparseable(t *testing.T) {
	n := normalize.NewDateNormalizer()

	for _, raw := range []string{"", "not a date", "99/99/9999", "2024-13-45"} {
		_, err := n.Parse(raw)
		require.Error(t, err, "raw=%q", raw)

		var parseErr *normalize.DateParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, raw, parseErr.Raw)
	}
}

func TestDateNormalizer_CustomLayouts(t *testing.T) {
	n := normalize.NewDateNormalizer("01/02/2006")

	got, err := n.Parse("03/04/2024")
	require.NoError(t, err)
	assert.Equal(t, time.March, got.Month())

	_, err = n.Parse("2024-03-15")
	assert.Error(t, err)
}
