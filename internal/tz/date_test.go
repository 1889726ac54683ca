package tz

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2024, Month: time.February, Day: 29}, d)

	_, err = ParseDate("2024-13-01")
	assert.Error(t, err)
	_, err = ParseDate("15/01/2024")
	assert.Error(t, err)
}

func TestDateString(t *testing.T) {
	assert.Equal(t, "2024-01-05", NewDate(2024, time.January, 5).String())
}

func TestAddDays(t *testing.T) {
	assert.Equal(t, MustParseDate("2024-03-01"), MustParseDate("2024-02-29").AddDays(1))
	assert.Equal(t, MustParseDate("2023-12-31"), MustParseDate("2024-01-01").AddDays(-1))
	assert.Equal(t, MustParseDate("2024-01-31"), MustParseDate("2024-01-01").AddDays(30))
}

func TestDateOrdering(t *testing.T) {
	a := MustParseDate("2024-01-15")
	b := MustParseDate("2024-02-01")

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(MustParseDate("2024-01-15")))
}

func TestDateJSON(t *testing.T) {
	type wrapper struct {
		Due *Date `json:"due,omitempty"`
	}

	out, err := json.Marshal(wrapper{Due: &Date{Year: 2024, Month: time.June, Day: 9}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"due":"2024-06-09"}`, string(out))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"due":"2024-06-09"}`), &w))
	require.NotNil(t, w.Due)
	assert.Equal(t, MustParseDate("2024-06-09"), *w.Due)

	// Empty string decodes to the zero date instead of failing.
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`""`), &d))
	assert.True(t, d.IsZero())
}

func TestWeekday(t *testing.T) {
	// 2024-01-15 was a Monday everywhere.
	assert.Equal(t, time.Monday, MustParseDate("2024-01-15").Weekday())
}
