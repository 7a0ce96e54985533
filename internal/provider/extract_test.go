package provider

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractScore(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
		ok   bool
	}{
		{"current", `{"current": 2, "display": 3}`, 2, true},
		{"display fallback", `{"display": 1, "period1": 0}`, 1, true},
		{"normaltime fallback", `{"normaltime": 4}`, 4, true},
		{"bare number", `3`, 3, true},
		{"numeric string", `"0"`, 0, true},
		{"empty object", `{}`, 0, false},
		{"null", `null`, 0, false},
		{"garbage string", `"n/a"`, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v interface{}
			assert.NoError(t, json.Unmarshal([]byte(tt.raw), &v))
			got, ok := ExtractScore(v)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScorePtr(t *testing.T) {
	assert.Nil(t, ScorePtr(nil))
	p := ScorePtr(map[string]interface{}{"current": float64(1)})
	if assert.NotNil(t, p) {
		assert.Equal(t, 1, *p)
	}
}

func TestEvent_Finished(t *testing.T) {
	one := 1
	assert.True(t, Event{Status: StatusFinished, HomeScore: &one, AwayScore: &one}.Finished())
	assert.False(t, Event{Status: StatusFinished, HomeScore: &one}.Finished())
	assert.False(t, Event{Status: StatusLive, HomeScore: &one, AwayScore: &one}.Finished())
}
