package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchTopic(t *testing.T) {
	tests := []struct {
		topic   string
		pattern string
		want    bool
	}{
		{"", "", true},
		{"", "*", true},
		{"", "**", true},
		{"", "?", false},
		{"a", "", false},
		{"a", "*", true},
		{"a", "a", true},
		{"a", "b", false},
		{"comp", "comp*", true},
		{"complete", "comp*", true},
		{"computer", "comp*", true},
		{"comp", "comp?", false},
		{"camp", "c?mp", true},
		{"comp", "c?mp", true},
		{"coop", "c??p", true},
		{"cmp", "c?mp", false},
		{"data.trade", "data.*", true},
		{"data.trade", "data.trade", true},
		{"data.book", "data.trade", false},
		{"data.trades.BTC-USDT", "data.trades.*", true},
		{"data.trades.BTC-USDT", "*.BTC-USDT", true},
		{"data.trades.BTC-USDT", "data.*.ETH-USDT", false},
		{"abc", "*b*", true},
		{"abc", "*c", true},
		{"abc", "a*?", true},
		{"Data.trade", "data.*", false}, // byte-exact, no case folding
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, MatchTopic(tt.topic, tt.pattern),
			"MatchTopic(%q, %q)", tt.topic, tt.pattern)
	}
}

func TestMatchTopicNoSeparatorSemantics(t *testing.T) {
	// The pattern language is flat: `*` crosses dots freely.
	assert.True(t, MatchTopic("data.trades.BTC-USDT", "data.*"))
	assert.True(t, MatchTopic("data.trades.BTC-USDT", "*"))
	assert.True(t, MatchTopic("a.b.c", "a*c"))
}
