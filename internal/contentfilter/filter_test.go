package contentfilter

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Validate(t *testing.T) {
	t.Parallel()

	f := New([]string{"spam", "黑产", ""})

	tests := []struct {
		name       string
		input      string
		wantOK     bool
		wantText   string
		wantReason string
	}{
		{"Plain", "hello world", true, "hello world", ""},
		{"Trimmed", "  hello  \n", true, "hello", ""},
		{"Empty", "", false, "", ReasonEmpty},
		{"Whitespace Only", " \t\n ", false, "", ReasonEmpty},
		{"Masked", "buy spam now", true, "buy **** now", ""},
		{"Repeated Phrase", "spamspam", true, "********", ""},
		{"Multibyte Phrase", "拒绝黑产", true, "拒绝**", ""},
		{"Case Sensitive", "SPAM", true, "SPAM", ""},
		{"Exactly Max Length", strings.Repeat("a", MaxLength), true, strings.Repeat("a", MaxLength), ""},
		{"Max Length Multibyte", strings.Repeat("好", MaxLength), true, strings.Repeat("好", MaxLength), ""},
		{"Too Long", strings.Repeat("a", MaxLength+1), false, "", ReasonTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.Validate(tt.input)
			assert.Equal(t, tt.wantOK, res.OK)
			assert.Equal(t, tt.wantReason, res.Reason)
			if tt.wantOK {
				assert.Equal(t, tt.wantText, res.Text)
			}
		})
	}
}

func TestFilter_OutputNeverLonger(t *testing.T) {
	t.Parallel()

	f := New([]string{"ab", "é", "暴力"})
	inputs := []string{"abab", "café", "不要暴力", "xyz", "éabé暴力ab"}
	for _, in := range inputs {
		res := f.Validate(in)
		assert.True(t, res.OK, in)
		assert.LessOrEqual(t, utf8.RuneCountInString(res.Text), utf8.RuneCountInString(in), in)
		assert.NotContains(t, res.Text, "ab")
		assert.NotContains(t, res.Text, "暴力")
	}
}

func TestNew_IgnoresEmptyPhrases(t *testing.T) {
	t.Parallel()

	f := New([]string{"", "x", ""})
	assert.Equal(t, []string{"x"}, f.Phrases())
	assert.Equal(t, "hello", f.Mask("hello"))
}

func TestNew_KeepsPhrasesLiteral(t *testing.T) {
	t.Parallel()

	f := New([]string{" foo "})
	assert.Equal(t, []string{" foo "}, f.Phrases())
	assert.Equal(t, "food", f.Mask("food"))
	assert.Equal(t, "a*****b", f.Mask("a foo b"))
}
