package snippet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Segment
	}{
		{
			name: "empty",
			in:   "",
			want: nil,
		},
		{
			name: "no markup",
			in:   "不法行為による損害賠償",
			want: []Segment{{Text: "不法行為による損害賠償"}},
		},
		{
			name: "single highlight",
			in:   "故意又は過失によって<mark>他人の権利</mark>を侵害した者",
			want: []Segment{
				{Text: "故意又は過失によって"},
				{Text: "他人の権利", Highlight: true},
				{Text: "を侵害した者"},
			},
		},
		{
			name: "multiple highlights",
			in:   "<mark>民法</mark>と<mark>商法</mark>",
			want: []Segment{
				{Text: "民法", Highlight: true},
				{Text: "と"},
				{Text: "商法", Highlight: true},
			},
		},
		{
			name: "leading and trailing plain",
			in:   "a<mark>b</mark>",
			want: []Segment{{Text: "a"}, {Text: "b", Highlight: true}},
		},
		{
			name: "unbalanced open tag degrades to plain",
			in:   "前段<mark>後段",
			want: []Segment{{Text: "前段後段"}},
		},
		{
			name: "empty highlight dropped",
			in:   "a<mark></mark>b",
			want: []Segment{{Text: "a"}, {Text: "b"}},
		},
		{
			name: "escaped entities pass through untouched",
			in:   "&lt;条文&gt;の<mark>&amp;</mark>",
			want: []Segment{
				{Text: "&lt;条文&gt;の"},
				{Text: "&amp;", Highlight: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in))
		})
	}
}

func TestPlain(t *testing.T) {
	in := "故意又は<mark>過失</mark>によって"
	assert.Equal(t, "故意又は過失によって", Plain(in))
}

func TestPlain_RoundTripsUnmarkedText(t *testing.T) {
	in := "第七百九条 故意又は過失によって他人の権利を侵害した者は"
	assert.Equal(t, in, Plain(in))
}
