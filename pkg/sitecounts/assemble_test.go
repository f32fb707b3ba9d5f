package sitecounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstitute(t *testing.T) {
	values := []string{"A", "B", "C", "D"}

	tests := []struct {
		name string
		tmpl string
		want string
	}{
		{"default template", DefaultTemplate, `<div A><ul>B</ul><p>C</p>D</div>`},
		{"sequential", "%s|%s|%s|%s", "A|B|C|D"},
		{"fewer sequential slots", "<div %s><ul>%s</ul></div>", "<div A><ul>B</ul></div>"},
		{"no slots", "static", "static"},
		{"positional", "%4$s-%1$s", "D-A"},
		{"indexed out of order", "%[3]s%[3]s%[1]s", "CCA"},
		{"sequential past last value", "%s%s%s%s%s", "ABCD"},
		{"index out of range", "x%[9]sy", "xy"},
		{"literal percent", "100%% %s", "100% A"},
		{"other verbs untouched", "%d %[x]s %", "%d %[x]s %"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, substitute(tt.tmpl, values...))
		})
	}
}
