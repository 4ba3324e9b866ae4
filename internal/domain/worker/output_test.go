package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDeviceID(t *testing.T) {
	cases := []struct {
		name   string
		stdout string
		want   string
		found  bool
	}{
		{
			name:   "legacy enrolled line",
			stdout: "Card A1B2 enrolled for Alice\n",
			want:   "A1B2",
			found:  true,
		},
		{
			name:   "uid received line trimmed",
			stdout: "noise\nUID_RECEIVED: C3D4 \n",
			want:   "C3D4",
			found:  true,
		},
		{
			name:   "diagnostic noise ignored",
			stdout: "opening port\nbaud 115200\nCard 04AB11 enrolled for Bob\ndone\n",
			want:   "04AB11",
			found:  true,
		},
		{
			name:   "first matching line wins",
			stdout: "UID_RECEIVED:FIRST\nCard SECOND enrolled for Eve\n",
			want:   "FIRST",
			found:  true,
		},
		{
			name:   "nothing relevant",
			stdout: "nothing relevant",
			found:  false,
		},
		{
			name:   "card line without enrollment marker",
			stdout: "Card reader initialised\n",
			found:  false,
		},
		{
			name:   "empty output",
			stdout: "",
			found:  false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractDeviceID(tc.stdout)
			assert.Equal(t, tc.found, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
