package startup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type launchCommandCase struct {
	name string
	exe  string
	args []string
	want string
}

func runLaunchCommandCases(t *testing.T, tests []launchCommandCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LaunchCommand(tt.exe, tt.args))
		})
	}
}

func TestLaunchCommand(t *testing.T) {
	runLaunchCommandCases(t, []launchCommandCase{
		{
			name: "no args",
			exe:  "/usr/local/bin/notifyy",
			want: `"/usr/local/bin/notifyy"`,
		},
		{
			name: "plain args kept",
			exe:  "/opt/notifyy",
			args: []string{"--port", "9000", "--show"},
			want: `"/opt/notifyy" --port 9000 --show`,
		},
		{
			name: "args with spaces quoted",
			exe:  "/opt/notifyy",
			args: []string{"--web-dir", "/home/me/My Site", ""},
			want: `"/opt/notifyy" --web-dir "/home/me/My Site" ""`,
		},
		{
			name: "embedded quotes escaped",
			exe:  "/opt/notifyy",
			args: []string{`say "hi"`},
			want: `"/opt/notifyy" "say \"hi\""`,
		},
		{
			name: "quote in executable path escaped",
			exe:  `/opt/my "app"/notifyy`,
			want: `"/opt/my \"app\"/notifyy"`,
		},
	})
}
