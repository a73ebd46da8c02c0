package version

import (
	"runtime"
	"runtime/debug"
	"strings"
	"testing"
)

func TestGetInfo(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date
	defer func() {
		Version, Commit, Date = origVersion, origCommit, origDate
	}()

	Version = "1.0.0"
	Commit = "abc123def456"
	Date = "2024-01-01T12:00:00Z"

	info := GetInfo()

	if info.Version != "1.0.0" {
		t.Errorf("GetInfo().Version = %v, want 1.0.0", info.Version)
	}
	if info.Commit != "abc123def456" {
		t.Errorf("GetInfo().Commit = %v, want abc123def456", info.Commit)
	}
	if info.Date != "2024-01-01T12:00:00Z" {
		t.Errorf("GetInfo().Date = %v, want 2024-01-01T12:00:00Z", info.Date)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GetInfo().GoVersion = %v, want %v", info.GoVersion, runtime.Version())
	}
	if want := runtime.GOOS + "/" + runtime.GOARCH; info.Platform != want {
		t.Errorf("GetInfo().Platform = %v, want %v", info.Platform, want)
	}
}

func TestFillFromBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/felixgeelhaar/forecast", Version: "v0.3.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2025-06-01T08:00:00Z"},
		},
	}

	t.Run("fills defaults", func(t *testing.T) {
		info := Info{Version: "dev", Commit: "unknown", Date: "unknown"}
		fillFromBuildInfo(&info, bi)

		if info.Version != "v0.3.0" || info.Commit != "0123456789abcdef" || info.Date != "2025-06-01T08:00:00Z" {
			t.Errorf("unexpected info %+v", info)
		}
	})

	t.Run("keeps ldflags values", func(t *testing.T) {
		info := Info{Version: "1.0.0", Commit: "feedface", Date: "2024-01-01"}
		fillFromBuildInfo(&info, bi)

		if info.Version != "1.0.0" || info.Commit != "feedface" || info.Date != "2024-01-01" {
			t.Errorf("ldflags values were overwritten: %+v", info)
		}
	})

	t.Run("ignores devel builds", func(t *testing.T) {
		info := Info{Version: "dev", Commit: "unknown", Date: "unknown"}
		fillFromBuildInfo(&info, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})

		if info.Version != "dev" {
			t.Errorf("Version = %q, want dev", info.Version)
		}
	})
}

func TestInfoString(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want []string
	}{
		{
			name: "long commit is shortened",
			info: Info{Version: "1.0.0", Commit: "abc123def456789", Date: "2024-01-01", GoVersion: "go1.22.0", Platform: "linux/amd64"},
			want: []string{"forecast", "1.0.0", "(abc123de)", "built 2024-01-01", "go1.22.0", "linux/amd64"},
		},
		{
			name: "short commit is kept",
			info: Info{Version: "dev", Commit: "abc", Date: "unknown", GoVersion: "go1.23.1", Platform: "darwin/arm64"},
			want: []string{"forecast dev (abc)", "darwin/arm64"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.info.String()
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("String() = %q, want substring %q", got, want)
				}
			}
		})
	}
}

func TestInfoShort(t *testing.T) {
	if got := (Info{Version: "2.1.0"}).Short(); got != "2.1.0" {
		t.Errorf("Short() = %q, want 2.1.0", got)
	}
}
