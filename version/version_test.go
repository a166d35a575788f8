package version

import "testing"

func TestInfoString(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "dev"}, "dev"},
		{Info{Version: "1.0.0", Commit: "abc1234"}, "1.0.0-abc1234"},
		{Info{Version: "1.0.0", Commit: "abc1234", Dirty: true}, "1.0.0-abc1234-dirty"},
		{Info{Version: "1.0.0", Dirty: true}, "1.0.0-dirty"},
	}
	for _, tt := range tests {
		if got := tt.info.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.info, got, tt.want)
		}
	}
}

func TestGetUsesLinkedValues(t *testing.T) {
	origVersion, origCommit := Version, Commit
	defer func() { Version, Commit = origVersion, origCommit }()

	Version = "2.1.0"
	Commit = "0123456789abcdef"

	info := Get()
	if info.Version != "2.1.0" {
		t.Errorf("expected linked version, got %q", info.Version)
	}
	if info.Commit != "0123456" {
		t.Errorf("expected commit shortened to 7 chars, got %q", info.Commit)
	}
}
