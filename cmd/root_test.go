package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietdv277/keyrot/internal/credstore"
	"github.com/vietdv277/keyrot/internal/rotate"
	"github.com/vietdv277/keyrot/internal/ui"
	"github.com/vietdv277/keyrot/pkg/types"
)

// resetFlag restores a root flag to its default after a test parses it
func resetFlag(t *testing.T, name string) {
	t.Helper()
	t.Cleanup(func() {
		f := rootCmd.Flags().Lookup(name)
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

func TestEnvFlag(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantPath string
		wantArgs []string
	}{
		{name: "not given", args: nil, wantPath: ""},
		{name: "short without value", args: []string{"-e"}, wantPath: credstore.DefaultEnvPath},
		{name: "long without value", args: []string{"--env"}, wantPath: credstore.DefaultEnvPath},
		{name: "long with value", args: []string{"--env=app/.env"}, wantPath: "app/.env"},
		{name: "short with attached value", args: []string{"-e=app/.env"}, wantPath: "app/.env"},
		{name: "separate value is an argument", args: []string{"-e", "app/.env"}, wantPath: credstore.DefaultEnvPath, wantArgs: []string{"app/.env"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlag(t, "env")

			flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
			flags.AddFlagSet(rootCmd.Flags())
			require.NoError(t, flags.Parse(tt.args))

			assert.Equal(t, tt.wantPath, viper.GetString(keyEnvFile))
			assert.Equal(t, len(tt.wantArgs), len(flags.Args()))
			if len(tt.wantArgs) > 0 {
				assert.Equal(t, tt.wantArgs, flags.Args())
			}
		})
	}
}

func TestSelectProfilesMapsCancel(t *testing.T) {
	profiles := []types.Profile{{Name: "default", AccessKeyID: "AKIAOLD"}}

	tests := []struct {
		name    string
		pick    func([]types.Profile, int) ([]types.Profile, error)
		wantErr error
		wantLen int
	}{
		{
			name:    "cancelled",
			pick:    func([]types.Profile, int) ([]types.Profile, error) { return nil, ui.ErrCancelled },
			wantErr: rotate.ErrSelectionCancelled,
		},
		{
			name: "selected",
			pick: func(p []types.Profile, limit int) ([]types.Profile, error) {
				assert.Equal(t, rotate.MaxProfiles, limit)
				return p, nil
			},
			wantLen: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := pickProfiles
			pickProfiles = tt.pick
			t.Cleanup(func() { pickProfiles = orig })

			selected, err := selectProfiles(profiles)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, selected, tt.wantLen)
		})
	}
}

func TestSelectProfilesPassesOtherErrors(t *testing.T) {
	boom := errors.New("no tty")
	orig := pickProfiles
	pickProfiles = func([]types.Profile, int) ([]types.Profile, error) { return nil, boom }
	t.Cleanup(func() { pickProfiles = orig })

	_, err := selectProfiles(nil)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, rotate.ErrSelectionCancelled)
}

func TestVersionCommand(t *testing.T) {
	orig := Version
	Version = "v1.2.3"
	t.Cleanup(func() { Version = orig })

	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	t.Cleanup(func() { versionCmd.SetOut(nil) })

	versionCmd.Run(versionCmd, nil)

	assert.Contains(t, buf.String(), "Version:    v1.2.3")
}
