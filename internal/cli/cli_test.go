package cli_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/chzyer/readline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flight-delay-eda/internal/cli"
	"github.com/couchcryptid/flight-delay-eda/internal/config"
	"github.com/couchcryptid/flight-delay-eda/internal/pipeline"
)

func TestParseArgs(t *testing.T) {
	t.Setenv(cli.ConfigEnv, "")

	tests := []struct {
		name string
		args []string
		want cli.Options
	}{
		{
			name: "defaults",
			args: nil,
			want: cli.Options{Phase: pipeline.PhaseAll, ConfigPath: config.DefaultPath},
		},
		{
			name: "numbered phase without config",
			args: []string{"--phase", "2"},
			want: cli.Options{Phase: pipeline.PhaseClean, ConfigPath: config.DefaultPath},
		},
		{
			name: "smoke with config",
			args: []string{"--phase", "smoke", "--config", "foo.toml"},
			want: cli.Options{Phase: pipeline.PhaseSmoke, ConfigPath: "foo.toml"},
		},
		{
			name: "all flags",
			args: []string{"--phase=3", "--log-level", "debug", "--profile", "-i"},
			want: cli.Options{
				Phase:       pipeline.PhasePlot,
				ConfigPath:  config.DefaultPath,
				LogLevel:    "debug",
				Profile:     true,
				Interactive: true,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cli.ParseArgs(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseArgs_ConfigEnvOverridesFlag(t *testing.T) {
	t.Setenv(cli.ConfigEnv, "/etc/eda.toml")

	got, err := cli.ParseArgs([]string{"--config", "foo.toml"})
	require.NoError(t, err)
	assert.Equal(t, "/etc/eda.toml", got.ConfigPath)
}

func TestParseArgs_Errors(t *testing.T) {
	t.Setenv(cli.ConfigEnv, "")

	_, err := cli.ParseArgs([]string{"--phase", "7"})
	var unknown *pipeline.UnknownPhaseError
	assert.True(t, errors.As(err, &unknown))

	_, err = cli.ParseArgs([]string{"--bogus"})
	assert.Error(t, err)

	_, err = cli.ParseArgs([]string{"extra"})
	assert.Error(t, err)
}

func TestRootCmd_MissingConfigFails(t *testing.T) {
	t.Setenv(cli.ConfigEnv, "")
	cmd := cli.NewRootCmd()
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "absent.toml"), "--phase", "1"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRootCmd_RunsCleanPhase(t *testing.T) {
	dir := t.TempDir()
	raw := filepath.Join(dir, "raw.csv")
	require.NoError(t, os.WriteFile(raw, []byte(
		"fl_date,op_unique_carrier,origin,dest,crs_dep_time,dep_time,arr_time,dep_delay,arr_delay,distance,"+
			"cancelled,diverted,cancellation_code,carrier_delay,weather_delay,nas_delay,security_delay,late_aircraft_delay\n"+
			"2024-01-05,AA,JFK,LAX,0815,0820,1130,5,20,2475,0,0,,20,,,,\n"), 0o600))
	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
[data]
raw_file = "`+filepath.ToSlash(raw)+`"
cleaned_file = "`+filepath.ToSlash(filepath.Join(dir, "cleaned.csv"))+`"
sample_file = "`+filepath.ToSlash(filepath.Join(dir, "sample.csv"))+`"

[plots]
dir = "`+filepath.ToSlash(filepath.Join(dir, "plots"))+`"
`), 0o600))
	t.Setenv(cli.ConfigEnv, cfgPath)

	var out bytes.Buffer
	cmd := cli.NewRootCmd()
	cmd.SetArgs([]string{"--phase", "2", "--log-level", "error"})
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)

	require.NoError(t, cmd.Execute())
	_, err := os.Stat(filepath.Join(dir, "cleaned.csv"))
	assert.NoError(t, err)
}

// --- menu ---

type scriptedReader struct {
	lines []string
	err   error
}

func (s *scriptedReader) Readline() (string, error) {
	if len(s.lines) == 0 {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

type recordingRunner struct {
	phases []pipeline.Phase
	fail   map[pipeline.Phase]error
}

func (r *recordingRunner) Run(_ context.Context, phase pipeline.Phase) (*pipeline.Result, error) {
	r.phases = append(r.phases, phase)
	if err := r.fail[phase]; err != nil {
		return nil, err
	}
	return &pipeline.Result{}, nil
}

func TestMenu_Loop(t *testing.T) {
	runner := &recordingRunner{fail: map[pipeline.Phase]error{
		pipeline.PhasePlot: &pipeline.MissingFileError{Path: "cleaned.csv", Hint: "run Phase 2 first"},
	}}
	var out, errOut bytes.Buffer
	in := &scriptedReader{lines: []string{"1", "3", " 2 ", "x", "h", "", "5", "q", "4"}}

	err := cli.NewMenu(runner, &out, &errOut).Loop(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, []pipeline.Phase{pipeline.PhaseLoad, pipeline.PhasePlot, pipeline.PhaseClean, pipeline.PhaseSmoke}, runner.phases)
	assert.Contains(t, errOut.String(), "run Phase 2 first")
	assert.Contains(t, errOut.String(), `unknown choice "x"`)
	assert.Contains(t, out.String(), "phase clean done")
	assert.NotContains(t, out.String(), "phase plot done")
}

func TestMenu_LoopEndsAtEOF(t *testing.T) {
	runner := &recordingRunner{}
	err := cli.NewMenu(runner, io.Discard, io.Discard).Loop(context.Background(), &scriptedReader{lines: []string{"4"}})
	require.NoError(t, err)
	assert.Equal(t, []pipeline.Phase{pipeline.PhaseAll}, runner.phases)
}

func TestMenu_LoopSkipsInterrupt(t *testing.T) {
	runner := &recordingRunner{}
	in := &interruptOnce{next: &scriptedReader{lines: []string{"1"}}}

	err := cli.NewMenu(runner, io.Discard, io.Discard).Loop(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []pipeline.Phase{pipeline.PhaseLoad}, runner.phases)
}

func TestMenu_LoopReturnsReadError(t *testing.T) {
	boom := errors.New("terminal gone")
	err := cli.NewMenu(&recordingRunner{}, io.Discard, io.Discard).Loop(context.Background(), &scriptedReader{err: boom})
	assert.ErrorIs(t, err, boom)
}

func TestMenu_DispatchQuit(t *testing.T) {
	m := cli.NewMenu(&recordingRunner{}, io.Discard, io.Discard)
	assert.True(t, m.Dispatch(context.Background(), "Q"))
	assert.False(t, m.Dispatch(context.Background(), "help"))
}

type interruptOnce struct {
	done bool
	next cli.LineReader
}

func (i *interruptOnce) Readline() (string, error) {
	if !i.done {
		i.done = true
		return "", readline.ErrInterrupt
	}
	return i.next.Readline()
}
