package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/conceptnav/internal/artefact"
	"github.com/zjrosen/conceptnav/internal/category"
	"github.com/zjrosen/conceptnav/internal/config"
	"github.com/zjrosen/conceptnav/internal/registry"
	"github.com/zjrosen/conceptnav/internal/testutil"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"general", errors.New("boom"), ExitGeneralError},
		{"config", fmt.Errorf("%w: fetch.concurrency", ErrInvalidConfig), ExitConfigError},
		{"malformed", fmt.Errorf("loading catalogue: %w", registry.ErrMalformedResponse), ExitMalformedResponse},
		{"invalid bundle", fmt.Errorf("DF_X: %w", artefact.ErrInvalidBundle), ExitInvalidBundle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ExitCodeForError(tt.err))
		})
	}
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    category.Selection
		wantErr bool
	}{
		{"empty", nil, category.Selection{}, false},
		{"single", []string{"MICRODATA_DOMAINS=LFS"}, category.Selection{"MICRODATA_DOMAINS": "LFS"}, false},
		{"scheme upper-cased", []string{"microdata_domains=LFS"}, category.Selection{"MICRODATA_DOMAINS": "LFS"}, false},
		{"several", []string{"A=1", "B=2"}, category.Selection{"A": "1", "B": "2"}, false},
		{"empty category clears", []string{"A=1", "A="}, category.Selection{}, false},
		{"missing separator", []string{"LFS"}, nil, true},
		{"missing scheme", []string{"=LFS"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSelection(tt.pairs)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_WritesDefaultWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	c, used, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, path, used)
	require.FileExists(t, path)

	defaults := config.Defaults()
	require.Equal(t, defaults.Registry, c.Registry)
	require.Equal(t, defaults.Fetch, c.Fetch)
	require.Equal(t, defaults.Flags, c.Flags)
}

func TestLoadConfig_FileAndEnvironment(t *testing.T) {
	path := writeConfig(t, `
registry:
  base_url: http://registry.test/sdmx/v2/structure
fetch:
  concurrency: 2
catalogue:
  default_selection:
    MICRODATA_DOMAINS: HBS
flags:
  durable-cache: false
`)
	t.Setenv("CONCEPTNAV_FETCH_CONCURRENCY", "5")

	c, used, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, path, used)
	require.Equal(t, "http://registry.test/sdmx/v2/structure", c.Registry.BaseURL)
	require.Equal(t, 5, c.Fetch.Concurrency)
	require.Equal(t, category.Selection{"MICRODATA_DOMAINS": "HBS"}, c.Selection())
	require.False(t, c.Flags["durable-cache"])
	require.Contains(t, c.Flags, "prefetch-constraints", "unset flags keep their defaults")
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := writeConfig(t, "fetch:\n  concurrency: 0\n")

	_, _, err := loadConfig(path)
	require.ErrorIs(t, err, ErrInvalidConfig)
	require.Equal(t, ExitConfigError, ExitCodeForError(err))
}

func TestLoadConfig_Unparseable(t *testing.T) {
	path := writeConfig(t, "registry: [unclosed\n")

	_, _, err := loadConfig(path)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

// resetFlags restores every flag of c and its subcommands so consecutive
// executions in one test binary do not see each other's arguments.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(t.Context())
	return out.String(), err
}

func registryConfig(t *testing.T, srv *testutil.RegistryServer) string {
	t.Helper()
	return writeConfig(t, fmt.Sprintf(`
registry:
  base_url: %s
cache:
  path: %s
`, srv.URL, filepath.Join(t.TempDir(), "responses.db")))
}

func newServer(t *testing.T) *testutil.RegistryServer {
	t.Helper()
	return testutil.NewRegistryServer(t, testutil.NewBuilder().WithStandardCatalogue())
}

func TestConceptsCommand(t *testing.T) {
	srv := newServer(t)
	path := registryConfig(t, srv)

	out, err := run(t, "--config", path, "concepts")
	require.NoError(t, err)
	for _, want := range []string{"SEX", "AGE", "REGION", "LFS_2020"} {
		require.Contains(t, out, want)
	}

	out, err = run(t, "--config", path, "concepts", "--select", "MICRODATA_DOMAINS=HBS")
	require.NoError(t, err)
	require.Contains(t, out, "SEX")
	require.NotContains(t, out, "REGION")
}

func TestConceptsCommand_DefaultSelectionFromConfig(t *testing.T) {
	srv := newServer(t)
	path := writeConfig(t, fmt.Sprintf(`
registry:
  base_url: %s
cache:
  disabled: true
catalogue:
  default_selection:
    MICRODATA_DOMAINS: HBS
`, srv.URL))

	out, err := run(t, "--config", path, "concepts")
	require.NoError(t, err)
	require.NotContains(t, out, "REGION")
}

func TestConceptsCommand_JSON(t *testing.T) {
	srv := newServer(t)

	out, err := run(t, "--config", registryConfig(t, srv), "concepts", "--format", "json")
	require.NoError(t, err)

	var rows []struct {
		ConceptID string
		Dataflows map[string]string
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 3)
}

func TestCountriesCommand(t *testing.T) {
	srv := newServer(t)

	out, err := run(t, "--config", registryConfig(t, srv), "countries", "--select", "MICRODATA_DOMAINS=LFS")
	require.NoError(t, err)
	for _, cc := range []string{"AT", "DE", "FR"} {
		require.Contains(t, out, cc)
	}
}

func TestCodesCommand(t *testing.T) {
	srv := newServer(t)

	out, err := run(t, "--config", registryConfig(t, srv), "codes", "SEX", "--country", "DE")
	require.NoError(t, err)
	require.Contains(t, out, `SEX variable code list for "DE"`)
	require.Contains(t, out, "Male")
	require.NotContains(t, out, "Female")
}

func TestCodesCommand_UnknownConcept(t *testing.T) {
	srv := newServer(t)

	_, err := run(t, "--config", registryConfig(t, srv), "codes", "NOPE")
	require.ErrorContains(t, err, "unknown concept")
	require.Equal(t, ExitGeneralError, ExitCodeForError(err))
}

func TestDetailCommand(t *testing.T) {
	srv := newServer(t)

	out, err := run(t, "--config", registryConfig(t, srv), "detail", "SEX")
	require.NoError(t, err)
	require.Contains(t, out, "Sex of the respondent")
}

func TestCategoriesCommand(t *testing.T) {
	srv := newServer(t)

	out, err := run(t, "--config", registryConfig(t, srv), "categories", "--format", "json")
	require.NoError(t, err)

	var forms []category.Form
	require.NoError(t, json.Unmarshal([]byte(out), &forms))

	values := map[string][]string{}
	for _, f := range forms {
		for _, o := range f.Options {
			values[f.SchemeID] = append(values[f.SchemeID], o.Value)
		}
	}
	require.Contains(t, values[testutil.SchemeDomains], "HBS")
	require.NotContains(t, values[testutil.SchemeDomains], "LFS", "excluded by default")
}

func TestDurableCache_ServesLaterRunsAndClears(t *testing.T) {
	srv := newServer(t)
	path := registryConfig(t, srv)

	_, err := run(t, "--config", path, "concepts")
	require.NoError(t, err)
	hits := srv.TotalHits()
	require.Positive(t, hits)

	_, err = run(t, "--config", path, "concepts")
	require.NoError(t, err)
	require.Equal(t, hits, srv.TotalHits(), "second run is served from the sqlite cache")

	out, err := run(t, "--config", path, "cache", "clear")
	require.NoError(t, err)
	require.Contains(t, out, "Removed")
	require.NotContains(t, out, "Removed 0 ")

	_, err = run(t, "--config", path, "concepts")
	require.NoError(t, err)
	require.Greater(t, srv.TotalHits(), hits)
}

func TestPurge_RefetchesCachedResponses(t *testing.T) {
	srv := newServer(t)
	path := registryConfig(t, srv)

	_, err := run(t, "--config", path, "concepts")
	require.NoError(t, err)
	hits := srv.TotalHits()

	_, err = run(t, "--config", path, "--purge", "concepts")
	require.NoError(t, err)
	require.Greater(t, srv.TotalHits(), hits)
}

func TestInvalidConfig_ExitCode(t *testing.T) {
	path := writeConfig(t, "fetch:\n  concurrency: -1\n")

	_, err := run(t, "--config", path, "concepts")
	require.Error(t, err)
	require.Equal(t, ExitConfigError, ExitCodeForError(err))
}

func TestRegistryFailure(t *testing.T) {
	srv := newServer(t)
	srv.FailWith("all", 502)

	_, err := run(t, "--config", registryConfig(t, srv), "concepts")
	require.ErrorIs(t, err, registry.ErrUnexpectedStatus)
}
