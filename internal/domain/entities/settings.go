package entities

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

const (
	defaultSnapshotDir    = "src/3rdparty"
	defaultUpstreamDir    = "src/3rdparty_upstream"
	defaultPatchesDir     = "patches"
	defaultPrimaryName    = "chromium"
	defaultUpstreamURL    = "https://chromium.googlesource.com/chromium/src.git"
	defaultManifestFile   = ".DEPS.git"
	defaultRootPrefix     = "src"
	defaultBaselineMarker = "-- QtWebEngine baseline --"
	tagsRef               = "refs/tags/"
)

// Settings is the top-level configuration for upstreamsync.
type Settings struct {
	Version   string           `yaml:"version"` // Targeted upstream version, e.g. "87.0.4280.144"
	Layout    LayoutSettings   `yaml:"layout"`
	Upstream  UpstreamSettings `yaml:"upstream"`
	Tools     []ToolSettings   `yaml:"tools"`
	Manifest  ManifestSettings `yaml:"manifest"`
	Platforms PlatformSettings `yaml:"platforms"`
	Snapshot  SnapshotSettings `yaml:"snapshot"`
	Repack    RepackSettings   `yaml:"repack"`
}

// LayoutSettings places the working trees relative to the repository root.
type LayoutSettings struct {
	Root        string `yaml:"root"`
	SnapshotDir string `yaml:"snapshot_dir"`
	UpstreamDir string `yaml:"upstream_dir"`
	PatchesDir  string `yaml:"patches_dir"` // Relative to the upstream dir
}

// UpstreamSettings describes the primary tracked codebase.
type UpstreamSettings struct {
	Name           string `yaml:"name"` // Directory under the upstream dir and primary owner tag
	URL            string `yaml:"url"`
	Ref            string `yaml:"ref"` // Defaults to refs/tags/<version>
	BaselineMarker string `yaml:"baseline_marker"`
}

// ToolSettings describes a build tool checked out next to the primary codebase.
type ToolSettings struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Version string `yaml:"version"` // Semver release tag, checked out as refs/tags/<version>
	Ref     string `yaml:"ref"`     // Used when no version is given
}

// ManifestSettings controls parsing and reconciliation of dependency manifests.
type ManifestSettings struct {
	File             string       `yaml:"file"`
	MirrorFile       string       `yaml:"mirror_file"`
	RootPrefix       string       `yaml:"root_prefix"`
	KeepPrefixes     []string     `yaml:"keep_prefixes"`
	DefaultBranch    string       `yaml:"default_branch"`
	LaggingPlatforms []string     `yaml:"lagging_platforms"`
	Deny             []string     `yaml:"deny"`
	URLRewrites      []URLRewrite `yaml:"url_rewrites"`
	VerifyRemoteRefs bool         `yaml:"verify_remote_refs"`
}

// URLRewrite replaces a known-stale URL fragment.
type URLRewrite struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// PlatformSettings overrides host detection and grants extra platform tags.
type PlatformSettings struct {
	Host  string   `yaml:"host"`
	Extra []string `yaml:"extra"`
}

// SnapshotSettings lists the upstream trees exported into the snapshot.
type SnapshotSettings struct {
	Sources []SnapshotSource `yaml:"sources"`
}

// SnapshotSource is one exported tree, filtered with gitignore-style rules.
type SnapshotSource struct {
	Name    string   `yaml:"name"`    // Directory under both the upstream and snapshot dirs
	Exclude []string `yaml:"exclude"` // gitignore patterns, "!" re-includes
	Extras  []string `yaml:"extras"`  // Untracked files exported as well
}

// RepackSettings configures the external resource compiler.
type RepackSettings struct {
	Tool []string `yaml:"tool"` // Command line, called with the output pack and its inputs
}

// DefaultSnapshotExcludes drops VCS metadata from every exported tree.
var DefaultSnapshotExcludes = []string{ //nolint:gochecknoglobals // read-only defaults
	".gitignore",
	".gitmodules",
	".DEPS*",
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// NewSettings reads and parses a configuration file, expanding environment
// variables and filling in defaults.
func NewSettings(configPath string) (*Settings, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", configPath, err)
	}

	settings := &Settings{}
	if unmarshalErr := yaml.Unmarshal([]byte(expandEnv(string(data))), settings); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}
	settings.applyDefaults()

	if validateErr := validate(settings); validateErr != nil {
		return nil, validateErr
	}
	return settings, nil
}

// DefaultSettings returns the settings used when no config file exists.
func DefaultSettings() *Settings {
	settings := &Settings{}
	settings.applyDefaults()
	return settings
}

// configFileNames are the names looked up in every candidate directory.
var configFileNames = []string{"upstreamsync.yaml", ".upstreamsync.yaml"}

// LoadSettings loads the given file or, when configPath is empty, the first
// config found from the working directory up to the enclosing checkout root and
// then in the user config dir ("upstreamsync/config.yaml"). Without any file the
// defaults are used.
func LoadSettings(configPath string) (*Settings, error) {
	if configPath == "" {
		workDir, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to read the working directory: %w", err)
		}
		found, ok := discoverConfig(workDir)
		if !ok {
			logger.Debugf("No config file found from %s, using defaults", workDir)
			return DefaultSettings(), nil
		}
		configPath = found
	}
	logger.Infof("Using config file: %s", configPath)
	return NewSettings(configPath)
}

func discoverConfig(workDir string) (string, bool) {
	for _, candidate := range configCandidates(workDir) {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// configCandidates walks from dir to the first parent holding a ".git" entry
// (a directory or a worktree file) or to the filesystem root.
func configCandidates(dir string) []string {
	var candidates []string
	for current := filepath.Clean(dir); ; {
		for _, name := range configFileNames {
			candidates = append(candidates, filepath.Join(current, name))
		}
		if _, err := os.Stat(filepath.Join(current, ".git")); err == nil {
			break
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	if userDir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(userDir, "upstreamsync", "config.yaml"))
	}
	return candidates
}

func expandEnv(raw string) string {
	return envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})
}

func (s *Settings) applyDefaults() {
	if s.Layout.Root == "" {
		s.Layout.Root = "."
	}
	if s.Layout.SnapshotDir == "" {
		s.Layout.SnapshotDir = defaultSnapshotDir
	}
	if s.Layout.UpstreamDir == "" {
		s.Layout.UpstreamDir = defaultUpstreamDir
	}
	if s.Layout.PatchesDir == "" {
		s.Layout.PatchesDir = defaultPatchesDir
	}
	if s.Upstream.Name == "" {
		s.Upstream.Name = defaultPrimaryName
	}
	if s.Upstream.URL == "" {
		s.Upstream.URL = defaultUpstreamURL
	}
	if s.Upstream.BaselineMarker == "" {
		s.Upstream.BaselineMarker = defaultBaselineMarker
	}
	if s.Manifest.File == "" {
		s.Manifest.File = defaultManifestFile
	}
	if s.Manifest.RootPrefix == "" {
		s.Manifest.RootPrefix = defaultRootPrefix
	}
	if s.Manifest.DefaultBranch == "" {
		s.Manifest.DefaultBranch = DefaultBranchName
	}
}

// validate checks for required configuration values.
func validate(settings *Settings) error {
	if err := settings.RequireVersion(); err != nil {
		return err
	}

	for i, tool := range settings.Tools {
		if tool.Name == "" || tool.URL == "" {
			return fmt.Errorf("tools[%d] requires both name and url", i)
		}
		if tool.Version != "" && !semver.IsValid(tool.Version) {
			return fmt.Errorf("tools[%d].version %q is not a valid semantic version tag", i, tool.Version)
		}
		if tool.Version == "" && tool.Ref == "" {
			return fmt.Errorf("tools[%d] requires a version or a ref", i)
		}
	}

	for i, rule := range settings.Manifest.URLRewrites {
		if rule.From == "" {
			return fmt.Errorf("manifest.url_rewrites[%d].from is required", i)
		}
	}

	for i, source := range settings.Snapshot.Sources {
		if source.Name == "" {
			return fmt.Errorf("snapshot.sources[%d].name is required", i)
		}
	}

	return nil
}

// RequireVersion fails when no upstream version is configured.
func (s *Settings) RequireVersion() error {
	if s.Version == "" {
		return errors.New("version is required (set it in upstreamsync.yaml)")
	}
	return nil
}

// UpstreamRef returns the ref the primary codebase is checked out at.
func (s *Settings) UpstreamRef() string {
	if s.Upstream.Ref != "" {
		return s.Upstream.Ref
	}
	return tagsRef + s.Version
}

// SnapshotPath returns the snapshot working tree on disk.
func (s *Settings) SnapshotPath() string {
	return filepath.Join(s.Layout.Root, filepath.FromSlash(s.Layout.SnapshotDir))
}

// UpstreamPath returns the upstream working tree root on disk.
func (s *Settings) UpstreamPath() string {
	return filepath.Join(s.Layout.Root, filepath.FromSlash(s.Layout.UpstreamDir))
}

// PrimaryPath returns the working copy of the primary codebase.
func (s *Settings) PrimaryPath() string {
	return filepath.Join(s.UpstreamPath(), s.Upstream.Name)
}

// PatchesPath returns the directory receiving the generated patch series.
func (s *Settings) PatchesPath() string {
	return filepath.Join(s.UpstreamPath(), filepath.FromSlash(s.Layout.PatchesDir))
}

// ManifestOptions returns the path normalization options for manifests.
func (s *Settings) ManifestOptions() ManifestOptions {
	return ManifestOptions{
		RootPrefix:    s.Manifest.RootPrefix,
		KeepPrefixes:  s.Manifest.KeepPrefixes,
		DefaultBranch: s.Manifest.DefaultBranch,
	}
}

// ReconcilePolicy returns the duplicate and deny rules for resolution.
func (s *Settings) ReconcilePolicy() ReconcilePolicy {
	return ReconcilePolicy{
		LaggingPlatforms: s.Manifest.LaggingPlatforms,
		Deny:             s.Manifest.Deny,
	}
}

// PlatformMatcher returns the matcher for the configured or detected host.
func (s *Settings) PlatformMatcher() PlatformMatcher {
	return NewPlatformMatcher(s.Platforms.Host, s.Platforms.Extra)
}

// ToolRecords returns the build tools as records under the upstream dir,
// relative to the repository root.
func (s *Settings) ToolRecords() []DependencyRecord {
	records := make([]DependencyRecord, 0, len(s.Tools))
	for _, tool := range s.Tools {
		ref := tool.Ref
		if tool.Version != "" {
			// the tag is used exactly as published, "v1.8" is not "v1.8.0"
			ref = tagsRef + tool.Version
		}
		records = append(records, DependencyRecord{
			Path:         path.Join(s.Layout.UpstreamDir, tool.Name),
			URL:          tool.URL,
			Ref:          ref,
			FromManifest: true,
		})
	}
	return records
}

// PrimaryRecord returns the primary codebase as a record relative to the
// repository root.
func (s *Settings) PrimaryRecord() DependencyRecord {
	return DependencyRecord{
		Path:         path.Join(s.Layout.UpstreamDir, s.Upstream.Name),
		URL:          s.Upstream.URL,
		Ref:          s.UpstreamRef(),
		FromManifest: true,
	}
}

// SnapshotSources returns the configured export sources, or every tool plus
// the primary codebase when none are configured.
func (s *Settings) SnapshotSources() []SnapshotSource {
	if len(s.Snapshot.Sources) > 0 {
		return s.Snapshot.Sources
	}
	sources := make([]SnapshotSource, 0, len(s.Tools)+1)
	for _, tool := range s.Tools {
		sources = append(sources, SnapshotSource{Name: tool.Name, Exclude: DefaultSnapshotExcludes})
	}
	return append(sources, SnapshotSource{
		Name:    s.Upstream.Name,
		Exclude: DefaultSnapshotExcludes,
		Extras:  []string{"build/util/LASTCHANGE"},
	})
}

// RepackTool returns the resource compiler command line.
func (s *Settings) RepackTool() []string {
	if len(s.Repack.Tool) > 0 {
		return s.Repack.Tool
	}
	return []string{"python3", filepath.Join(s.PrimaryPath(), "tools", "grit", "pak_util.py"), "repack"}
}
