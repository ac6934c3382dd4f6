package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	vperrors "github.com/versionplan/versionplan/internal/errors"
	"github.com/versionplan/versionplan/internal/size"
)

// DefaultPrevTagName is the name the planner gives the historical
// anchor tag when the config does not override it.
const DefaultPrevTagName = "versio-prev"

// DefaultCommitMessageTemplate is used when the config sets none.
const DefaultCommitMessageTemplate = "chore(release): {{.Summary}}"

// Config is the top-level, fully resolved configuration for one run.
type Config struct {
	PrevTagName           string
	CommitMessageTemplate string
	// ReleaseBranch, when set, is the only branch `release` may run
	// from; empty means no restriction. spec.md §7's branch-mismatch
	// error fires when the checked-out branch differs from this.
	ReleaseBranch string
	Projects      []*Project
}

// ProjectByID looks up a project by id.
func (c *Config) ProjectByID(id ProjectID) (*Project, bool) {
	for _, p := range c.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// rawConfig mirrors the on-disk YAML/JSON/TOML shape that viper decodes
// into before it is resolved into the domain Config/Project types.
type rawConfig struct {
	PrevTagName           string            `mapstructure:"prev_tag_name"`
	CommitMessageTemplate string            `mapstructure:"commit_message_template"`
	ReleaseBranch         string            `mapstructure:"release_branch"`
	SizeRules             map[string]string `mapstructure:"sizes"`
	Projects              []rawProject      `mapstructure:"projects"`
}

type rawProject struct {
	ID                 string                       `mapstructure:"id"`
	Name               string                       `mapstructure:"name"`
	Root               string                       `mapstructure:"root"`
	Covers             []string                     `mapstructure:"includes"`
	Excludes           []string                     `mapstructure:"excludes"`
	Depends            map[string]rawDependencyEdge `mapstructure:"depends"`
	SizeRules          map[string]string            `mapstructure:"sizes"`
	DefaultSize        string                       `mapstructure:"default_size"`
	TagPrefix          *string                      `mapstructure:"tag_prefix"`
	TagPrefixSeparator string                       `mapstructure:"tag_prefix_separator"`
	TagMajors          []uint64                     `mapstructure:"tag_majors"`
	Labels             []string                     `mapstructure:"labels"`
	Restrictions       []string                     `mapstructure:"restrictions"`
	ChangelogPath      string                       `mapstructure:"changelog"`
	VersionFile        string                       `mapstructure:"version_file"`
	VersionPattern     string                       `mapstructure:"version_pattern"`
	VersionJSONField   string                       `mapstructure:"version_json_field"`
}

type rawDependencyEdge struct {
	Size map[string]string `mapstructure:"size"`
}

// Loader loads and resolves a run's Config, the way the teacher's own
// viper-backed loader reads RELEASE_PILOT_* environment overrides
// layered on top of a discovered config file.
type Loader struct {
	v           *viper.Viper
	configPath  string
	searchPaths []string
}

// NewLoader constructs a Loader with the versionplan env prefix and a
// default search path of the current directory.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix("VERSIONPLAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return &Loader{v: v, searchPaths: []string{"."}}
}

// WithConfigPath sets an explicit config file path, bypassing search.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithSearchPaths adds directories to search for versionplan.yml.
func (l *Loader) WithSearchPaths(paths ...string) *Loader {
	l.searchPaths = append(l.searchPaths, paths...)
	return l
}

// Load reads, decodes, and resolves the configuration.
func (l *Loader) Load() (*Config, error) {
	const op = "config.Load"

	if l.configPath != "" {
		l.v.SetConfigFile(l.configPath)
	} else {
		l.v.SetConfigName("versionplan")
		for _, p := range l.searchPaths {
			l.v.AddConfigPath(p)
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		return nil, vperrors.ConfigParseWrap(err, op, "failed to read config file")
	}

	var raw rawConfig
	if err := l.v.Unmarshal(&raw); err != nil {
		return nil, vperrors.ConfigParseWrap(err, op, "failed to decode config")
	}

	return resolve(&raw)
}

// ParseBytes decodes a config file's raw bytes directly, bypassing the
// filesystem: the YAML is parsed with yaml.v3 and then mapped onto the
// same mapstructure-tagged raw structs through a fresh viper instance,
// so it accepts exactly the keys Load does. internal/historical uses
// this to parse a config blob read from an old commit via
// blob-at-revision, where there is no file on disk for viper to discover.
func ParseBytes(data []byte) (*Config, error) {
	const op = "config.ParseBytes"

	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, vperrors.ConfigParseWrap(err, op, "failed to decode historical config")
	}
	v := viper.New()
	if err := v.MergeConfigMap(m); err != nil {
		return nil, vperrors.ConfigParseWrap(err, op, "failed to decode historical config")
	}
	var raw rawConfig
	if err := v.Unmarshal(&raw); err != nil {
		return nil, vperrors.ConfigParseWrap(err, op, "failed to decode historical config")
	}
	return resolve(&raw)
}

// resolve converts the raw decoded config into the domain shape used by
// the rest of the planner, parsing size names and building the
// dependency edge tables.
func resolve(raw *rawConfig) (*Config, error) {
	const op = "config.resolve"

	cfg := &Config{PrevTagName: raw.PrevTagName, CommitMessageTemplate: raw.CommitMessageTemplate, ReleaseBranch: raw.ReleaseBranch}
	if cfg.PrevTagName == "" {
		cfg.PrevTagName = DefaultPrevTagName
	}
	if cfg.CommitMessageTemplate == "" {
		cfg.CommitMessageTemplate = DefaultCommitMessageTemplate
	}

	globalSizes, err := parseSizeTable(raw.SizeRules)
	if err != nil {
		return nil, vperrors.ConfigParseWrap(err, op, "invalid top-level size rule")
	}

	for _, rp := range raw.Projects {
		p, err := resolveProject(rp, globalSizes)
		if err != nil {
			return nil, vperrors.ConfigParseWrap(err, op, fmt.Sprintf("project %q", rp.ID))
		}
		cfg.Projects = append(cfg.Projects, p)
	}

	return cfg, nil
}

func resolveProject(rp rawProject, globalSizes map[string]size.Size) (*Project, error) {
	p := &Project{
		ID:                 ProjectID(rp.ID),
		Name:               rp.Name,
		Root:               rp.Root,
		Covers:             rp.Covers,
		Excludes:           rp.Excludes,
		TagPrefix:          rp.TagPrefix,
		TagPrefixSeparator: rp.TagPrefixSeparator,
		TagMajors:          rp.TagMajors,
		Restrictions:       rp.Restrictions,
		DefaultSizeRule:    size.None,
	}
	if p.Name == "" {
		p.Name = p.ID.String()
	}
	if rp.ChangelogPath != "" {
		p.ChangelogPath = &rp.ChangelogPath
	}
	p.VersionSource = VersionSourceLocator{
		File:      rp.VersionFile,
		Pattern:   rp.VersionPattern,
		JSONField: rp.VersionJSONField,
	}

	if len(rp.Labels) > 0 {
		p.Labels = make(map[string]struct{}, len(rp.Labels))
		for _, l := range rp.Labels {
			p.Labels[l] = struct{}{}
		}
	}

	sizeRules, err := parseSizeTable(rp.SizeRules)
	if err != nil {
		return nil, err
	}
	if len(sizeRules) == 0 {
		sizeRules = globalSizes
	} else {
		for k, v := range globalSizes {
			if _, ok := sizeRules[k]; !ok {
				sizeRules[k] = v
			}
		}
	}
	p.SizeRules = sizeRules

	if rp.DefaultSize != "" {
		s, ok := size.Parse(rp.DefaultSize)
		if !ok {
			return nil, fmt.Errorf("unknown default_size %q", rp.DefaultSize)
		}
		p.DefaultSizeRule = s
	}

	if len(rp.Depends) > 0 {
		p.Depends = make(map[ProjectID]DependencyEdge, len(rp.Depends))
		for upstream, edge := range rp.Depends {
			mapper := make(SizeMapper, len(edge.Size))
			for from, to := range edge.Size {
				fromSize, ok := size.Parse(from)
				if !ok {
					return nil, fmt.Errorf("unknown size %q in dependency on %q", from, upstream)
				}
				toSize, ok := size.Parse(to)
				if !ok {
					return nil, fmt.Errorf("unknown size %q in dependency on %q", to, upstream)
				}
				mapper[fromSize] = toSize
			}
			p.Depends[ProjectID(upstream)] = DependencyEdge{Size: mapper}
		}
	}

	return p, nil
}

func parseSizeTable(raw map[string]string) (map[string]size.Size, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]size.Size, len(raw))
	for kind, name := range raw {
		s, ok := size.Parse(name)
		if !ok {
			return nil, fmt.Errorf("unknown size %q for kind %q", name, kind)
		}
		out[kind] = s
	}
	return out, nil
}

// String renders a ProjectID the way it appears in config and tags.
func (id ProjectID) String() string { return string(id) }
