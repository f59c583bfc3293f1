package config

import (
	"context"
	_ "embed"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"

	"github.com/jmgilman/gitfarm/errors"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "GITFARM_"

//go:embed schema.cue
var schemaSource []byte

// Loader reads Settings from a file, the environment and overrides.
type Loader struct {
	fs       billy.Filesystem
	lookuper envconfig.Lookuper
	cueCtx   *cue.Context
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFilesystem sets the filesystem config files are read from. Defaults
// to the OS filesystem rooted at /.
func WithFilesystem(fs billy.Filesystem) LoaderOption {
	return func(l *Loader) {
		l.fs = fs
	}
}

// WithLookuper sets where environment variables come from. Tests pass
// envconfig.MapLookuper.
func WithLookuper(lookuper envconfig.Lookuper) LoaderOption {
	return func(l *Loader) {
		l.lookuper = lookuper
	}
}

// NewLoader returns a Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		fs:       osfs.New("/"),
		lookuper: envconfig.OsLookuper(),
		cueCtx:   cuecontext.New(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// envOverrides mirrors Settings with pointer fields so unset variables are
// distinguishable from zero values.
type envOverrides struct {
	SharedRoot       *string `env:"SHARED_ROOT, noinit"`
	WorkingRoot      *string `env:"WORKING_ROOT, noinit"`
	GitBinary        *string `env:"GIT_BINARY, noinit"`
	CommandTimeout   *string `env:"COMMAND_TIMEOUT, noinit"`
	LockRepositories *bool   `env:"LOCK_REPOSITORIES, noinit"`
	NativeResolve    *bool   `env:"NATIVE_RESOLVE, noinit"`
	Ledger           *bool   `env:"LEDGER, noinit"`
	LogLevel         *string `env:"LOG_LEVEL, noinit"`
}

func (o envOverrides) apply(data map[string]any) {
	set := func(key string, v any) {
		data[key] = v
	}
	if o.SharedRoot != nil {
		set("sharedRoot", *o.SharedRoot)
	}
	if o.WorkingRoot != nil {
		set("workingRoot", *o.WorkingRoot)
	}
	if o.GitBinary != nil {
		set("gitBinary", *o.GitBinary)
	}
	if o.CommandTimeout != nil {
		set("commandTimeout", *o.CommandTimeout)
	}
	if o.LockRepositories != nil {
		set("lockRepositories", *o.LockRepositories)
	}
	if o.NativeResolve != nil {
		set("nativeResolve", *o.NativeResolve)
	}
	if o.Ledger != nil {
		set("ledger", *o.Ledger)
	}
	if o.LogLevel != nil {
		set("logLevel", *o.LogLevel)
	}
}

// Load builds Settings from path (may be empty), the environment and
// overrides keyed by schema field name. Nil override values are ignored.
func (l *Loader) Load(ctx context.Context, path string, overrides map[string]any) (Settings, error) {
	if err := ctx.Err(); err != nil {
		return Settings{}, errors.Wrap(err, errors.CodeInvalidConfig, "context cancelled")
	}

	data := map[string]any{}
	if path != "" {
		fileData, err := l.readFile(path)
		if err != nil {
			return Settings{}, err
		}
		data = fileData
	}

	var env envOverrides
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &env,
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, l.lookuper),
	}); err != nil {
		return Settings{}, errors.Wrap(err, errors.CodeInvalidConfig, "failed to read environment")
	}
	env.apply(data)

	for key, v := range overrides {
		if v != nil {
			data[key] = v
		}
	}

	return l.decode(data, path)
}

// readFile parses a config file into a plain map.
func (l *Loader) readFile(path string) (map[string]any, error) {
	raw, err := util.ReadFile(l.fs, path)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig, "failed to read config file",
			map[string]any{"path": path})
	}

	data := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		val := l.cueCtx.CompileBytes(raw, cue.Filename(path))
		if err := val.Err(); err != nil {
			return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig, "failed to compile config file",
				map[string]any{"path": path})
		}
		if err := val.Decode(&data); err != nil {
			return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig, "config file is not concrete",
				map[string]any{"path": path})
		}
	case ".yaml", ".yml", ".json":
		if err := yaml.Unmarshal(raw, &data); err != nil {
			return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig, "failed to parse config file",
				map[string]any{"path": path})
		}
		if data == nil {
			data = map[string]any{}
		}
	default:
		return nil, errors.WithContext(errors.New(errors.CodeInvalidConfig, "unsupported config file extension"),
			"path", path)
	}
	return data, nil
}

// decode unifies data with #Settings and decodes the concrete result.
func (l *Loader) decode(data map[string]any, path string) (Settings, error) {
	errCtx := map[string]any{}
	if path != "" {
		errCtx["path"] = path
	}

	schema := l.cueCtx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Settings{}, errors.Wrap(err, errors.CodeInternal, "invalid embedded schema")
	}
	def := schema.LookupPath(cue.ParsePath("#Settings"))

	val := def.Unify(l.cueCtx.Encode(data))
	if err := val.Validate(cue.Concrete(true)); err != nil {
		return Settings{}, errors.WrapWithContext(err, errors.CodeInvalidConfig, "settings do not match schema", errCtx)
	}

	var s Settings
	if err := val.Decode(&s); err != nil {
		return Settings{}, errors.WrapWithContext(err, errors.CodeInvalidConfig, "failed to decode settings", errCtx)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, errors.WithContextMap(err, errCtx)
	}
	return s, nil
}
