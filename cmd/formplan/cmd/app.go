package cmd

import (
	"encoding/json"
	"io"
	"os"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	mdwerror "github.com/msto63/formplan/foundation/core/error"
	"github.com/msto63/formplan/foundation/core/i18n"
	mdwlog "github.com/msto63/formplan/foundation/core/log"
	"github.com/msto63/formplan/foundation/core/validation"
	"github.com/msto63/formplan/foundation/utils/validationx"
	"github.com/msto63/formplan/internal/forms"
	"github.com/msto63/formplan/internal/planfile"
	"github.com/msto63/formplan/internal/uniqueness"
	"github.com/msto63/formplan/pkg/core/cache"
	"github.com/msto63/formplan/pkg/core/config"
	"github.com/msto63/formplan/pkg/core/logging"
)

var (
	colorRed    = color.New(color.FgRed, color.Bold)
	colorGreen  = color.New(color.FgGreen)
	colorYellow = color.New(color.FgYellow)
	colorBold   = color.New(color.Bold)
)

// app is the wiring shared by the subcommands
type app struct {
	cfg      *config.Config
	logger   *mdwlog.Logger
	messages *i18n.Manager
}

func newApp(opts *globalOptions) (*app, error) {
	cfg, err := config.Resolve(opts.cfgFile)
	if err != nil {
		return nil, err
	}

	messages := i18n.Default()
	if cfg.General.LocalesDir != "" || cfg.General.Locale != "en" {
		messages, err = i18n.New(i18n.Options{
			DefaultLocale: cfg.General.Locale,
			LocalesDir:    cfg.General.LocalesDir,
		})
		if err != nil {
			return nil, err
		}
	}

	logger, err := logging.FromConfig(cfg, opts.verbose)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		messages: messages,
	}, nil
}

// openStore opens the configured SQLite uniqueness store
func (a *app) openStore() (*uniqueness.SQLiteStore, error) {
	return uniqueness.OpenSQLite(uniqueness.SQLiteConfig{
		Path:        a.cfg.Store.Path,
		BusyTimeout: a.cfg.Store.BusyTimeout.Duration,
	})
}

// openLookup opens the configured store for validateUnique, behind the
// lookup cache when store.cache_ttl is set. cached is nil without a cache.
func (a *app) openLookup() (store *uniqueness.SQLiteStore, lookup uniqueness.Store, cached *uniqueness.Cached, err error) {
	store, err = a.openStore()
	if err != nil {
		return nil, nil, nil, err
	}
	lookup = store
	if ttl := a.cfg.Store.CacheTTL.Duration; ttl > 0 {
		cached = uniqueness.NewCached(store, cache.Config{MaxItems: a.cfg.Store.CacheSize, TTL: ttl})
		lookup = cached
	}
	return store, lookup, cached, nil
}

// registry builds the frozen capability registry. A nil store leaves
// validateUnique backed by an empty in-memory store.
func (a *app) registry(store uniqueness.Store) (*validation.Registry, error) {
	if store == nil {
		store = uniqueness.NewMemory(nil)
	}

	r := validation.NewRegistry(a.logger)
	if err := validationx.Register(r, a.messages); err != nil {
		return nil, err
	}
	if err := uniqueness.Register(r, store, a.messages); err != nil {
		return nil, err
	}
	r.Freeze()
	return r, nil
}

// forms returns the catalog forms, if the catalog file exists, ahead of
// the built-in forms
func (a *app) forms() (forms.Set, *planfile.Source, error) {
	if _, err := os.Stat(a.cfg.Plans.Path); os.IsNotExist(err) {
		a.logger.Debug("no plan catalog, using built-in forms", mdwlog.Fields{"path": a.cfg.Plans.Path})
		return forms.Standard(), nil, nil
	}

	source, err := planfile.Open(a.cfg.Plans.Path, a.logger)
	if err != nil {
		return nil, nil, err
	}
	return forms.Union(source, forms.Standard()), source, nil
}

// readObject reads a JSON or YAML object from path, "-" meaning stdin
func readObject(path string) (map[string]any, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, mdwerror.Wrap(err, "read input").
			WithCode(mdwerror.CodeInvalidInput).
			WithDetail("path", path)
	}

	var obj map[string]any
	if jsonErr := json.Unmarshal(data, &obj); jsonErr != nil {
		// YAML is a superset of JSON; try it for hand-written ref files
		if yamlErr := yaml.Unmarshal(data, &obj); yamlErr != nil {
			return nil, mdwerror.Wrap(jsonErr, "parse input").
				WithCode(mdwerror.CodeInvalidInput).
				WithDetail("path", path)
		}
	}
	if obj == nil {
		obj = map[string]any{}
	}
	return obj, nil
}
