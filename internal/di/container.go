package di

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-localize/internal/cache"
	translationscmd "github.com/goliatone/go-localize/internal/commands/translations"
	"github.com/goliatone/go-localize/internal/glossary"
	"github.com/goliatone/go-localize/internal/locales"
	"github.com/goliatone/go-localize/internal/logging"
	"github.com/goliatone/go-localize/internal/logging/gologger"
	"github.com/goliatone/go-localize/internal/manager"
	"github.com/goliatone/go-localize/internal/messages"
	"github.com/goliatone/go-localize/internal/queue"
	"github.com/goliatone/go-localize/internal/resolver"
	"github.com/goliatone/go-localize/internal/runtimeconfig"
	"github.com/goliatone/go-localize/internal/storage"
	"github.com/goliatone/go-localize/internal/translationconfig"
	"github.com/goliatone/go-localize/internal/units"
	"github.com/goliatone/go-localize/pkg/interfaces"
)

// Container wires module dependencies. Repositories are in memory unless a
// bun database is supplied or configured.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	cacheProvider  interfaces.CacheProvider
	redisClient    redis.UniversalClient
	commandReg     translationscmd.CommandRegistry

	bunDB         *bun.DB
	ownsDB        bool
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	localeRepo   locales.LocaleRepository
	unitRepo     units.UnitRepository
	messageRepo  messages.MessageRepository
	queueRepo    queue.QueueRepository
	glossaryRepo glossary.GlossaryRepository
	settingsRepo translationconfig.Repository

	layer           *cache.Layer
	graph           *locales.Graph
	units           *units.Store
	resolver        *resolver.Resolver
	catalog         *messages.Catalog
	messageResolver *messages.Resolver
	importer        *messages.Importer
	queue           *queue.Queue
	glossary        *glossary.Glossary
	settings        *translationconfig.State
	manager         *manager.Manager
	commands        *translationscmd.HandlerSet

	stopOnce sync.Once
	stop     context.CancelFunc
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB persists every repository through db.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithRepositoryCache adds the go-repository-cache read-through decorator to
// bun repositories.
func WithRepositoryCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithCacheProvider overrides the resolution cache backend.
func WithCacheProvider(provider interfaces.CacheProvider) Option {
	return func(c *Container) {
		c.cacheProvider = provider
	}
}

// WithRedisClient backs the resolution cache with an existing redis client.
func WithRedisClient(client redis.UniversalClient) Option {
	return func(c *Container) {
		c.redisClient = client
	}
}

// WithLoggerProvider overrides the configured logger provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithSettingsRepository overrides where translation settings are persisted.
func WithSettingsRepository(repo translationconfig.Repository) Option {
	return func(c *Container) {
		c.settingsRepo = repo
	}
}

// WithCommandRegistry registers the translation command handlers with reg.
func WithCommandRegistry(reg translationscmd.CommandRegistry) Option {
	return func(c *Container) {
		c.commandReg = reg
	}
}

// NewContainer validates cfg and assembles the services.
func NewContainer(ctx context.Context, cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	if err := c.configureStorage(ctx); err != nil {
		return nil, err
	}
	c.configureRepositoryCache()
	c.configureRepositories()
	c.configureCache()
	if err := c.configureServices(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil {
		return nil
	}
	if strings.EqualFold(strings.TrimSpace(c.Config.Logging.Provider), "noop") {
		return nil
	}
	provider, err := gologger.NewProvider(gologger.Config{
		Level:     c.Config.Logging.Level,
		Format:    c.Config.Logging.Format,
		AddSource: c.Config.Logging.AddSource,
		Focus:     c.Config.Logging.Focus,
	})
	if err != nil {
		return err
	}
	c.loggerProvider = provider
	return nil
}

func (c *Container) configureStorage(ctx context.Context) error {
	if c.bunDB == nil && c.Config.Storage.Enabled() {
		db, err := storage.Open(ctx, c.Config.Storage.Config, logging.ModuleLogger(c.loggerProvider, "localize.storage"))
		if err != nil {
			return err
		}
		c.bunDB = db
		c.ownsDB = true
	}
	if c.bunDB != nil && c.Config.Storage.Migrate {
		if err := storage.Migrate(ctx, c.bunDB); err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) configureRepositoryCache() {
	if c.bunDB == nil || c.cacheService == nil {
		return
	}
	if c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	if c.bunDB != nil {
		c.localeRepo = locales.NewBunLocaleRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.unitRepo = units.NewBunUnitRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.messageRepo = messages.NewBunMessageRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.glossaryRepo = glossary.NewBunGlossaryRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.queueRepo = queue.NewBunQueueRepository(c.bunDB)
		if c.settingsRepo == nil {
			c.settingsRepo = translationconfig.NewBunRepository(c.bunDB)
		}
		return
	}
	c.localeRepo = locales.NewMemoryRepository()
	c.unitRepo = units.NewMemoryRepository()
	c.messageRepo = messages.NewMemoryRepository()
	c.glossaryRepo = glossary.NewMemoryRepository()
	c.queueRepo = queue.NewMemoryRepository()
	if c.settingsRepo == nil {
		c.settingsRepo = translationconfig.NewMemoryRepository()
	}
}

func (c *Container) configureCache() {
	cfg := c.Config.Cache
	provider := c.cacheProvider
	if provider == nil {
		switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
		case runtimeconfig.CacheProviderNone:
			provider = cache.NoopProvider{}
		case runtimeconfig.CacheProviderRedis:
			client := c.redisClient
			if client == nil {
				client = redis.NewClient(&redis.Options{
					Addr:     cfg.RedisAddr,
					Password: cfg.RedisPassword,
					DB:       cfg.RedisDB,
				})
				c.redisClient = client
			}
			var redisOpts []cache.RedisOption
			if ns := strings.TrimSpace(cfg.RedisNamespace); ns != "" {
				redisOpts = append(redisOpts, cache.WithNamespace(ns))
			}
			provider = cache.NewRedisProvider(client, redisOpts...)
		default:
			provider = cache.NewMemoryProvider(cache.MemoryConfig{Capacity: cfg.Capacity})
		}
		c.cacheProvider = provider
	}
	c.layer = cache.NewLayer(provider,
		cache.WithLogger(logging.CacheLogger(c.loggerProvider)),
		cache.WithDefaultTTL(cfg.DefaultTTL),
	)
}

func (c *Container) configureServices() error {
	provider := c.loggerProvider
	ttl := c.Config.Cache.ResolveTTL

	c.graph = locales.NewGraph(c.localeRepo,
		locales.WithCache(c.layer),
		locales.WithLogger(logging.LocalesLogger(provider)),
	)
	c.units = units.NewStore(c.unitRepo, units.WithLogger(logging.UnitsLogger(provider)))
	c.resolver = resolver.New(c.graph, c.units,
		resolver.WithCache(c.layer),
		resolver.WithLogger(logging.ResolverLogger(provider)),
		resolver.WithTTL(ttl),
	)
	c.catalog = messages.NewCatalog(c.messageRepo, c.graph,
		messages.WithCache(c.layer),
		messages.WithLogger(logging.MessagesLogger(provider)),
	)
	c.messageResolver = messages.NewResolver(c.catalog, messages.WithTTL(ttl))
	c.importer = messages.NewImporter(c.catalog, c.graph)
	c.queue = queue.New(c.queueRepo, queue.WithLogger(logging.ModuleLogger(provider, "localize.queue")))
	c.glossary = glossary.New(c.glossaryRepo, glossary.WithLogger(logging.ModuleLogger(provider, "localize.glossary")))
	c.settings = translationconfig.NewState(c.Config.Translations)

	c.units.OnChange(c.resolver.HandleUnitChange)
	c.graph.OnChange(c.resolver.HandleLocaleChange)
	c.graph.OnChange(c.catalog.HandleLocaleChange)

	c.manager = manager.New(manager.Dependencies{
		Graph:    c.graph,
		Units:    c.units,
		Resolver: c.resolver,
		Catalog:  c.catalog,
		Messages: c.messageResolver,
		Queue:    c.queue,
		Glossary: c.glossary,
		Settings: c.settings,
	}, manager.WithLogger(logging.ManagerLogger(provider)))

	set, err := translationscmd.RegisterTranslationCommands(c.commandReg, c.manager, c.importer, provider)
	if err != nil {
		return err
	}
	c.commands = set
	return nil
}

// Bootstrap seeds configured locales, persisted settings and message
// sources, then keeps the settings state in sync until Close.
func (c *Container) Bootstrap(ctx context.Context) error {
	if err := c.seedLocales(ctx); err != nil {
		return err
	}
	if err := c.seedSettings(ctx); err != nil {
		return err
	}

	syncCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	if err := translationconfig.Sync(syncCtx, c.settingsRepo, c.settings, logging.ModuleLogger(c.loggerProvider, "localize.translationconfig")); err != nil {
		cancel()
		return err
	}
	c.stop = cancel

	if path := strings.TrimSpace(c.Config.Messages.FixturePath); path != "" {
		fx, err := messages.NewFixtureLoader(path).Load(ctx)
		if err != nil {
			return err
		}
		if _, err := messages.Seed(ctx, c.graph, c.catalog, fx); err != nil {
			return err
		}
	}
	for _, path := range c.Config.Messages.Files {
		if _, err := c.importer.ImportFile(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) seedLocales(ctx context.Context) error {
	pending := append([]runtimeconfig.LocaleConfig(nil), c.Config.Locales...)
	added := make(map[string]bool, len(pending))
	def := strings.ToLower(strings.TrimSpace(c.Config.DefaultLocale))

	for len(pending) > 0 {
		progressed := false
		rest := pending[:0]
		for _, loc := range pending {
			fallback := strings.ToLower(strings.TrimSpace(loc.Fallback))
			if fallback != "" && !added[fallback] {
				rest = append(rest, loc)
				continue
			}
			code := strings.ToLower(strings.TrimSpace(loc.Code))
			if _, err := c.graph.AddOrUpdate(ctx, locales.LocaleInput{
				Code:       loc.Code,
				Name:       loc.Name,
				NativeName: loc.NativeName,
				IsDefault:  code == def,
				IsActive:   loc.Active,
				RTL:        loc.RTL,
				SortOrder:  loc.SortOrder,
				Fallback:   loc.Fallback,
			}); err != nil {
				return fmt.Errorf("seed locale %s: %w", loc.Code, err)
			}
			added[code] = true
			progressed = true
		}
		if !progressed {
			return fmt.Errorf("seed locales: fallback cycle among %d locales", len(rest))
		}
		pending = rest
	}
	return nil
}

func (c *Container) seedSettings(ctx context.Context) error {
	_, err := c.settingsRepo.Get(ctx)
	if errors.Is(err, translationconfig.ErrSettingsNotFound) {
		_, err = c.settingsRepo.Upsert(ctx, c.Config.Translations)
	}
	return err
}

// Close stops background work and releases connections the container opened.
func (c *Container) Close() error {
	var err error
	c.stopOnce.Do(func() {
		if c.stop != nil {
			c.stop()
		}
		if c.ownsDB && c.bunDB != nil {
			err = c.bunDB.Close()
		}
	})
	return err
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// CacheLayer returns the guarded resolution cache.
func (c *Container) CacheLayer() *cache.Layer {
	return c.layer
}

// DB returns the bun database, nil when running in memory.
func (c *Container) DB() *bun.DB {
	return c.bunDB
}

func (c *Container) Locales() *locales.Graph {
	return c.graph
}

func (c *Container) Units() *units.Store {
	return c.units
}

func (c *Container) Resolver() *resolver.Resolver {
	return c.resolver
}

func (c *Container) Catalog() *messages.Catalog {
	return c.catalog
}

func (c *Container) Messages() *messages.Resolver {
	return c.messageResolver
}

func (c *Container) Importer() *messages.Importer {
	return c.importer
}

func (c *Container) Queue() *queue.Queue {
	return c.queue
}

func (c *Container) Glossary() *glossary.Glossary {
	return c.glossary
}

func (c *Container) Settings() *translationconfig.State {
	return c.settings
}

// SettingsRepository returns where translation settings are persisted.
func (c *Container) SettingsRepository() translationconfig.Repository {
	return c.settingsRepo
}

func (c *Container) Manager() *manager.Manager {
	return c.manager
}

// Commands returns the translation command handlers.
func (c *Container) Commands() *translationscmd.HandlerSet {
	return c.commands
}
