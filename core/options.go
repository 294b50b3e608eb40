package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
)

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type ServiceBuilder struct {
	RuntimeConfig   Config
	Logger          Logger
	LoggerProvider  LoggerProvider
	ErrorMapper     ErrorMapper
	HTTPClient      HTTPDoer
	FleetAPI        FleetAPI
	Renderer        DocumentRenderer
	Resolver        VehicleResolver
	LinkStore       InspectionLinkStore
	ConfigProvider  ConfigProvider
	OptionsResolver OptionsResolver
}

type Option func(*ServiceBuilder)

func WithLogger(logger Logger) Option {
	return func(b *ServiceBuilder) {
		b.Logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *ServiceBuilder) {
		b.LoggerProvider = provider
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *ServiceBuilder) {
		b.ErrorMapper = mapper
	}
}

func WithHTTPClient(client HTTPDoer) Option {
	return func(b *ServiceBuilder) {
		b.HTTPClient = client
	}
}

func WithFleetAPI(api FleetAPI) Option {
	return func(b *ServiceBuilder) {
		b.FleetAPI = api
	}
}

func WithDocumentRenderer(renderer DocumentRenderer) Option {
	return func(b *ServiceBuilder) {
		b.Renderer = renderer
	}
}

func WithVehicleResolver(resolver VehicleResolver) Option {
	return func(b *ServiceBuilder) {
		b.Resolver = resolver
	}
}

func WithInspectionLinkStore(store InspectionLinkStore) Option {
	return func(b *ServiceBuilder) {
		b.LinkStore = store
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *ServiceBuilder) {
		b.ConfigProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *ServiceBuilder) {
		b.OptionsResolver = resolver
	}
}

func NewServiceBuilder(runtime Config, options ...Option) ServiceBuilder {
	loggerProvider, logger := glog.Resolve("fleetbridge", nil, nil)
	builder := ServiceBuilder{
		RuntimeConfig:   runtime,
		LoggerProvider:  loggerProvider,
		Logger:          logger,
		ErrorMapper:     DefaultErrorMapper,
		ConfigProvider:  NewCfgxConfigProvider(nil),
		OptionsResolver: GoOptionsResolver{},
	}
	for _, option := range options {
		if option != nil {
			option(&builder)
		}
	}
	return builder
}

// ResolveConfig merges defaults, the loaded config layer, and the runtime
// overrides into the effective configuration.
func (b ServiceBuilder) ResolveConfig(ctx context.Context) (Config, error) {
	defaults := DefaultConfig()
	loaded := defaults
	if b.ConfigProvider != nil {
		var err error
		loaded, err = b.ConfigProvider.Load(ctx, defaults)
		if err != nil {
			return Config{}, err
		}
	}
	resolver := b.OptionsResolver
	if resolver == nil {
		resolver = GoOptionsResolver{}
	}
	return resolver.Resolve(defaults, loaded, b.RuntimeConfig)
}

func DefaultErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	return serviceErrorMapper(err)
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}

	api := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.API.Token) != "" {
		api["token"] = cfg.API.Token
	}
	if includeZero || strings.TrimSpace(cfg.API.AccountToken) != "" {
		api["account_token"] = cfg.API.AccountToken
	}
	if includeZero || strings.TrimSpace(cfg.API.BaseURL) != "" {
		api["base_url"] = cfg.API.BaseURL
	}
	if includeZero || strings.TrimSpace(cfg.API.AccountBaseURL) != "" {
		api["account_base_url"] = cfg.API.AccountBaseURL
	}
	if includeZero || strings.TrimSpace(cfg.API.UploadURL) != "" {
		api["upload_url"] = cfg.API.UploadURL
	}
	if includeZero || cfg.API.RequestTimeout > time.Duration(0) {
		api["request_timeout"] = cfg.API.RequestTimeout
	}
	if includeZero || cfg.API.MaxPages > 0 {
		api["max_pages"] = cfg.API.MaxPages
	}
	if includeZero || cfg.API.PageSize > 0 {
		api["page_size"] = cfg.API.PageSize
	}
	if len(api) > 0 {
		layer["api"] = api
	}

	if includeZero || cfg.Match.MinScore > 0 {
		layer["match"] = map[string]any{
			"min_score": cfg.Match.MinScore,
		}
	}
	return layer
}
