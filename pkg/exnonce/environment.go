package exnonce

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/codingconcepts/env"
	"github.com/go-redis/redis/v8"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/c9s/exnonce/pkg/exchange"
	"github.com/c9s/exnonce/pkg/exchange/kraken/krakenapi"
	"github.com/c9s/exnonce/pkg/nonce"
	"github.com/c9s/exnonce/pkg/service"
	"github.com/c9s/exnonce/pkg/store"
	"github.com/c9s/exnonce/pkg/timesync"
	"github.com/c9s/exnonce/pkg/types"
	"github.com/c9s/exnonce/pkg/util"
	"github.com/c9s/exnonce/pkg/util/backoff"
	"github.com/c9s/exnonce/pkg/util/timejitter"
)

const defaultSyncInterval = 2 * time.Minute

const clockSyncTimeout = 30 * time.Second

// Environment owns the shared machinery behind every routed call: the
// counter store, the clock syncer, the nonce generator, the resync flags and
// the session router. One Environment serves all users of the process.
type Environment struct {
	Store     store.Store
	ClockSync *timesync.Syncer
	Resync    *nonce.ResyncController
	Generator *nonce.Generator
	Router    *exchange.Router
	Executor  *exchange.Executor

	DatabaseService   *service.DatabaseCredentialService
	CredentialService service.CredentialProvider

	exchanges    []types.ExchangeName
	syncInterval time.Duration

	redis    *redis.Client
	database *sqlx.DB
	cron     *cron.Cron

	startTime time.Time
}

func NewEnvironment() *Environment {
	return &Environment{
		Store:        store.NewMemoryStore(),
		Resync:       nonce.NewResyncController(),
		syncInterval: defaultSyncInterval,
		startTime:    time.Now(),
	}
}

// ConfigureStore connects the shared counter store. Without a redis config
// the environment runs on an in-process store, which keeps nonces monotonic
// for this instance only.
func (environ *Environment) ConfigureStore(config *store.RedisConfig) error {
	if config == nil {
		log.Warnf("no redis configured, using the in-process counter store; nonce sequences are not shared across instances")
		return nil
	}

	if err := env.Set(config); err != nil {
		return err
	}

	environ.redis = store.NewRedisClient(config)
	environ.Store = store.NewRedisStore(environ.redis, config.Namespace)
	return nil
}

// ConfigureDatabase connects the platform database that holds user
// credentials. A nil config leaves the database service unset, in which case
// credentials must come from the config file.
func (environ *Environment) ConfigureDatabase(config *DatabaseConfig) error {
	if config == nil {
		return nil
	}

	if err := env.Set(config); err != nil {
		return err
	}

	dsnConfig, err := mysql.ParseDSN(config.DSN)
	if err != nil {
		return errors.Wrap(err, "can not parse mysql dsn")
	}

	dsnConfig.ParseTime = true

	db, err := sqlx.Connect("mysql", dsnConfig.FormatDSN())
	if err != nil {
		return err
	}

	cipher, err := secretCipherFromKey(config.EncryptionKey)
	if err != nil {
		return err
	}

	if cipher == nil {
		log.Warnf("no encryption key configured, assuming api secrets are stored in plain text")
	}

	environ.database = db
	environ.DatabaseService = service.NewDatabaseCredentialService(db, cipher)
	return nil
}

func secretCipherFromKey(key string) (*service.SecretCipher, error) {
	if key == "" {
		return nil, nil
	}

	if decoded, err := base64.StdEncoding.DecodeString(key); err == nil && len(decoded) == 32 {
		return service.NewSecretCipher(decoded)
	}

	return service.NewSecretCipher([]byte(key))
}

// ConfigureCredentials installs an in-memory credential provider from the
// inline config entries.
func (environ *Environment) ConfigureCredentials(credentials []CredentialConfig) {
	if len(credentials) == 0 {
		return
	}

	staticService := service.NewStaticCredentialService()
	for _, entry := range credentials {
		staticService.Add(&service.Credential{
			UserID:     entry.UserID,
			Exchange:   entry.Exchange,
			APIKey:     entry.APIKey,
			APISecret:  entry.APISecret,
			Passphrase: entry.Passphrase,
		})
	}

	environ.CredentialService = staticService
}

// ConfigureExchanges sets which exchanges this instance routes calls to.
func (environ *Environment) ConfigureExchanges(names []types.ExchangeName) error {
	var exchanges []types.ExchangeName
	for _, name := range names {
		exchangeName, err := types.ValidExchangeName(name.String())
		if err != nil {
			return err
		}

		exchanges = append(exchanges, exchangeName)
	}

	environ.exchanges = exchanges
	return nil
}

// Init wires the components together. Configure* must have been called
// first; after Init the environment is ready to route and execute calls.
func (environ *Environment) Init(ctx context.Context, userConfig *Config) error {
	if userConfig == nil {
		userConfig = &Config{}
	}

	if len(environ.exchanges) == 0 {
		environ.exchanges = types.SupportedExchanges
	}

	if v := userConfig.ClockSync.Interval.Duration(); v > 0 {
		environ.syncInterval = v
	}

	environ.ClockSync = timesync.NewSyncer(environ.Store)
	if v := userConfig.ClockSync.LocalTTL.Duration(); v > 0 {
		environ.ClockSync.LocalTTL = v
	}
	if v := userConfig.ClockSync.StoreTTL.Duration(); v > 0 {
		environ.ClockSync.StoreTTL = v
	}

	for _, name := range environ.exchanges {
		switch name {
		case types.ExchangeKraken:
			environ.ClockSync.RegisterSource(name, krakenapi.NewClient())

		default:
			return errors.Errorf("exchange %s has no time source", name)
		}
	}

	environ.Generator = nonce.NewGenerator(environ.Store, environ.ClockSync, environ.Resync)
	if v := userConfig.Nonce.NormalMargin.Duration(); v > 0 {
		environ.Generator.NormalMargin = v
	}
	if v := userConfig.Nonce.RecoveryMargin.Duration(); v > 0 {
		environ.Generator.RecoveryMargin = v
	}
	if v := userConfig.Nonce.CounterTTL.Duration(); v > 0 {
		environ.Generator.CounterTTL = v
	}

	if environ.Generator.RecoveryMargin <= environ.Generator.NormalMargin {
		return errors.Errorf("recovery margin %s must be larger than the normal margin %s",
			environ.Generator.RecoveryMargin, environ.Generator.NormalMargin)
	}

	provider := environ.CredentialService
	if provider == nil && environ.DatabaseService != nil {
		provider = environ.DatabaseService
	}
	if provider == nil {
		return errors.New("no credential source: configure inline credentials or the database")
	}

	environ.CredentialService = provider
	environ.Router = exchange.NewRouter(provider)
	environ.Executor = exchange.NewExecutor(environ.Generator, environ.Resync)

	log.Infof("environment initialized with exchanges %v, disambiguator %d", environ.exchanges, environ.Generator.Disambiguator())
	return nil
}

// Start primes the clock offsets and schedules the periodic resync.
func (environ *Environment) Start(ctx context.Context) error {
	for _, name := range environ.exchanges {
		name := name
		err := backoff.RetryQuick(ctx, func() error {
			return environ.ClockSync.Sync(ctx, name)
		})
		if err != nil {
			log.WithError(err).Warnf("initial clock sync for %s failed, continuing with the fallback offset", name)
		}
	}

	environ.cron = cron.New()
	_, err := environ.cron.AddFunc("@every "+environ.syncInterval.String(), func() {
		// jitter spreads concurrent instances so the time endpoints are not
		// hit in lockstep
		time.Sleep(timejitter.Milliseconds(0, 2000))

		ctx, cancel := context.WithTimeout(context.Background(), clockSyncTimeout)
		defer cancel()

		environ.syncClocks(ctx)
	})
	if err != nil {
		return err
	}

	environ.cron.Start()

	log.Infof("clock sync scheduled every %s for %v", environ.syncInterval, environ.exchanges)
	return nil
}

func (environ *Environment) syncClocks(ctx context.Context) {
	for _, name := range environ.exchanges {
		util.WarnOnErr(environ.ClockSync.Sync(ctx, name), "clock sync for %s failed", name)
	}
}

// Shutdown stops the scheduler and closes external connections. Safe to call
// after a failed Start.
func (environ *Environment) Shutdown() (err error) {
	if environ.cron != nil {
		<-environ.cron.Stop().Done()
	}

	if environ.database != nil {
		err = multierr.Append(err, environ.database.Close())
	}

	if environ.redis != nil {
		err = multierr.Append(err, environ.redis.Close())
	}

	log.Infof("environment shut down, uptime %s", time.Since(environ.startTime))
	return err
}

// Uptime reports how long this environment has been alive.
func (environ *Environment) Uptime() time.Duration {
	return time.Since(environ.startTime)
}
