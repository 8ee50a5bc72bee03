package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/elastic/go-elasticsearch/v8"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Alp4ka/persistpager"
	"github.com/Alp4ka/persistpager/internal/config"
	"github.com/Alp4ka/persistpager/listeners"
	"github.com/Alp4ka/persistpager/odm"
	"github.com/Alp4ka/persistpager/orm"
	"github.com/Alp4ka/persistpager/phpcr"
	"github.com/Alp4ka/persistpager/search"
)

// backends owns the connections opened for the configured providers.
type backends struct {
	cfg     *config.Config
	logger  logrus.FieldLogger
	closers []func() error

	providers *persistpager.ProviderSet

	entityManager   *orm.EntityManager
	nodeManager     *phpcr.DocumentManager
	documentManager *odm.DocumentManager
	dynamo          *dynamodb.Client
	indexManager    *search.IndexManager
	searcher        *search.ESSearcher
}

// openBackends connects to every backend referenced by a provider and
// registers one provider per object class.
func openBackends(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*backends, error) {
	b := &backends{
		cfg:       cfg,
		logger:    logger,
		providers: persistpager.NewProviderSet(),
	}

	for _, p := range cfg.Providers {
		if err := b.register(ctx, p); err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("%s: %w", p.ObjectClass, err)
		}
	}

	return b, nil
}

func (b *backends) register(ctx context.Context, p config.ProviderConfig) error {
	var (
		objectClass = persistpager.ObjectClass(p.ObjectClass)
		opts        = []persistpager.ProviderOption{persistpager.WithLogger(b.logger)}
		provider    persistpager.PagerProvider
		err         error
	)

	switch p.Driver {
	case config.DriverORM:
		var em *orm.EntityManager
		if em, err = b.ormManager(); err != nil {
			return err
		}
		em.BindTable(objectClass, p.Source)

		provider, err = orm.NewPagerProvider(
			managerRegistry[*gorm.DB](b.cfg.ManagerCache, em, objectClass),
			listeners.NewRegistrar[*gorm.DB](listeners.WithLogger(b.logger)),
			objectClass, p.BaseConfig(), opts...,
		)
	case config.DriverPHPCR:
		var dm *phpcr.DocumentManager
		if dm, err = b.phpcrManager(); err != nil {
			return err
		}
		dm.Bind(objectClass, p.Source)

		provider, err = phpcr.NewPagerProvider(
			managerRegistry[*bun.SelectQuery](b.cfg.ManagerCache, dm, objectClass),
			listeners.NewRegistrar[*bun.SelectQuery](listeners.WithLogger(b.logger)),
			objectClass, p.BaseConfig(), opts...,
		)
	case config.DriverODM:
		var dm *odm.DocumentManager
		if dm, err = b.odmManager(ctx); err != nil {
			return err
		}
		dm.Bind(objectClass, p.Source)

		provider, err = odm.NewPagerProvider(
			b.dynamo,
			managerRegistry[*dynamodb.QueryInput](b.cfg.ManagerCache, dm, objectClass),
			listeners.NewRegistrar[*dynamodb.QueryInput](listeners.WithLogger(b.logger)),
			objectClass, p.BaseConfig(), opts...,
		)
	case config.DriverSearch:
		var im *search.IndexManager
		if im, err = b.searchManager(); err != nil {
			return err
		}
		im.Bind(objectClass, p.Source)

		provider, err = search.NewPagerProvider(
			b.searcher,
			managerRegistry[*search.Query](b.cfg.ManagerCache, im, objectClass),
			listeners.NewRegistrar[*search.Query](listeners.WithLogger(b.logger)),
			objectClass, p.BaseConfig(), opts...,
		)
	default:
		return fmt.Errorf("unknown driver %q", p.Driver)
	}
	if err != nil {
		return err
	}

	return b.providers.Register(objectClass, provider)
}

func managerRegistry[Q any](
	cacheCfg config.ManagerCacheConfig,
	manager persistpager.Manager[Q],
	objectClass persistpager.ObjectClass,
) persistpager.ManagerRegistry[Q] {
	registry := persistpager.NewStaticManagerRegistry[Q]().Register(manager, objectClass)
	if !cacheCfg.Enabled {
		return registry
	}

	return persistpager.NewCachedManagerRegistry[Q](registry, cacheCfg.Expiration, 0)
}

func (b *backends) ormManager() (*orm.EntityManager, error) {
	if b.entityManager != nil {
		return b.entityManager, nil
	}

	conn := b.cfg.Connections.ORM

	var dialector gorm.Dialector
	switch conn.Dialect {
	case "mysql":
		dialector = gormmysql.Open(conn.DSN)
	case "postgres":
		dialector = gormpostgres.Open(conn.DSN)
	default:
		return nil, fmt.Errorf("unsupported orm dialect %q", conn.Dialect)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open orm connection: %w", err)
	}
	if conn.Debug {
		db = db.Debug()
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	b.closers = append(b.closers, sqlDB.Close)

	b.entityManager = orm.NewEntityManager(db)

	return b.entityManager, nil
}

func (b *backends) phpcrManager() (*phpcr.DocumentManager, error) {
	if b.nodeManager != nil {
		return b.nodeManager, nil
	}

	db, err := openBun(b.cfg.Connections.PHPCR.SQLConfig)
	if err != nil {
		return nil, err
	}
	b.closers = append(b.closers, db.Close)

	b.nodeManager = phpcr.NewDocumentManager(db, b.cfg.Connections.PHPCR.Table)

	return b.nodeManager, nil
}

func openBun(conn config.SQLConfig) (*bun.DB, error) {
	var (
		sqlDB *sql.DB
		db    *bun.DB
		err   error
	)

	switch conn.Dialect {
	case "mysql":
		if sqlDB, err = sql.Open("mysql", conn.DSN); err == nil {
			db = bun.NewDB(sqlDB, mysqldialect.New())
		}
	case "postgres":
		if sqlDB, err = sql.Open("postgres", conn.DSN); err == nil {
			db = bun.NewDB(sqlDB, pgdialect.New())
		}
	case "sqlite":
		if sqlDB, err = sql.Open(sqliteshim.ShimName, conn.DSN); err == nil {
			db = bun.NewDB(sqlDB, sqlitedialect.New())
		}
	default:
		return nil, fmt.Errorf("unsupported phpcr dialect %q", conn.Dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open phpcr connection: %w", err)
	}

	if conn.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))
	}

	return db, nil
}

func (b *backends) odmManager(ctx context.Context) (*odm.DocumentManager, error) {
	if b.documentManager != nil {
		return b.documentManager, nil
	}

	conn := b.cfg.Connections.ODM

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(conn.Region)}
	if conn.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conn.AccessKeyID, conn.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	b.dynamo = dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if conn.Endpoint != "" {
			o.BaseEndpoint = aws.String(conn.Endpoint)
		}
	})
	b.documentManager = odm.NewDocumentManager(conn.Table, conn.TypeIndex).WithTypeAttribute(conn.TypeAttribute)

	return b.documentManager, nil
}

func (b *backends) searchManager() (*search.IndexManager, error) {
	if b.indexManager != nil {
		return b.indexManager, nil
	}

	conn := b.cfg.Connections.Search

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: conn.Addresses,
		Username:  conn.Username,
		Password:  conn.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	b.searcher = search.NewESSearcher(client)
	b.indexManager = search.NewIndexManager()

	return b.indexManager, nil
}

// Close closes every opened connection.
func (b *backends) Close() error {
	var errs []error
	for _, closer := range b.closers {
		errs = append(errs, closer())
	}
	b.closers = nil

	return errors.Join(errs...)
}
