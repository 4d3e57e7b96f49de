package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdslog "log/slog"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/harm-matthias-harms/coverband"
	"github.com/harm-matthias-harms/coverband/codec"
	"github.com/harm-matthias-harms/coverband/filehash"
	asynchook "github.com/harm-matthias-harms/coverband/hooks/async"
	cblogrus "github.com/harm-matthias-harms/coverband/log/logrus"
	cbslog "github.com/harm-matthias-harms/coverband/log/slog"
	cbzap "github.com/harm-matthias-harms/coverband/log/zap"
	"github.com/harm-matthias-harms/coverband/provider"
	"github.com/harm-matthias-harms/coverband/provider/bigcache"
	"github.com/harm-matthias-harms/coverband/provider/file"
	"github.com/harm-matthias-harms/coverband/provider/gcs"
	"github.com/harm-matthias-harms/coverband/provider/memory"
	"github.com/harm-matthias-harms/coverband/provider/minio"
	"github.com/harm-matthias-harms/coverband/provider/redis"
	"github.com/harm-matthias-harms/coverband/provider/ristretto"
	"github.com/harm-matthias-harms/coverband/sloghooks"
)

// Service is an opened Store plus the resources it was built from.
type Service struct {
	Store coverband.Store

	hasher *filehash.MD5
	hooks  *asynchook.Hooks
}

// Close closes the store's provider, drains pending hook events and stops the hasher.
func (s *Service) Close(ctx context.Context) error {
	err := s.Store.Close(ctx)
	if s.hooks != nil {
		s.hooks.Close()
	}
	return errors.Join(err, s.hasher.Close(ctx))
}

// Open builds the provider, codec, logger and hasher described by cfg.
// Logs are written to logOut.
func Open(ctx context.Context, cfg *Config, logOut io.Writer) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cd, err := newCodec(cfg)
	if err != nil {
		return nil, err
	}
	logger, slogger, err := newLogger(cfg, logOut)
	if err != nil {
		return nil, err
	}
	p, err := newProvider(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}

	svc := &Service{hasher: filehash.New(cfg.Root, 0, 0)}
	var hooks coverband.Hooks
	if slogger != nil {
		svc.hooks = asynchook.New(sloghooks.New(slogger, sloghooks.Options{StaleDroppedEvery: 10}), 1, 1024)
		hooks = svc.hooks
	}

	store, err := coverband.New(coverband.Options{
		Provider:  p,
		Hasher:    svc.hasher,
		Namespace: cfg.Namespace,
		Codec:     cd,
		TTL:       cfg.TTL,
		Logger:    logger,
		Hooks:     hooks,
	})
	if err != nil {
		_ = p.Close(ctx)
		if svc.hooks != nil {
			svc.hooks.Close()
		}
		return nil, err
	}
	svc.Store = store
	return svc, nil
}

func newCodec(cfg *Config) (codec.Codec[coverband.Report], error) {
	var cd codec.Codec[coverband.Report]
	switch cfg.Codec {
	case CodecJSON:
		cd = codec.JSON[coverband.Report]{}
	case CodecCBOR:
		c, err := codec.NewCBOR[coverband.Report](true)
		if err != nil {
			return nil, err
		}
		cd = c
	case CodecMsgpack:
		cd = codec.Msgpack[coverband.Report]{}
	case CodecProtobuf:
		cd = codec.Protobuf[coverband.Report]{}
	default:
		return nil, fmt.Errorf("invalid codec: %s", cfg.Codec)
	}
	if cfg.MaxBlobBytes > 0 {
		cd = codec.Limit[coverband.Report]{Inner: cd, MaxDecode: cfg.MaxBlobBytes}
	}
	return cd, nil
}

// newLogger also returns the *slog.Logger when slog is selected so hooks can share it.
func newLogger(cfg *Config, out io.Writer) (coverband.Logger, *stdslog.Logger, error) {
	switch cfg.Log {
	case LogSlog:
		var lvl stdslog.Level
		if err := lvl.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			return nil, nil, fmt.Errorf("invalid log level: %w", err)
		}
		l := stdslog.New(stdslog.NewJSONHandler(out, &stdslog.HandlerOptions{Level: lvl}))
		return cbslog.New(l), l, nil
	case LogZap:
		lvl, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level: %w", err)
		}
		core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(out), lvl)
		return cbzap.New(zap.New(core)), nil, nil
	case LogLogrus:
		lvl, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level: %w", err)
		}
		l := logrus.New()
		l.SetOutput(out)
		l.SetLevel(lvl)
		l.SetFormatter(&logrus.JSONFormatter{})
		return cblogrus.New(l), nil, nil
	default:
		return nil, nil, fmt.Errorf("invalid log type: %s", cfg.Log)
	}
}

func newProvider(ctx context.Context, cfg *Config) (provider.Provider, error) {
	switch cfg.Backend {
	case BackendMemory:
		return memory.New(), nil
	case BackendBigCache:
		return bigcache.New(ctx, bigcache.Config{
			LifeWindow:         cfg.TTL,
			CleanWindow:        time.Minute,
			MaxEntriesInWindow: 1024,
			MaxEntrySize:       1 << 10,
		})
	case BackendRistretto:
		return ristretto.New(ristretto.Config{
			NumCounters: 1e4,
			MaxCost:     256 << 20,
			BufferItems: 64,
		})
	case BackendRedis:
		return redis.Dial(cfg.RedisURL)
	case BackendFile:
		return file.New(cfg.FileDir)
	case BackendGCS:
		return gcs.New(ctx, gcs.Config{
			Bucket:   cfg.GCSBucket,
			Prefix:   cfg.GCSPrefix,
			Endpoint: cfg.GCSEndpoint,
		})
	case BackendMinIO:
		return minio.New(ctx, minio.Config{
			Endpoint:        cfg.MinIOEndpoint,
			AccessKeyID:     cfg.MinIOAccessKey,
			SecretAccessKey: cfg.MinIOSecretKey,
			UseSSL:          cfg.MinIOUseSSL,
			Bucket:          cfg.MinIOBucket,
			Prefix:          cfg.MinIOPrefix,
		})
	default:
		return nil, fmt.Errorf("invalid backend: %s", cfg.Backend)
	}
}
