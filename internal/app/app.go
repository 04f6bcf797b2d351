// Package app assembles the scholarship service from configuration.
package app

import (
	"context"
	"fmt"
	"time"

	"scholarship-workers/internal/common/auth"
	"scholarship-workers/internal/common/aws"
	"scholarship-workers/internal/common/config"
	"scholarship-workers/internal/common/database"
	"scholarship-workers/internal/common/logger"
	"scholarship-workers/internal/events"
	"scholarship-workers/internal/ledger"
	"scholarship-workers/internal/models"
	"scholarship-workers/internal/scholarship"
)

type App struct {
	Service *scholarship.Service
	ledger  *database.Ledger
}

func (a *App) Close() error {
	return a.ledger.Close()
}

// Build opens the configured ledger backend and wires authorization and event sinks around it.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	authorizer, err := NewAuthorizer(cfg.Auth)
	if err != nil {
		return nil, err
	}

	sink, err := NewEventSink(ctx, cfg.Events, cfg.Database.Elasticsearch, log)
	if err != nil {
		return nil, err
	}

	l, err := database.OpenLedger(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	svc, err := scholarship.NewService(scholarship.Options{
		Store:      l.Store,
		Authorizer: authorizer,
		Approval:   NewApprovalPolicy(cfg.Approval, authorizer),
		Events:     sink,
		Clock:      ledger.SystemClock{},
		TTL: &ledger.TTLPolicy{
			Threshold: cfg.Ledger.TTLThreshold(),
			ExtendTo:  cfg.Ledger.TTLExtendTo(),
		},
		Logger: log,
	})
	if err != nil {
		l.Close()
		return nil, err
	}
	return &App{Service: svc, ledger: l}, nil
}

func NewAuthorizer(cfg config.AuthConfig) (scholarship.Authorizer, error) {
	switch cfg.Mode {
	case config.AuthModeKeycloak:
		kc := cfg.Keycloak
		client := auth.NewKeycloakClient(kc.URL, kc.Realm, kc.ClientID, kc.ClientSecret, time.Duration(kc.Timeout)*time.Millisecond)
		return auth.NewTokenAuthorizer(client), nil
	case config.AuthModeTrusted:
		return auth.TrustedAuthorizer{}, nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}

func NewApprovalPolicy(cfg config.ApprovalConfig, authorizer scholarship.Authorizer) scholarship.ApprovalPolicy {
	if cfg.Policy != config.ApprovalPolicyAuthority {
		return scholarship.OpenApproval{}
	}
	ids := make([]models.Identity, 0, len(cfg.Authorities))
	for _, a := range cfg.Authorities {
		ids = append(ids, models.Identity(a))
	}
	return scholarship.NewAuthorityApproval(authorizer, ids...)
}

// NewEventSink fans committed events out to every enabled sink. It returns nil when none is enabled.
func NewEventSink(ctx context.Context, cfg config.EventsConfig, esCfg config.ElasticsearchConfig, log logger.Logger) (events.Sink, error) {
	var sinks events.Multi

	if cfg.Log {
		sinks = append(sinks, events.NewLogSink(log))
	}

	if cfg.Elasticsearch.Enabled {
		es, err := database.NewElasticsearch(esCfg)
		if err != nil {
			return nil, err
		}
		if err := database.PingElasticsearch(ctx, es); err != nil {
			log.Warn("elasticsearch unreachable at startup; each event publish will still be attempted", map[string]interface{}{"error": err})
		}
		sinks = append(sinks, events.NewElasticsearchSink(es, cfg.Elasticsearch.Index))
	}

	if cfg.SNS.Enabled {
		client, err := aws.NewSNSClient(ctx, cfg.SNS.Region)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, events.NewSNSSink(client, cfg.SNS.TopicARN))
	}

	switch len(sinks) {
	case 0:
		return nil, nil
	case 1:
		return sinks[0], nil
	default:
		return sinks, nil
	}
}
