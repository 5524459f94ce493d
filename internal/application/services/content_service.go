package services

import (
	"context"
	"fmt"

	"github.com/upskillhq/upskill-go/internal/domain/entities/insights"
	"github.com/upskillhq/upskill-go/internal/domain/entities/learning"
	"github.com/upskillhq/upskill-go/internal/domain/repositories"
	"github.com/upskillhq/upskill-go/internal/infrastructure/caching/manager"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/performance"
)

// ContentService serves module content, client configuration and expert
// session listings through the cache.
type ContentService struct {
	cache       *manager.Manager
	modules     repositories.ModuleRepository
	clients     repositories.ClientRepository
	sessions    repositories.ExpertSessionRepository
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

func NewContentService(cache *manager.Manager, modules repositories.ModuleRepository, clients repositories.ClientRepository, sessions repositories.ExpertSessionRepository, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ContentService {
	return &ContentService{
		cache:       cache,
		modules:     modules,
		clients:     clients,
		sessions:    sessions,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

func (s *ContentService) ModuleContent(ctx context.Context, moduleID string, force bool) (*insights.ModuleContent, error) {
	marker := s.perfTracker.StartOperation("module_content")
	defer marker.Complete()
	marker.AddMetadata("moduleId", moduleID)

	content, err := s.cache.ModuleContent(ctx, moduleID, force, func(ctx context.Context) (*insights.ModuleContent, error) {
		module, err := s.modules.FindByID(moduleID)
		if err != nil {
			return nil, err
		}
		if module == nil {
			return nil, fmt.Errorf("module %s not found", moduleID)
		}
		lessons, err := s.modules.FindLessons(moduleID)
		if err != nil {
			return nil, err
		}
		return &insights.ModuleContent{ModuleID: moduleID, Module: module, Lessons: lessons}, nil
	})
	if err != nil {
		marker.SetError(err)
		return nil, err
	}
	return content, nil
}

func (s *ContentService) ClientConfig(ctx context.Context, clientID string, force bool) (*learning.ClientConfig, error) {
	marker := s.perfTracker.StartOperation("client_config")
	defer marker.Complete()
	marker.AddMetadata("clientId", clientID)

	cfg, err := s.cache.ClientConfig(ctx, clientID, force, func(ctx context.Context) (*learning.ClientConfig, error) {
		cfg, err := s.clients.FindConfig(clientID)
		if err != nil {
			return nil, err
		}
		if cfg == nil {
			return nil, fmt.Errorf("client config %s not found", clientID)
		}
		return cfg, nil
	})
	if err != nil {
		marker.SetError(err)
		return nil, err
	}
	return cfg, nil
}

func (s *ContentService) ExpertSessions(ctx context.Context, clientID string, force bool) (*insights.ExpertSessionList, error) {
	marker := s.perfTracker.StartOperation("expert_sessions")
	defer marker.Complete()
	marker.AddMetadata("clientId", clientID)

	list, err := s.cache.ExpertSessions(ctx, clientID, force, func(ctx context.Context) (*insights.ExpertSessionList, error) {
		sessions, err := s.sessions.FindByClientID(clientID)
		if err != nil {
			return nil, err
		}
		return &insights.ExpertSessionList{ClientID: clientID, Sessions: sessions}, nil
	})
	if err != nil {
		marker.SetError(err)
		return nil, err
	}
	return list, nil
}
