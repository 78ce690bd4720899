package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/cryptichearts/backend/internal/models"
	"github.com/cryptichearts/backend/internal/storage"
)

var (
	ErrAgentNotFound     = errors.New("agent not found")
	ErrAgentExists       = errors.New("DID already registered")
	ErrInvalidPassphrase = errors.New("invalid passphrase")
)

// AgentService keeps the passphrase-protected agents that unlock identities on
// this server. With a store, agents survive restarts.
type AgentService struct {
	mu     sync.RWMutex
	agents map[string]*models.Agent // keyed by DID
	store  *storage.JSONStore
	now    func() time.Time
}

type agentDoc struct {
	DID            string    `json:"did"`
	PassphraseHash string    `json:"passphraseHash"`
	CreatedAt      time.Time `json:"createdAt"`
}

func NewAgentService(store *storage.JSONStore) (*AgentService, error) {
	s := &AgentService{
		agents: make(map[string]*models.Agent),
		store:  store,
		now:    time.Now,
	}
	if store == nil {
		return s, nil
	}

	var docs []agentDoc
	if err := store.Load(&docs); err != nil {
		return nil, fmt.Errorf("load agents: %w", err)
	}
	for _, d := range docs {
		s.agents[d.DID] = &models.Agent{DID: d.DID, PassphraseHash: d.PassphraseHash, CreatedAt: d.CreatedAt}
	}
	return s, nil
}

func (s *AgentService) Register(req *models.SessionRequest) (*models.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.agents[req.DID]; exists {
		return nil, ErrAgentExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Passphrase), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	agent := &models.Agent{
		DID:            req.DID,
		PassphraseHash: string(hashed),
		CreatedAt:      s.now(),
	}
	s.agents[agent.DID] = agent
	if err := s.saveLocked(); err != nil {
		delete(s.agents, agent.DID)
		return nil, err
	}
	return agent, nil
}

func (s *AgentService) Unlock(req *models.SessionRequest) (*models.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agent, exists := s.agents[req.DID]
	if !exists {
		return nil, ErrAgentNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(agent.PassphraseHash), []byte(req.Passphrase)); err != nil {
		return nil, ErrInvalidPassphrase
	}
	return agent, nil
}

func (s *AgentService) GetByDID(did string) (*models.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agent, exists := s.agents[did]
	if !exists {
		return nil, ErrAgentNotFound
	}
	return agent, nil
}

func (s *AgentService) saveLocked() error {
	if s.store == nil {
		return nil
	}
	docs := make([]agentDoc, 0, len(s.agents))
	for _, a := range s.agents {
		docs = append(docs, agentDoc{DID: a.DID, PassphraseHash: a.PassphraseHash, CreatedAt: a.CreatedAt})
	}
	if err := s.store.Save(docs); err != nil {
		return fmt.Errorf("save agents: %w", err)
	}
	return nil
}
