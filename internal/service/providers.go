package service

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/epicflowhq/epicflow/internal/domain/epic"
	"github.com/epicflowhq/epicflow/internal/domain/provider"
)

// defaultDomain is the profile returned for unknown domains so routing
// never blocks on a configuration gap.
const defaultDomain = string(epic.TypeDevelopment)

// ProviderService is the read-only routing table mapping task domains to
// provider profiles and epic types to workers. Built-in defaults can be
// overlaid from a YAML file at startup; after that everything is
// lock-free reads.
type ProviderService struct {
	profiles  map[string]provider.Profile
	primary   map[epic.Type]string
	secondary map[epic.Type][]string
}

// NewProviderService creates the routing table with built-in defaults.
func NewProviderService() *ProviderService {
	return &ProviderService{
		profiles:  defaultProfiles(),
		primary:   defaultPrimaryWorkers(),
		secondary: defaultSecondaryWorkers(),
	}
}

// providersFile is the YAML overlay shape.
type providersFile struct {
	Profiles map[string]provider.Profile `yaml:"profiles"`
	Workers  struct {
		Primary   map[string]string   `yaml:"primary"`
		Secondary map[string][]string `yaml:"secondary"`
	} `yaml:"workers"`
}

// LoadFile overlays profiles and worker tables from a YAML file.
// A missing file is not an error; built-ins stay active.
func (p *ProviderService) LoadFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from config
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read providers file %s: %w", path, err)
	}

	var f providersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse providers file %s: %w", path, err)
	}

	for domain, prof := range f.Profiles {
		prof.Domain = domain
		p.profiles[domain] = prof
	}
	for t, worker := range f.Workers.Primary {
		p.primary[epic.Type(t)] = worker
	}
	for t, workers := range f.Workers.Secondary {
		p.secondary[epic.Type(t)] = workers
	}

	slog.Info("provider overlay loaded", "path", path,
		"profiles", len(f.Profiles), "workers", len(f.Workers.Primary))
	return nil
}

// Resolve returns the profile for a domain. Unknown domains resolve to
// the default profile rather than failing.
func (p *ProviderService) Resolve(domain string) provider.Profile {
	if prof, ok := p.profiles[domain]; ok {
		return prof
	}
	slog.Debug("unknown provider domain, using default", "domain", domain)
	return p.profiles[defaultDomain]
}

// Profiles returns all profiles sorted by domain name.
func (p *ProviderService) Profiles() []provider.Profile {
	out := make([]provider.Profile, 0, len(p.profiles))
	for _, prof := range p.profiles {
		out = append(out, prof)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Domain < out[j].Domain })
	return out
}

// PrimaryWorker returns the worker responsible for an epic type.
func (p *ProviderService) PrimaryWorker(t epic.Type) string {
	if w, ok := p.primary[t]; ok {
		return w
	}
	return p.primary[epic.DefaultType]
}

// SecondaryWorkers returns up to limit complementary workers for an epic type.
func (p *ProviderService) SecondaryWorkers(t epic.Type, limit int) []string {
	if limit <= 0 {
		return nil
	}
	pool, ok := p.secondary[t]
	if !ok {
		pool = p.secondary[epic.DefaultType]
	}
	if len(pool) > limit {
		pool = pool[:limit]
	}
	out := make([]string, len(pool))
	copy(out, pool)
	return out
}

func defaultProfiles() map[string]provider.Profile {
	fallbackMini := &provider.Profile{
		Domain:      "fallback",
		Provider:    "openai",
		Model:       "gpt-4o-mini",
		Temperature: 0.3,
		MaxTokens:   4096,
		RateLimit:   provider.RateLimit{Requests: 120, Interval: "1m"},
	}

	return map[string]provider.Profile{
		string(epic.TypeFoundation): {
			Domain:       string(epic.TypeFoundation),
			Provider:     "anthropic",
			Model:        "claude-3-5-sonnet",
			Temperature:  0.2,
			MaxTokens:    8192,
			SystemPrompt: "You plan infrastructure groundwork and project scaffolding.",
			RateLimit:    provider.RateLimit{Requests: 60, Interval: "1m"},
			Fallback:     fallbackMini,
		},
		string(epic.TypeDevelopment): {
			Domain:       string(epic.TypeDevelopment),
			Provider:     "anthropic",
			Model:        "claude-3-5-sonnet",
			Temperature:  0.2,
			MaxTokens:    8192,
			SystemPrompt: "You implement features and fixes with tests.",
			RateLimit:    provider.RateLimit{Requests: 120, Interval: "1m"},
			Fallback:     fallbackMini,
		},
		string(epic.TypeArchitecture): {
			Domain:       string(epic.TypeArchitecture),
			Provider:     "anthropic",
			Model:        "claude-3-opus",
			Temperature:  0.4,
			MaxTokens:    8192,
			SystemPrompt: "You design system structure, schemas, and migrations.",
			RateLimit:    provider.RateLimit{Requests: 30, Interval: "1m"},
			Fallback:     fallbackMini,
		},
		string(epic.TypeIntelligence): {
			Domain:       string(epic.TypeIntelligence),
			Provider:     "openai",
			Model:        "gpt-4o",
			Temperature:  0.5,
			MaxTokens:    8192,
			SystemPrompt: "You build classification, reasoning, and model plumbing.",
			RateLimit:    provider.RateLimit{Requests: 60, Interval: "1m"},
			Fallback:     fallbackMini,
		},
		string(epic.TypeUI): {
			Domain:       string(epic.TypeUI),
			Provider:     "openai",
			Model:        "gpt-4o",
			Temperature:  0.6,
			MaxTokens:    4096,
			SystemPrompt: "You build frontend components and layouts.",
			RateLimit:    provider.RateLimit{Requests: 120, Interval: "1m"},
			Fallback:     fallbackMini,
		},
		string(epic.TypeIntegration): {
			Domain:       string(epic.TypeIntegration),
			Provider:     "anthropic",
			Model:        "claude-3-5-sonnet",
			Temperature:  0.3,
			MaxTokens:    8192,
			SystemPrompt: "You wire third-party services, webhooks, and connectors.",
			RateLimit:    provider.RateLimit{Requests: 60, Interval: "1m"},
			Fallback:     fallbackMini,
		},
	}
}

func defaultPrimaryWorkers() map[epic.Type]string {
	return map[epic.Type]string{
		epic.TypeFoundation:   "infra-agent",
		epic.TypeDevelopment:  "coder-agent",
		epic.TypeArchitecture: "design-agent",
		epic.TypeIntelligence: "ml-agent",
		epic.TypeUI:           "frontend-agent",
		epic.TypeIntegration:  "platform-agent",
	}
}

func defaultSecondaryWorkers() map[epic.Type][]string {
	return map[epic.Type][]string{
		epic.TypeFoundation:   {"coder-agent", "platform-agent", "design-agent"},
		epic.TypeDevelopment:  {"design-agent", "infra-agent", "frontend-agent"},
		epic.TypeArchitecture: {"coder-agent", "infra-agent", "ml-agent"},
		epic.TypeIntelligence: {"coder-agent", "design-agent", "infra-agent"},
		epic.TypeUI:           {"coder-agent", "design-agent", "platform-agent"},
		epic.TypeIntegration:  {"coder-agent", "infra-agent", "design-agent"},
	}
}
