package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"unicode"

	"github.com/spetersoncode/a2ui/a2a"
	"github.com/spetersoncode/a2ui/agent"
	"github.com/spetersoncode/a2ui/executor"
	"github.com/spetersoncode/a2ui/extension"
	"github.com/spetersoncode/a2ui/part"
	"github.com/spetersoncode/a2ui/provider"
	"github.com/spetersoncode/a2ui/route"
	"github.com/spetersoncode/a2ui/session"
)

// Agent identity.
const (
	Name        = "orchestrator_agent"
	Description = "An agent that orchestrates requests to multiple other agents"
	Instruction = "You are an orchestrator agent. Your sole responsibility is to analyze the incoming user request, " +
		"determine the user's intent, and route the task to exactly one of your expert subagents"

	CardName        = "Orchestrator Agent"
	CardDescription = "This agent orchestrates requests to multiple subagents."
	CardVersion     = "1.0.0"
)

// MetadataKey tags task updates produced by a sub-agent with its card.
const MetadataKey = "a2a_subagent"

// ContentTypes are the input and output modes on the orchestrator card.
var ContentTypes = []string{"text", "text/plain"}

// ErrNoSubAgents is returned when Build is given no sub-agent URLs.
var ErrNoSubAgents = errors.New("orchestrator: at least one sub-agent URL is required")

// Config configures Build.
type Config struct {
	// BaseURL is where the orchestrator itself is served.
	BaseURL string
	// SubAgentURLs are the base URLs of the remote agents.
	SubAgentURLs []string
	// Model routes requests the route table cannot.
	Model provider.Model
	// HTTPClient fetches cards and calls sub-agents. Default http.DefaultClient.
	HTTPClient *http.Client
	// Converter converts parts in both directions. Default part.Default.
	Converter *part.Converter
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Orchestrator is a built orchestrator agent and its card.
type Orchestrator struct {
	Agent *agent.LLM
	Card  *a2a.AgentCard

	converter *part.Converter
	logger    *slog.Logger
	metadata  map[string]map[string]any
}

// Build fetches the sub-agent cards and assembles the orchestrator.
func Build(ctx context.Context, cfg Config) (*Orchestrator, error) {
	if len(cfg.SubAgentURLs) == 0 {
		return nil, ErrNoSubAgents
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.Converter == nil {
		cfg.Converter = part.Default
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	o := &Orchestrator{
		converter: cfg.Converter,
		logger:    cfg.Logger,
		metadata:  make(map[string]map[string]any),
	}

	var (
		cards   []*a2a.AgentCard
		remotes []agent.Agent
	)
	for _, url := range cfg.SubAgentURLs {
		card, err := a2a.ResolveCard(ctx, url, cfg.HTTPClient)
		if err != nil {
			return nil, fmt.Errorf("resolve sub-agent %s: %w", url, err)
		}
		if card.URL == "" {
			card.URL = url
		}
		cards = append(cards, card)

		name := CleanName(card.Name)
		description, err := Describe(name, card)
		if err != nil {
			return nil, err
		}
		meta, err := cardMap(card)
		if err != nil {
			return nil, err
		}
		o.metadata[name] = meta

		client := a2a.NewClientFromCard(card,
			a2a.WithHTTPClient(cfg.HTTPClient),
			a2a.WithInterceptors(extension.Interceptor(cfg.Logger)),
			a2a.WithLogger(cfg.Logger),
		)
		remotes = append(remotes, agent.NewRemote(card, client,
			agent.WithRemoteName(name),
			agent.WithRemoteDescription(description),
			agent.WithConverter(cfg.Converter),
			agent.WithRemoteLogger(cfg.Logger),
		))
		cfg.Logger.Info("added remote sub-agent", "name", name, "url", card.URL, "skills", len(card.Skills))
	}

	router := route.NewRouter(route.WithConverter(cfg.Converter), route.WithLogger(cfg.Logger))
	o.Agent = agent.NewLLM(Name, cfg.Model,
		agent.WithDescription(Description),
		agent.WithInstruction(Instruction),
		agent.WithSubAgents(remotes...),
		agent.WithBeforeModel(router.BeforeModel),
		agent.WithLogger(cfg.Logger),
	)

	support := extension.Aggregate(cards...)
	o.Card = &a2a.AgentCard{
		Name:               CardName,
		Description:        CardDescription,
		URL:                cfg.BaseURL,
		Version:            CardVersion,
		ProtocolVersion:    a2a.ProtocolVersion,
		DefaultInputModes:  ContentTypes,
		DefaultOutputModes: ContentTypes,
		Capabilities: a2a.AgentCapabilities{
			Streaming:  true,
			Extensions: []a2a.AgentExtension{support.Extension()},
		},
		Skills: support.Skills,
	}
	return o, nil
}

// Metadata returns the task update metadata for content authored by a
// sub-agent: its card under MetadataKey. Other authors get nil.
func (o *Orchestrator) Metadata(author string) map[string]any {
	card, ok := o.metadata[author]
	if !ok {
		return nil
	}
	return map[string]any{MetadataKey: card}
}

// Executor serves the orchestrator over A2A. UI activation is recorded for
// forwarding, and surfaces begun by sub-agents are bound to them.
func (o *Orchestrator) Executor(sessions session.Service, opts ...executor.Option) *executor.Executor {
	base := []executor.Option{
		executor.WithPreparer(executor.ForwardUI()),
		executor.WithConverter(o.converter),
		executor.WithRecorder(route.NewRecorder(o.logger)),
		executor.WithMetadata(o.Metadata),
		executor.WithLogger(o.logger),
	}
	return executor.New(o.Agent, sessions, append(base, opts...)...)
}

var unsafeChars = regexp.MustCompile(`[^0-9a-zA-Z_]+`)

// CleanName turns a card name into an agent name: runs of characters other
// than letters, digits and underscores become one underscore, and a
// leading digit gets an underscore prefix.
func CleanName(name string) string {
	clean := unsafeChars.ReplaceAllString(name, "_")
	if clean == "" {
		return "_"
	}
	if unicode.IsDigit(rune(clean[0])) {
		clean = "_" + clean
	}
	return clean
}

type skillSummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Examples    []string `json:"examples"`
	Tags        []string `json:"tags"`
}

type cardSummary struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Skills      []skillSummary `json:"skills"`
}

// Describe renders the description the model sees for a sub-agent: its
// id, card name, card description and skills as indented JSON.
func Describe(id string, card *a2a.AgentCard) (string, error) {
	summary := cardSummary{
		ID:          id,
		Name:        card.Name,
		Description: card.Description,
		Skills:      make([]skillSummary, 0, len(card.Skills)),
	}
	for _, s := range card.Skills {
		summary.Skills = append(summary.Skills, skillSummary{
			Name:        s.Name,
			Description: s.Description,
			Examples:    s.Examples,
			Tags:        s.Tags,
		})
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("describe %s: %w", id, err)
	}
	return string(data), nil
}

func cardMap(card *a2a.AgentCard) (map[string]any, error) {
	data, err := json.Marshal(card)
	if err != nil {
		return nil, fmt.Errorf("encode card %s: %w", card.Name, err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode card %s: %w", card.Name, err)
	}
	return m, nil
}
