package model

// Provider identifies the SDK a model is served through.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGoogle    Provider = "google"
)

// ChatModel represents a chat model from any provider.
type ChatModel struct {
	id       string
	provider Provider
}

// String returns the API identifier for this model.
func (m ChatModel) String() string { return m.id }

// Provider returns which provider this model belongs to.
func (m ChatModel) Provider() Provider { return m.provider }

// Anthropic Claude Models
var (
	ClaudeOpus45   = ChatModel{id: "claude-opus-4-5", provider: ProviderAnthropic}
	ClaudeSonnet45 = ChatModel{id: "claude-sonnet-4-5", provider: ProviderAnthropic}
	ClaudeHaiku45  = ChatModel{id: "claude-haiku-4-5", provider: ProviderAnthropic}

	// DefaultClaudeModel is the recommended default Anthropic model.
	DefaultClaudeModel = ClaudeSonnet45
)

// OpenAI GPT Models
var (
	GPT52    = ChatModel{id: "gpt-5.2", provider: ProviderOpenAI}
	GPT51    = ChatModel{id: "gpt-5.1", provider: ProviderOpenAI}
	GPT5Mini = ChatModel{id: "gpt-5-mini", provider: ProviderOpenAI}

	// DefaultGPTModel is the recommended default OpenAI model.
	DefaultGPTModel = GPT52
)

// Google Gemini Models
var (
	Gemini25Pro   = ChatModel{id: "gemini-2.5-pro", provider: ProviderGoogle}
	Gemini25Flash = ChatModel{id: "gemini-2.5-flash", provider: ProviderGoogle}

	// DefaultGeminiModel is the recommended default Google model. The
	// A2UI samples run on Gemini.
	DefaultGeminiModel = Gemini25Flash
)

var known = []ChatModel{
	ClaudeOpus45, ClaudeSonnet45, ClaudeHaiku45,
	GPT52, GPT51, GPT5Mini,
	Gemini25Pro, Gemini25Flash,
}

// Lookup finds a known model by id.
func Lookup(id string) (ChatModel, bool) {
	for _, m := range known {
		if m.id == id {
			return m, true
		}
	}
	return ChatModel{}, false
}

// Custom declares a model id the package does not list.
func Custom(id string, provider Provider) ChatModel {
	return ChatModel{id: id, provider: provider}
}
