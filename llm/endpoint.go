package llm

import "strings"

// Endpoint identifies a local OpenAI-compatible inference server.
// The set is closed; new backends get their own constructor.
type Endpoint struct {
	name    string
	baseURL string
}

// Ollama returns an endpoint for an Ollama server. An empty baseURL
// uses the default local address.
func Ollama(baseURL string) Endpoint {
	if baseURL == "" {
		baseURL = "http://localhost:11434/v1"
	}
	return Endpoint{name: "ollama", baseURL: baseURL}
}

// LMStudio returns an endpoint for an LM Studio server. An empty
// baseURL uses the default local address.
func LMStudio(baseURL string) Endpoint {
	if baseURL == "" {
		baseURL = "http://localhost:1234/v1"
	}
	return Endpoint{name: "lmstudio", baseURL: baseURL}
}

// Name returns the endpoint identifier for logging.
func (e Endpoint) Name() string { return e.name }

// URL constructs the chat completions URL.
func (e Endpoint) URL() string {
	base := strings.TrimSuffix(e.baseURL, "/")
	if strings.HasSuffix(base, "/chat/completions") {
		return base
	}
	return base + "/chat/completions"
}
