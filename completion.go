package praxis

import "context"

// Completer is the uniform contract against an LLM backend. Implementations
// are a closed set selected once at configuration time: the hosted Gemini
// API (gemini/) or a local OpenAI-compatible inference server such as
// Ollama or LM Studio (llm/).
//
// Complete sends the instructions and payload to the model and decodes the
// model's JSON response into out. Implementations own the shared retry
// policy (exponential backoff from one second, doubling, capped at three
// attempts, honoring a provider retry-after hint) and exactly one repair
// pass over malformed output. After repair fails, the call returns an
// EMALFORMED error carrying the raw text (see MalformedRaw). Exhausted
// retries surface as ERATELIMITED, ETIMEOUT, or EUNAVAILABLE.
//
// Calls are stateless and safe to issue concurrently; implementations
// bound in-flight calls to the active provider's safe concurrency.
type Completer interface {
	Complete(ctx context.Context, instructions, payload string, out any) error
}
