// Package engines provides text-to-speech engine implementations.
//
// The openai engine talks to an OpenAI-compatible /audio/speech endpoint
// (including LiteLLM-style gateways via a base URL override). The piper
// engine runs the piper binary locally for offline synthesis. The mock
// engine exists for tests. FallbackEngine chains a primary engine with a
// backup that takes over after repeated failures.
package engines
