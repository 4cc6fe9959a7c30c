package llm

// geminiBaseURL is the OpenAI-compatible surface of the Generative Language
// API, so Gemini models run through the same Responses client.
const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// NewGemini returns a provider for a Gemini model such as gemini-2.5-flash.
// The key is a Google AI Studio API key (GOOGLE_API_KEY).
func NewGemini(apiKey, model string) *OpenAIProvider {
	return NewOpenAI(geminiBaseURL, apiKey, model)
}
