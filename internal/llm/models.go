package llm

// AvailableModels returns the static model catalogue exposed by the API
func AvailableModels() []Model {
	return []Model{
		{
			ID:          "gpt-3.5-turbo",
			Name:        "GPT-3.5 Turbo",
			Provider:    "OpenAI",
			Description: "Fast and efficient for most tasks",
		},
		{
			ID:          "gpt-4",
			Name:        "GPT-4",
			Provider:    "OpenAI",
			Description: "Most capable OpenAI model",
		},
		{
			ID:          "gpt-4-turbo-preview",
			Name:        "GPT-4 Turbo",
			Provider:    "OpenAI",
			Description: "Latest GPT-4 with improved performance",
		},
		{
			ID:          "claude-3-opus-20240229",
			Name:        "Claude 3 Opus",
			Provider:    "Anthropic",
			Description: "Most capable Claude model",
		},
		{
			ID:          "claude-3-sonnet-20240229",
			Name:        "Claude 3 Sonnet",
			Provider:    "Anthropic",
			Description: "Balanced performance and speed",
		},
		{
			ID:          "gemini-2.0-flash",
			Name:        "Gemini 2.0 Flash",
			Provider:    "Google",
			Description: "Google's fast multimodal model",
		},
		{
			ID:          "meta-llama/llama-3-70b-instruct",
			Name:        "Llama 3 70B",
			Provider:    "OpenRouter",
			Description: "Meta's latest open model",
		},
		{
			ID:          "mistralai/mistral-large",
			Name:        "Mistral Large",
			Provider:    "OpenRouter",
			Description: "Mistral's flagship model",
		},
	}
}
