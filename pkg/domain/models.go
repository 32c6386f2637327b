package domain

const Gpt4oMiniModel = "gpt-4o-mini"

const DefaultSystemPrompt = "If the user provides a blood test image or PDF, " +
	"summarize the results and provide general, non-medical advice. " +
	"Don't respond to anything not blood test related. Keep it short. Be helpful."
