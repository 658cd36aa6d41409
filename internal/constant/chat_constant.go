package constant

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"

	// WelcomeMessage seeds a fresh session so the chat panel is never empty.
	WelcomeMessage = `Welcome! I'm your research design tutor. We'll work through the nine steps of designing a research study together, starting with your philosophical worldview. Pick the worldview that best matches how you think about knowledge, and ask me anything along the way.`
)
