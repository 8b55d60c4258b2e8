package llm

import (
	"fmt"
	"strings"
)

// ChatSystemPrompt builds the in-character system prompt for reply generation.
func ChatSystemPrompt(persona Persona) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s from %s. Here is your personality and background:\n\n", persona.Name, persona.Series)
	fmt.Fprintf(&b, "Description: %s\n", persona.Description)
	fmt.Fprintf(&b, "Personality: %s\n\n", persona.Personality)

	b.WriteString("You should respond in character, maintaining the personality, speech patterns, " +
		"and mannerisms that match your character. You should be friendly and engaging, while " +
		"staying true to your character's unique traits and background. You can reference events " +
		"and relationships from your series.\n\n")

	b.WriteString("Remember:\n" +
		"1. Stay in character at all times\n" +
		"2. Be engaging and show interest in the user\n" +
		"3. Keep responses concise but meaningful\n" +
		"4. Use appropriate emotions and reactions\n" +
		"5. Reference your background and experiences naturally")

	return b.String()
}

// IntroSystemPrompt is the system prompt for opening-line synthesis.
func IntroSystemPrompt() string {
	return "You are an AI roleplaying as a fictional character. Keep responses playful and " +
		"in character, but appropriate. Match their personality and background."
}

// IntroUserPrompt asks for a short in-character opening line.
func IntroUserPrompt(persona Persona) string {
	return fmt.Sprintf(
		"Generate a short first message as %s from %s. Include specific details about their "+
			"background and personality. Keep it natural and in-character.",
		persona.Name, persona.Series,
	)
}
