package prompt

import "strings"

// The two instruction templates are fixed and mutually exclusive: once a
// document has been processed the persona fallback is never used again for
// the rest of the session.
const (
	PersonaTemplate = `## Friendly AI Assistant
- If no document is uploaded, rely only on the assistant profile below.
- If a document is uploaded, ignore the profile and use only the document content.
- For short queries: respond briefly.
- For detailed queries: provide structured, warm, and thorough explanations.
- Maintain a friendly, professional tone.

## Assistant Profile (Used Only If No Doc Is Provided)
%s
(End of profile)
`

	DocumentTemplate = `## Document-based Chat
- Use only the uploaded document's content.
- If the document lacks the information, say: "I don't have enough information from the document to answer that."
- Short queries get short answers; detailed queries get structured, thorough answers from the document.
- Maintain a friendly, professional tone.
`
)

// DefaultProfile is the built-in persona biography used when the config does
// not supply one.
const DefaultProfile = `Name: Alex Moreno
Role: Full-Stack Web Developer
Email: alex.moreno@example.com
Location: Valencia, Spain
Skills: Go, TypeScript, React, PostgreSQL, distributed systems
Achievements: led a platform migration serving 2M users, mentors junior engineers`

// Composer assembles the final prompt for the answer generator.
type Composer struct {
	personaPrompt string
}

// NewComposer builds a composer; an empty profile selects DefaultProfile.
func NewComposer(profile string) *Composer {
	if strings.TrimSpace(profile) == "" {
		profile = DefaultProfile
	}
	return &Composer{
		personaPrompt: strings.Replace(PersonaTemplate, "%s", profile, 1),
	}
}

// Compose returns the full prompt text for a question. Selection is driven
// solely by grounded: a processed document always gets the document template,
// even when retrieval came back empty.
func (c *Composer) Compose(query string, grounded bool, contextChunks []string) string {
	if grounded {
		context := strings.Join(contextChunks, "\n")
		return DocumentTemplate + "\nContext:\n" + context + "\nQuestion: " + query
	}
	return c.personaPrompt + "\nQuestion: " + query
}
