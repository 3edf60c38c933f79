package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposePersonaFallback(t *testing.T) {
	c := NewComposer("")

	p := c.Compose("hello", false, nil)
	assert.Contains(t, p, "Assistant Profile")
	assert.Contains(t, p, "Alex Moreno")
	assert.Contains(t, p, "Question: hello")
	assert.NotContains(t, p, "Document-based Chat")
	assert.NotContains(t, p, "Context:")
}

func TestComposeDocumentGrounded(t *testing.T) {
	c := NewComposer("")

	p := c.Compose("what is the budget?", true, []string{"Project Alpha budget: $500", "Second chunk"})
	assert.Contains(t, p, "Document-based Chat")
	assert.Contains(t, p, "Context:\nProject Alpha budget: $500\nSecond chunk")
	assert.Contains(t, p, "Question: what is the budget?")
	// persona template text must be absent in grounded mode
	assert.NotContains(t, p, "Assistant Profile")
	assert.NotContains(t, p, "Alex Moreno")
}

func TestComposeGroundedWithEmptyRetrieval(t *testing.T) {
	// A processed document keeps the grounded template even when the index
	// returned nothing; the persona fallback is unreachable.
	c := NewComposer("")

	p := c.Compose("anything", true, nil)
	assert.Contains(t, p, "Document-based Chat")
	assert.Contains(t, p, "Context:\n")
	assert.NotContains(t, p, "Assistant Profile")
}

func TestComposeCustomProfile(t *testing.T) {
	c := NewComposer("Name: Jordan Lee\nRole: Data Engineer")

	p := c.Compose("who are you?", false, nil)
	assert.Contains(t, p, "Jordan Lee")
	assert.NotContains(t, p, "Alex Moreno")
}

func TestTemplateSelectionIsBinary(t *testing.T) {
	c := NewComposer("")

	grounded := c.Compose("q", true, []string{"ctx"})
	fallback := c.Compose("q", false, nil)
	assert.NotEqual(t, grounded, fallback)
	assert.Contains(t, grounded, "Document-based Chat")
	assert.Contains(t, fallback, "Friendly AI Assistant")
}
