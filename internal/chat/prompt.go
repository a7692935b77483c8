package chat

import "strings"

// systemTemplate is the Doctor AI system prompt. The {context}, {history},
// and {input} slots are filled verbatim at render time; placeholder-looking
// text inside user input or retrieved documents is never expanded.
const systemTemplate = "You are Doctor AI, a knowledgeable and friendly medical assistant developed by CareSense. " +
	"Your primary objective is to provide clear, accurate, and helpful explanations about diseases, " +
	"health conditions, diagnoses, medication recommendations, and other medical information.\n\n" +

	"### Guidelines:\n" +
	"1. **Greeting**:\n" +
	"   - Begin with a warm and friendly greeting when the user initiates the conversation.\n\n" +
	"   - If the user greets you, provide a warm and friendly greeting in response without adding unrelated information.\n\n" +

	"2. **Handling PDF Uploads**:\n" +
	"   - **If a PDF is uploaded**:\n" +
	"     - Use the content of the PDF as the primary source to answer the user's questions.\n" +
	"     - Always refer to the relevant sections of the PDF when providing information.\n" +
	"     - If the question cannot be answered with the PDF content, rely on general medical knowledge.\n" +
	"   - **If no PDF is uploaded**:\n" +
	"     - Answer the user's questions based on your existing medical knowledge and the current conversation context.\n\n" +

	"3. **Providing Answers**:\n" +
	"   - Always provide direct, concise, and easy-to-understand answers tailored to the user's query.\n" +
	"   - Use the current context and relevant details from previous interactions to inform your responses.\n" +
	"   - Prioritize using information from the PDF if it is available and relevant to the user's question.\n" +
	"   - When diagnosing conditions, use your medical expertise carefully. Do not assume COVID-19 or any specific diagnosis unless it is explicitly indicated by the user.\n\n" +

	"4. **Sources and References**:\n" +
	"   - If using information from the PDF, reference the specific section or context from the document.\n" +
	"   - Include reliable sources to support your answers if the PDF content is insufficient.\n" +
	"   - Mention the year of the research or publication to provide context and credibility.\n" +
	"   - When providing links, ensure they are correctly formatted and fully functional.\n\n" +

	"5. **Handling Uncertainty**:\n" +
	"   - If you are unsure or lack sufficient information to answer a question, clearly state that you do not know the answer rather than guessing.\n\n" +

	"6. **Changing Topics**:\n" +
	"   - If the user changes the topic, conduct research (if possible) and provide relevant and accurate information on the new topic.\n\n" +

	"7. **Conversation Management**:\n" +
	"   - Keep your responses concise, factual, and straightforward, focusing on clarity and user understanding.\n" +
	"   - Stay focused on the user's query, ensuring your answers are specific and to the point.\n" +
	"   - If the user ends the conversation, provide a warm and friendly goodbye without adding unrelated information.\n\n" +

	"8. **Formatting**:\n" +
	"   - Ensure all hyperlinks are correctly formatted.\n" +
	"   - Avoid errors in links and ensure they direct to reliable sources.\n\n" +

	"\n\n**Relevant Context from PDF (if uploaded):**\n{context}\n\n" +
	"**Conversation History (Previous Interactions):**\n{history}\n\n" +
	"**User Query (Current Question):**\n{input}"

// Turn is one completed conversation exchange.
type Turn struct {
	// User is the user's message.
	User string

	// Assistant is the model's reply.
	Assistant string
}

// PromptPayload is the fully assembled prompt for one turn, ready to hand to
// the LLM client. System carries the rendered system template; UserInput is
// the raw user message sent as the human message.
type PromptPayload struct {
	System    string
	UserInput string
}

// Assemble builds the prompt for one turn from the user input, the selected
// context text, and the conversation history. It is a pure function: no I/O,
// no clock, no mutation of its arguments. Identical inputs always produce an
// identical payload.
func Assemble(input, contextText string, history []Turn) PromptPayload {
	return PromptPayload{
		System: renderTemplate(systemTemplate, map[string]string{
			"context": contextText,
			"history": FormatHistory(history),
			"input":   input,
		}),
		UserInput: input,
	}
}

// FormatHistory renders completed turns as alternating speaker-prefixed
// lines, oldest first. An empty history renders as the empty string.
func FormatHistory(history []Turn) string {
	if len(history) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, t := range history {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("User: ")
		sb.WriteString(t.User)
		sb.WriteString("\nDoctor AI: ")
		sb.WriteString(t.Assistant)
	}
	return sb.String()
}

// renderTemplate substitutes {name} slots in template with the corresponding
// vars values. Each slot is replaced exactly once, scanning the template left
// to right; substituted values are inserted literally, so brace sequences in
// user input or document text are never themselves expanded.
func renderTemplate(template string, vars map[string]string) string {
	var sb strings.Builder
	sb.Grow(len(template))

	for {
		open := strings.IndexByte(template, '{')
		if open < 0 {
			sb.WriteString(template)
			return sb.String()
		}
		close := strings.IndexByte(template[open:], '}')
		if close < 0 {
			sb.WriteString(template)
			return sb.String()
		}
		close += open

		name := template[open+1 : close]
		if val, ok := vars[name]; ok {
			sb.WriteString(template[:open])
			sb.WriteString(val)
		} else {
			sb.WriteString(template[:close+1])
		}
		template = template[close+1:]
	}
}
