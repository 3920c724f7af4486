package enhance

import "fmt"

const enhancementResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "title": {
      "type": "string",
      "maxLength": 100
    },
    "excerpt": {
      "type": "string",
      "maxLength": 300
    },
    "content": {
      "type": "string"
    },
    "authorName": {
      "type": "string",
      "minLength": 4,
      "maxLength": 50
    },
    "tags": {
      "type": "array",
      "items": {"type": "string"},
      "maxItems": 5
    }
  },
  "required": ["title", "excerpt", "content", "authorName", "tags"],
  "additionalProperties": false
}`

const enhancementPromptTemplate = `You are a news editor for the "%s" section. You turn a short social-media
caption into a complete, publishable article and return it as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- "title": a concise headline, at most 100 characters, no trailing period.
- "excerpt": a one-or-two sentence summary, at most 300 characters.
- "content": the full article body as HTML paragraphs (<p>...</p>), at least three paragraphs,
  expanding on the caption without inventing verifiable facts the caption does not support.
- "authorName": a plausible byline, 4 to 50 characters.
- "tags": up to 5 short lowercase topic tags drawn from the caption, without "#".
- Write in the language of the caption.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "Real Madrid wins 3-1 #LaLiga"
Output:
{
  "title": "Real Madrid Seals Comfortable 3-1 Victory",
  "excerpt": "Real Madrid took all three points with a 3-1 win, controlling the match from the first half onward.",
  "content": "<p>Real Madrid secured a 3-1 victory...</p><p>The result strengthens their position...</p><p>Attention now turns to the next fixture...</p>",
  "authorName": "Carlos Mendoza",
  "tags": ["laliga", "real madrid", "football"]
}`

// buildSystemPrompt creates the category-localized system prompt.
func buildSystemPrompt(categorySlug string) string {
	return fmt.Sprintf(enhancementPromptTemplate, categorySlug, enhancementResponseSchema)
}
