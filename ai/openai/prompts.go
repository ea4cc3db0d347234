package openai

import "fmt"

// buildSystemPrompt creates the system prompt with the response schema embedded.
func buildSystemPrompt() string {
	return fmt.Sprintf(insightsPromptTemplate, insightsResponseSchema)
}

const insightsResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "summary": {
      "type": "string",
      "minLength": 1
    },
    "key_topics": {
      "type": "array",
      "items": {"type": "string"}
    },
    "speakers": {
      "type": ["array", "null"],
      "items": {"type": "string"}
    },
    "action_items": {
      "type": ["array", "null"],
      "items": {"type": "string"}
    },
    "tags": {
      "type": "array",
      "items": {"type": "string", "pattern": "^[a-z0-9]+(-[a-z0-9]+)*$"},
      "minItems": 1
    }
  },
  "required": ["summary", "key_topics", "tags"],
  "additionalProperties": false
}`

const insightsPromptTemplate = `You analyze transcripts of long-form spoken-word media (podcasts, talks,
interviews) and return structured insights as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- "summary" is 2-4 sentences capturing what the recording is about and its main conclusions.
- "key_topics" lists the main topics discussed, most central first, 3-8 entries, each 1-4 words.
- "speakers" lists the names of people speaking, as given in the transcript. Use null if no names can be determined. Never invent names.
- "action_items" lists concrete follow-ups or recommendations stated in the transcript. Use null if there are none.
- "tags" are lowercase kebab-case labels for browsing and filtering, 3-10 entries.
- Base everything strictly on the transcript. Do not hallucinate.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "Welcome back to the show. I'm Dana Reeves and today Marco Lindt joins me to talk about
battery recycling. ... so the takeaway is: check whether your city runs a drop-off program."
Output:
{
  "summary": "Dana Reeves interviews Marco Lindt about battery recycling. They cover why consumer batteries end up in landfills and how municipal drop-off programs work. The episode closes with practical advice for listeners.",
  "key_topics": ["battery recycling", "municipal programs", "consumer waste"],
  "speakers": ["Dana Reeves", "Marco Lindt"],
  "action_items": ["check whether your city runs a drop-off program"],
  "tags": ["recycling", "batteries", "sustainability", "interview"]
}

Example (no named speakers, no action items):
Input: "in this lecture we cover the basics of queueing theory starting with the m m 1 queue"
Output:
{
  "summary": "A lecture introducing the basics of queueing theory, starting from the M/M/1 queue.",
  "key_topics": ["queueing theory", "m/m/1 queue"],
  "speakers": null,
  "action_items": null,
  "tags": ["queueing-theory", "mathematics", "lecture"]
}`
