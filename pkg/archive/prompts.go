package archive

const dailySummaryPrompt = `Summarize this day (%s) - %s

TRANSCRIPT:
%s

CREATE STRUCTURED SUMMARY (300-400 words):

**OVERVIEW**: One-sentence summary
**ACTIVITIES**: What happened (chronological, with times if mentioned)
**WORK**: Projects, progress, decisions, blockers
**PEOPLE**: Name - what was discussed or done
**THOUGHTS**: Key insights, realizations, decisions
**MOOD**: Energy levels, emotional state, what drove it
**HEALTH**: Exercise, sleep, meals, symptoms
**GOALS**: Progress made, new goals, obstacles
**MENTIONS**: Books, tools, places, concepts discussed

GUIDELINES:
- Be specific: "Debugged payment API rate limiting bug" not "worked on code"
- Include names, numbers, metrics, times
- Note sentiment: "frustrated with", "excited about"
- Skip empty sections
- Use specific keywords so the summary is searchable

Return ONLY the structured summary:`
