package rollup

const weeklyPrompt = `Create WEEKLY SUMMARY for week %s to %s

DAILY SUMMARIES:
%s

CREATE SUMMARY (400-600 words):

**WEEK OVERVIEW**: 2-3 sentences capturing the essence
**WORK**: Projects worked on, progress, wins, blockers
**PATTERNS**: Recurring themes, energy and mood trends
**ACHIEVEMENTS**: Key wins, completions, breakthroughs
**CHALLENGES**: Problems, frustrations, obstacles
**SOCIAL**: Key people, important conversations
**INSIGHTS**: Major learnings, decisions, realizations
**HEALTH**: Physical and mental trends, habits
**FORWARD**: What's carrying into next week

GUIDELINES:
- Synthesize, don't repeat: "Entire week on Project X - shipped feature Y" not a day-by-day replay
- Find patterns across the days
- Track trajectories: mood improving? declining?
- Be specific: use actual names, projects, tools
- Note contradictions between intentions and what happened

Return ONLY the summary:`

const monthlyPrompt = `Create MONTHLY SUMMARY for %s

DAILY SUMMARIES (%s to %s):
%s

CREATE SUMMARY (600-1000 words):

**MONTH ESSENCE**: 3-4 sentences - what was this month about?
**WORK**: Major projects, accomplishments, skills developed, challenges
**PERSONAL GROWTH**: Insights, behavioral changes, mindset shifts
**HEALTH**: Physical and mental trends, habits formed or broken
**RELATIONSHIPS**: Significant people, developments, social patterns
**GOALS**: Progress made, new goals, abandoned goals and why
**PATTERNS**: What's consistent, what's a struggle, mood trajectory
**KEY MOMENTS**: 3-7 most important events with dates
**WINS**: Concrete accomplishments
**STRUGGLES**: Major obstacles, what didn't work
**EVOLUTION**: How did the month change them?

GUIDELINES:
- Tell a story with arc and progression
- Quantify where the material supports it
- Connect causes to effects across the days
- Note turning points within the month

Return ONLY the summary:`

// monthlyInputLimit caps the concatenated daily summaries fed to the
// monthly prompt, in characters.
const monthlyInputLimit = 12000
