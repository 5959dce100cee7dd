package tiers

const profileMergePrompt = `Update PROFILE about the user (max %d words) - goes with EVERY retrieval context.

CURRENT PROFILE (%d words):
%s

TODAY'S INFO (%s):
Summary: %s

WHAT TO KEEP:
- Identity (name, job, location, languages)
- Active goals & projects
- Key preferences
- Health info
- Important relationships
- Ongoing habits

UPDATE LOGIC:
ADD: New important facts
UPDATE: Changed info (new job, etc.)
REMOVE: Completed/outdated items
IGNORE: One-time events, trivial stuff

OUTPUT FORMAT:
**IDENTITY**: [name, job, location]
**WORK**: [role, projects, goals]
**HEALTH**: [conditions, habits]
**PEOPLE**: [key relationships]
**PREFERENCES**: [important likes/dislikes]
**ACTIVE**: [current focus areas]
**OTHER**: [any other key facts]
Max %d words. Be dense & specific. Return ONLY the updated profile:`

const profileCompressPrompt = `Compress to max %d words. Remove least important info.

%s

Keep: identity, active goals, health issues, key people
Remove: completed projects, redundant info
Use concise phrasing: "ML engineer at X" not "Works as ML engineer at X"

Return compressed version (max %d words):`

const digestMergePrompt = `You are updating the ROLLING DIGEST for a user.

ROLLING DIGEST PURPOSE:
- Everything major about the user (goals, projects, relationships, health, patterns)
- Last %d days of events and activities
- Max: %d words | Target: %d-%d words

CURRENT ROLLING DIGEST (%d words):
%s

TODAY'S NEW INFORMATION:
Date: %s

Daily Summary:
%s

Recent Weekly Context (for reference):
%s

UPDATE INSTRUCTIONS:

1. **KEEP & UPDATE**:
   - All major facts about the user (identity, goals, projects, relationships)
   - Events from the trailing window (remove events older than %s)
   - Recurring patterns and themes
   - Important health/emotional states

2. **ADD**:
   - New significant information from today
   - New patterns or changes you notice
   - Important events that should be remembered

3. **REMOVE**:
   - Events older than the window
   - Outdated information (completed projects, resolved issues)
   - One-time trivial details

4. **FORMAT**:
   - Start with "MAJOR USER INFO:" section (identity, ongoing projects, relationships, health)
   - Then "RECENT EVENTS:" section (chronological, with dates)
   - Use bullet points for clarity
   - Include dates for events: [YYYY-MM-DD]

5. **WORD COUNT**:
   - Target: %d-%d words
   - Max: %d words
   - If approaching the limit, prioritize recent events and major user info

OUTPUT THE UPDATED ROLLING DIGEST (ONLY the digest text, no meta-commentary):`

const digestCompressPrompt = `The rolling digest is too long (%d words).

Compress it to MAX %d words while keeping:
1. All major user info (identity, goals, projects, relationships)
2. The most important recent events
3. Key patterns and themes

CURRENT DIGEST:
%s

OUTPUT COMPRESSED VERSION (max %d words):`

const emptyTierMarker = "[Empty - first entry]"

const noWeeklyMarker = "[No weekly summary available]"
