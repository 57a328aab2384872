package hooks

// SkillName is the directory name of the installed skill.
const SkillName = "strategic-compact"

// SkillFilename is the document inside every skill directory.
const SkillFilename = "skill.md"

// SkillContent is the skill document for strategic compaction.
const SkillContent = `---
name: strategic-compact
description: Compact the conversation at logical phase boundaries instead of waiting for automatic compaction. Use when the suggest-compact hook reports sustained editing.
---

# Strategic Compact

Automatic compaction fires when the context window is nearly full, which is
often in the middle of a task. Compacting at a phase boundary keeps the
summary coherent and the next phase starts with a clean context.

## When The Hook Fires

The ` + "`suggest-compact`" + ` hook counts Edit and Write tool calls. After
20 edits it prints:

` + "```text" + `
[Compact] You've made 20 edits. Consider compacting if you're transitioning phases.
` + "```" + `

The counter then resets, and the hook stays quiet for at least five minutes
even if editing continues.

## Good Moments To Compact

- Research or exploration is done and implementation is about to start
- A milestone is finished and tests pass
- You are switching to an unrelated area of the codebase
- A long debugging session has been resolved

## Bad Moments To Compact

- In the middle of a multi-file refactor
- While a failing test is still being investigated
- Right before a commit whose message needs the details of the change

## Before Compacting

1. Write down open questions and next steps in the plan file.
2. Make sure uncommitted work is saved to disk.
3. Run ` + "`/compact`" + ` with a short note about what comes next.
`
