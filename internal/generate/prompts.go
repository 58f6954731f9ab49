package generate

import (
	"fmt"
	"strings"
)

const systemPrompt = "You are an expert competitive programmer."

const solutionTemplate = `Solve the following problem with a complete Python 3 program.

The program must read its input from stdin and write only the answer to stdout.
Do not print prompts, labels, or debugging output.

Problem:
%s

Respond with a single code block containing the full program.`

const stressTemplate = `Write a straightforward brute-force Python 3 program for the following problem.

Correctness matters far more than speed: prefer the simplest exhaustive
approach that is obviously right, even if it is slow. The program must read
its input from stdin and write only the answer to stdout.

Problem:
%s

Respond with a single code block containing the full program.`

const reviseTemplate = `Your previous program for this problem failed the sample tests.

Problem:
%s

Previous program:
%s

Failure:
%s

Fix the program. Respond with a single code block containing the full
corrected program. It must read from stdin and write only the answer to stdout.`

// solutionPrompt renders the prompt for a fresh solution attempt.
func solutionPrompt(statement string) string {
	return fmt.Sprintf(solutionTemplate, statement)
}

// stressPrompt renders the prompt for a brute-force reference program.
func stressPrompt(statement string) string {
	return fmt.Sprintf(stressTemplate, statement)
}

// revisePrompt renders the prompt for a debug revision, carrying the
// failing code and a description of what went wrong.
func revisePrompt(statement, previousCode, failure string) string {
	return fmt.Sprintf(reviseTemplate, statement, previousCode, failure)
}

// extractCode extracts a code block from a markdown-style response.
func extractCode(text string) string {
	patterns := []string{
		"```python\n",
		"```python\r\n",
		"```py\n",
		"```\n",
	}

	for _, pattern := range patterns {
		if idx := strings.Index(text, pattern); idx != -1 {
			start := idx + len(pattern)
			end := strings.Index(text[start:], "```")
			if end != -1 {
				return strings.TrimSpace(text[start : start+end])
			}
		}
	}

	// No fenced block found; the response may be raw code.
	return strings.TrimSpace(text)
}
