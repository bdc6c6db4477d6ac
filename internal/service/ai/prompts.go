package ai

// sentimentSystemPrompt 指导模型根据用户当前情感调整语气，{sentiment} 由每轮的情感标签填充。
const sentimentSystemPrompt = "You are a helpful and empathetic AI assistant. " +
	"Based on the user's current sentiment, adapt your tone and response. " +
	"If the user is negative, offer comforting words or solutions. " +
	"If positive, match their enthusiasm. " +
	"If neutral, maintain a helpful and informative tone. " +
	"Current user sentiment: {sentiment}"

// summaryPrompt asks the model to extend a running summary with new lines.
const summaryPrompt = `Progressively summarize the lines of conversation provided, adding onto the previous summary and returning a new summary.

EXAMPLE
Current summary:
The human asks what the AI thinks of artificial intelligence. The AI thinks artificial intelligence is a force for good.

New lines of conversation:
Human: Why do you think artificial intelligence is a force for good?
AI: Because artificial intelligence will help humans reach their full potential.

New summary:
The human asks what the AI thinks of artificial intelligence. The AI thinks artificial intelligence is a force for good because it will help humans reach their full potential.
END OF EXAMPLE

Current summary:
{summary}

New lines of conversation:
{new_lines}

New summary:`
