package blog

import (
	"fmt"
	"strings"

	"github.com/nikhilbhutani/voicepost/internal/llm"
	"github.com/nikhilbhutani/voicepost/internal/prompt"
)

const systemPrompt = "You are a skilled content writer that converts audio transcriptions into well-structured, " +
	"engaging blog posts in Markdown format. Create a comprehensive blog post with a catchy title, introduction, " +
	"main body with multiple sections, and a conclusion. Analyze the user's writing style from their previous " +
	"posts and emulate their tone and style in the new post. Keep the tone casual and professional."

const userPromptTemplate = `Here are some of my previous blog posts for reference:

{{user_posts}}

Please convert the following transcription into a well-structured blog post using Markdown formatting. Follow this structure:

1. Start with a SEO friendly catchy title on the first line.
2. Add two newlines after the title.
3. Write an engaging introduction paragraph.
4. Create multiple sections for the main content, using appropriate headings (##, ###).
5. Include relevant subheadings within sections if needed.
6. Use bullet points or numbered lists where appropriate.
7. Add a conclusion paragraph at the end.
8. Ensure the content is informative, well-organized, and easy to read.
9. Emulate my writing style, tone, and any recurring patterns you notice from my previous posts.

Here's the transcription to convert: {{transcription}}`

// BuildMessages returns the system and user messages sent to the
// completion API.
func BuildMessages(transcription, userPosts string) ([]llm.Message, error) {
	user, err := prompt.Render(userPromptTemplate, map[string]string{
		"user_posts":    userPosts,
		"transcription": transcription,
	})
	if err != nil {
		return nil, fmt.Errorf("render blog prompt: %w", err)
	}
	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: user},
	}, nil
}

// JoinPosts joins prior post bodies, newest first, separated by a blank line.
func JoinPosts(contents []string) string {
	return strings.Join(contents, "\n\n")
}
