package oracle

import (
	"fmt"

	"google.golang.org/genai"
)

func analysisPrompt(content string) string {
	return fmt.Sprintf(`Analyze the following dream entry. Provide a title, a brief summary, a psychological or symbolic interpretation, the dominant mood, a sentiment score from 0 (nightmare) to 100 (blissful), relevant tags, and a hex color code that represents the feeling of the dream.

Dream: %q`, content)
}

func illustrationPrompt(content, mood string) string {
	return fmt.Sprintf("Create a dreamlike, artistic, and abstract digital painting representing this dream description: %q. The mood is %s. Style: ethereal, surreal, soft lighting, masterpiece.", content, mood)
}

func chatInstruction(content string) string {
	return fmt.Sprintf(`You are the Spirit of the Dream. You are a wise, mystical, and gentle companion.
The user will discuss a specific dream they had. Your goal is to help them explore deeper meanings,
ask thought-provoking questions, and provide comforting insights.

Context of the dream: %q`, content)
}

var analysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":          {Type: genai.TypeString},
		"summary":        {Type: genai.TypeString},
		"interpretation": {Type: genai.TypeString},
		"mood":           {Type: genai.TypeString},
		"sentimentScore": {Type: genai.TypeNumber},
		"tags":           {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"colorHex":       {Type: genai.TypeString, Description: "A valid hex color code (e.g. #FF5733)"},
	},
	Required: []string{"title", "summary", "interpretation", "mood", "sentimentScore", "tags", "colorHex"},
}
