package generator

import "strings"

const chatbotSystemPrompt = `You are a supportive, empathetic mental health companion in a mobile app. Your role is to:
1. Listen carefully to users' concerns, struggles, and feelings
2. Respond with empathy, understanding, and non-judgmental support
3. Offer a positive perspective whenever possible without invalidating feelings
4. Ask thoughtful questions to help users explore their thoughts and emotions
5. Suggest practical, evidence-based techniques for managing difficult emotions
6. Use a warm, conversational tone that feels supportive and friendly

Important guidelines:
- Never claim to be a licensed therapist or medical professional
- Don't diagnose conditions or prescribe treatments
- Remind users to seek professional help for serious mental health concerns
- Focus on emotional support and perspective-shifting rather than treatment
- Be authentic and avoid generic, canned responses
- Maintain appropriate boundaries while being empathetic`

const reframePromptTemplate = `I'd like you to help reframe a situation or thought the user has shared in a more positive light.
Please carefully read their message and create a short positive reframing that:
1. Acknowledges their feelings without dismissing them
2. Identifies potential strengths, growth opportunities, or alternative perspectives
3. Uses a gentle, supportive tone that doesn't feel dismissive
4. Is concise (2-5 sentences)

Here's what the user shared:
"{user_message}"

Provide only the positive reframing without additional explanation or introduction.`

const supportivePromptTemplate = `Based on this recent conversation history, generate a short, personalized supportive message that will be sent as a notification to the user.

Recent conversation themes:
{conversation_summary}

The supportive message should:
1. Be 1-2 sentences maximum
2. Feel personal and tailored to their specific situation
3. Provide encouragement, validation, or a gentle positive reminder
4. Avoid sounding generic or like a fortune cookie
5. Not ask any questions (this is a one-way notification)

Return only the notification text without any additional context or explanation.`

// Placeholders are substituted literally so user text containing format verbs or
// braces is passed through untouched.
func reframePrompt(utterance string) string {
	return strings.Replace(reframePromptTemplate, "{user_message}", utterance, 1)
}

func supportivePrompt(summary string) string {
	return strings.Replace(supportivePromptTemplate, "{conversation_summary}", summary, 1)
}

const (
	FallbackReply      = "I'm having trouble connecting to my thinking system. Could you please try again in a moment?"
	FallbackSupportive = "Remember that you're stronger than you think. Take a moment for yourself today."
)
