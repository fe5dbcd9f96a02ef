package prompts

// NarrationPrompt is the generation text for voice-cloning backends: the model
// continues speaking after the reference transcript.
var NarrationPrompt = NewPromptTemplate(`{{.ref_text}} {{.text}}`)

// SpeechStylePrompt steers backends that take a natural-language instruction
// instead of a reference clip.
var SpeechStylePrompt = NewPromptTemplate(
	`Read the following passage aloud as an audiobook narrator. Keep a calm, even pace and do not add any words.

{{.text}}`)
