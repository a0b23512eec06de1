// Package tts turns narration text into an audio file through an
// OpenAI-compatible speech endpoint. The narrate command feeds the result
// into the generation pipeline as the driving audio.
package tts
