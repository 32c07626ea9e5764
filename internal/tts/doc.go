// Package tts defines the synthesis request model, the engine contract,
// and the audio format handling shared by every engine: parsing format
// names, normalizing output paths, sniffing containers, and writing
// result files atomically.
package tts
