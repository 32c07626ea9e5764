// Package audio provides optional local playback of synthesized files and
// duration probing. Playback needs CGO on some platforms; builds with the
// nocgo tag get stubs that report playback as unavailable.
package audio
