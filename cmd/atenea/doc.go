// Package main hosts the atenea CLI entrypoint and command graph.
//
// The Cobra command tree turns terminal invocations into orchestrator runs:
// generate renders a video from a portrait and an audio clip, narrate adds a
// speech synthesis step in front of it, plan shows the resolved execution
// plan without dispatching, and doctor reports what is installed. Config is
// loaded lazily through commandContext so config init can run without one.
package main
