// Package stream is the streaming protocol translator: it consumes the
// upstream SSE delta stream and synthesizes a conformant outbound SSE
// stream in either of two event grammars.
//
// Frame consumption is shared: the pipeline decodes each upstream frame
// into a neutral delta event and feeds it to an Emitter strategy. Two
// emitters exist, one reproducing chat.completion.chunk frames and one
// synthesizing the richer responses-API event sequence (creation, item and
// part lifecycle, deltas, completion) that the upstream never itself
// produces.
//
// Each streaming request owns one pipeline, one emitter, and one State;
// nothing here is shared across requests, so no locking is needed.
package stream
