// Package easel implements the editing and versioning engine of a
// layered raster painting application.
//
// # Overview
//
// A Picture is a stack of Buffers. Every Buffer owns a Bitmap and a
// fully ordered log of the events that produced it: brush strokes,
// gradients, image imports, merges of other buffers, and structural
// events such as creation, removal, reordering and session hiding.
// The bitmap is always the deterministic result of replaying the
// log's active events in order, so any event can be undone, redone,
// inserted or removed at any position and the picture converges to
// the same pixels a fresh replay would produce.
//
// # Quick Start
//
//	pic, _ := easel.NewPicture(512, 512)
//	create := easel.NewBufferCreateEvent(1, easel.White, false, 1)
//	buf, _ := pic.AddBuffer(pic.Stamp(create).(*easel.BufferCreateEvent))
//
//	ev := easel.NewBrushEvent(easel.Black, 1, 1, 8, easel.BlendNormal)
//	ev.AddPoint(100, 100, 0.8)
//	ev.AddPoint(300, 250, 1.0)
//	pic.PushEvent(buf.ID(), pic.Stamp(ev))
//
//	img, _ := pic.Composite() // *image.RGBA of the flattened stack
//
// # Checkpoints
//
// Replaying a long log from scratch on every undo would be slow, so
// each buffer keeps a bounded cache of bitmap snapshots. Undoing an
// event restores the latest snapshot at or before it and replays only
// the events after it, clipped to the changed region. The cache is
// evicted by cost: snapshots that save the fewest replayed events per
// byte go first. Disabling the cache (easel.WithCheckpointBudget(0))
// changes nothing but speed.
//
// # Sessions
//
// Events are stamped with an author id and a per-author sequence
// number, which gives every event a stable identity across clients.
// Picture.InsertEvent places a remote event at its author-order
// position inside the log, and the *BySessionEvent operations undo,
// redo or remove events by that identity.
//
// # Serialization
//
// Picture.Serialize writes a versioned line-oriented text format and
// Parse reads it back, optionally rescaling every event. The format
// round-trips: serializing a parsed log reproduces it byte for byte.
//
// # Backends
//
// Bitmap storage is pluggable. The software backend keeps pixels in
// host memory; the gpu backend (build without the nogpu tag) keeps
// the authoritative copy and all snapshots in device buffers. Use the
// backend package registry to pick one at runtime.
package easel
