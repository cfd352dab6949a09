// Package reconcile provides the domain-agnostic core of catalog matching:
// string similarity, multi-part collapsing, the remote-to-local matcher, the
// mapping operation batch runner, decision tracking and a TTL cache.
//
// Nothing here touches a database or the network. Records are compared
// through the Entry interface and mutations go through a Mutator, so the
// catalog feature supplies gorm-backed implementations and tests supply fakes.
//
// # Matching
//
// Match walks remote records in input order. Records that already carry a
// mapping are reported as matched. Otherwise an exact pass looks for a local
// record of the same type with an equal title, an equal original title or a
// shared external id. An exact hit consumes the local record so that no later
// remote record can claim it. When no exact hit exists a fuzzy pass scores
// every unconsumed local record with Similarity and keeps the best candidates
// above Options.Threshold, capped at Options.MaxCandidates.
//
// # Operations
//
// ApplyOperations runs a batch of Operation values. Each operation is
// isolated: its failure is recorded in BatchResult.Failed and the remaining
// operations still run.
//
// # Usage Example
//
//	kept, groups := reconcile.CollapseMultiPart(items, nameOf, pathOf)
//	results := reconcile.Match(remotes, locals, isMapped, reconcile.DefaultOptions())
//	outcome := reconcile.ApplyOperations(ctx, executor, ops)
package reconcile
