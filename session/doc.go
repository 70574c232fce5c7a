// Package session keeps per-conversation state as an append-only event log.
//
// State is never written directly. Every change is an [Event] carrying a
// state delta; the current [State] is the projection of all deltas in
// append order. Two backends are provided: [MemoryService] for tests and
// single-process servers, and [RedisService] for shared deployments.
//
//	svc := session.NewMemoryService()
//	sess, err := session.Open(ctx, svc, contextID)
//	if err != nil {
//	    return err
//	}
//	err = sess.AppendDelta(ctx, "system", "", map[string]any{"base_url": url})
package session
