// Package catalog negotiates the component catalog for a UI session.
//
// A client advertises its UI capabilities in message metadata: an ordered
// list of supported catalog ids, an inline catalog, or neither. The
// [Negotiator] picks exactly one catalog from those capabilities (or a
// configured default) and composes it into the base A2UI schema:
//
//	catalogs, err := catalog.LoadManifest("catalogs/manifest.yaml")
//	if err != nil {
//	    return err
//	}
//	n := catalog.NewNegotiator(catalogs)
//
//	caps := catalog.FromMetadata(msg.Metadata)
//	res, err := n.Resolve(caps)
//	if err != nil {
//	    // configuration error: abort session preparation
//	}
//	// res.Schema is the session schema, res.CatalogID the chosen id
//	// ("" when the client supplied the catalog inline).
//
// Resolution is pure: the same capabilities always produce the same schema.
package catalog
