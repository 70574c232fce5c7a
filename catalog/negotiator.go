package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spetersoncode/a2ui"
	"github.com/spetersoncode/a2ui/schema"
)

// Resolution is the outcome of a successful negotiation.
type Resolution struct {
	// Schema is the base schema with the chosen catalog composed in.
	Schema json.RawMessage
	// CatalogID is the chosen local catalog, or "" for an inline catalog.
	CatalogID string
}

// Negotiator resolves client capabilities to a session schema.
// It is safe for concurrent use.
type Negotiator struct {
	catalogs *Catalogs
	logger   *slog.Logger
}

// Option configures a Negotiator.
type Option func(*Negotiator)

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(n *Negotiator) {
		n.logger = l
	}
}

// WithDefault overrides the catalog used when a client sends no capabilities.
func WithDefault(id string) Option {
	return func(n *Negotiator) {
		c := *n.catalogs
		c.DefaultID = id
		n.catalogs = &c
	}
}

// NewNegotiator creates a Negotiator over the given catalogs.
func NewNegotiator(catalogs *Catalogs, opts ...Option) *Negotiator {
	if catalogs == nil {
		catalogs = &Catalogs{}
	}
	n := &Negotiator{
		catalogs: catalogs,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.catalogs.ExtendedID == "" {
		c := *n.catalogs
		c.ExtendedID = a2ui.ExtendedCatalogID
		n.catalogs = &c
	}
	return n
}

// Catalogs returns the catalogs the negotiator resolves against.
func (n *Negotiator) Catalogs() *Catalogs {
	return n.catalogs
}

// Resolve picks the session catalog from caps and composes it into the
// base schema. caps may be nil when the client declared nothing; only then
// does the default catalog apply. Non-nil caps naming no usable catalog
// fail with ErrNoSupportedCatalog.
// Every failure is an a2ui configuration error.
func (n *Negotiator) Resolve(caps *Capabilities) (Resolution, error) {
	log := n.logger.With("supported", supportedOf(caps), "inline", caps.HasInline())
	log.Info("resolving A2UI catalog")

	res, err := n.resolve(caps, log)
	if err != nil {
		log.Error("failed to resolve A2UI schema", "error", err)
		return Resolution{}, err
	}
	log.Info("resolved A2UI catalog", "catalog", res.CatalogID)
	return res, nil
}

func (n *Negotiator) resolve(caps *Capabilities, log *slog.Logger) (Resolution, error) {
	var (
		catalogID string
		inline    json.RawMessage
	)

	switch {
	case caps != nil:
		switch {
		case caps.Supports(n.catalogs.ExtendedID):
			catalogID = n.catalogs.ExtendedID
		case caps.Supports(a2ui.StandardCatalogID):
			catalogID = a2ui.StandardCatalogID
		}
		inline = caps.Inline()
	case n.catalogs.DefaultID != "":
		log.Info("client UI capabilities not found, using default catalog", "catalog", n.catalogs.DefaultID)
		catalogID = n.catalogs.DefaultID
	default:
		return Resolution{}, a2ui.NewConfigurationError("", a2ui.ErrCapabilitiesNotProvided)
	}

	var catalog json.RawMessage
	switch {
	case catalogID != "" && inline != nil:
		return Resolution{}, a2ui.NewConfigurationError("", a2ui.ErrAmbiguousCatalog)
	case catalogID != "":
		raw, ok := n.catalogs.Lookup(catalogID)
		if !ok {
			return Resolution{}, a2ui.NewConfigurationError("",
				fmt.Errorf("%w: %s", a2ui.ErrCatalogNotFound, catalogID))
		}
		log.Debug("loading local component catalog", "catalog", catalogID)
		catalog = raw
	case inline != nil:
		if !json.Valid(inline) {
			return Resolution{}, a2ui.NewConfigurationError("", a2ui.ErrInvalidInlineCatalog)
		}
		log.Debug("loading inline component catalog", "size", len(inline))
		catalog = inline
	default:
		return Resolution{}, a2ui.NewConfigurationError("", a2ui.ErrNoSupportedCatalog)
	}

	composed, err := schema.Compose(n.catalogs.Schema, catalog)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{Schema: composed, CatalogID: catalogID}, nil
}

func supportedOf(caps *Capabilities) []string {
	if caps == nil {
		return nil
	}
	return caps.SupportedCatalogIDs
}
