package a2ui

// Extension identity and transport.
const (
	// ExtensionURI identifies the A2UI extension in agent cards and in the
	// per-request activation header.
	ExtensionURI = "https://a2ui.org/a2a-extension/a2ui/v0.8"

	// ExtensionHeader is the transport header carrying requested extension URIs.
	ExtensionHeader = "X-A2A-Extensions"

	// MIMEType tags wire data parts that carry A2UI messages.
	MIMEType = "application/json+a2ui"

	// MIMETypeKey is the part metadata key holding MIMEType.
	MIMETypeKey = "mimeType"
)

// Client capability metadata attached to inbound request messages.
const (
	// ClientCapabilitiesKey is the message metadata key holding the client's
	// UI capabilities.
	ClientCapabilitiesKey = "a2uiClientCapabilities"

	// SupportedCatalogIDsKey lists catalog ids, both in client capabilities
	// and in agent card extension params.
	SupportedCatalogIDsKey = "supportedCatalogIds"

	// InlineCatalogsKey holds a catalog supplied inline by the client.
	InlineCatalogsKey = "inlineCatalogs"

	// AcceptsInlineCatalogsKey is the agent card extension param telling
	// clients the agent accepts inline catalogs.
	AcceptsInlineCatalogsKey = "acceptsInlineCatalogs"
)

// Well-known catalogs.
const (
	// StandardCatalogID is the id of the standard component catalog.
	StandardCatalogID = "https://github.com/google/A2UI/blob/main/specification/v0_8/json/standard_catalog_definition.json"

	// ExtendedCatalogID is the extended (charts and maps) catalog, preferred
	// over the standard catalog when a client supports both.
	ExtendedCatalogID = "https://github.com/google/A2UI/blob/main/samples/agent/adk/rizzcharts/rizzcharts_catalog_definition.json"
)

// The model-facing UI tool.
const (
	// ToolName is the fixed name of the tool the model calls to send UI.
	ToolName = "send_a2ui_json_to_client"

	// ToolArgName is the tool's single required string argument.
	ToolArgName = "a2ui_json"

	// ResultKey holds the validated message list in a successful result.
	ResultKey = "validated_a2ui_json"

	// ErrorKey holds the error message in a failed result.
	ErrorKey = "error"

	// TransferToolName is the function call that hands control to a sub-agent.
	TransferToolName = "transfer_to_agent"

	// TransferAgentArg is the argument of TransferToolName naming the target.
	TransferAgentArg = "agent_name"
)

// Instruction markers bracketing the resolved schema in system instructions.
const (
	SchemaBeginMarker = "---BEGIN A2UI JSON SCHEMA---"
	SchemaEndMarker   = "---END A2UI JSON SCHEMA---"
)

// Session state keys.
const (
	// StateKeyEnabled marks a session as UI capable.
	StateKeyEnabled = "system:a2ui_enabled"

	// StateKeySchema caches the resolved session schema.
	StateKeySchema = "system:a2ui_schema"

	// StateKeyCatalogID records the catalog id the schema was resolved with.
	StateKeyCatalogID = "user:a2ui_catalog_uri"

	// StateKeyBaseURL is the base URL used to resolve assets.
	StateKeyBaseURL = "base_url"

	// StateKeyUseUI is set by orchestrators forwarding UI to sub-agents.
	StateKeyUseUI = "use_ui"

	// StateKeyClientCapabilities holds the client's capabilities as received,
	// for forwarding to sub-agents.
	StateKeyClientCapabilities = "client_capabilities"
)

// SystemStatePrefix marks state keys owned by the server. Clients never
// see or set them.
const SystemStatePrefix = "system:"

// SystemAuthor authors state-delta events the layer appends on its own behalf.
const SystemAuthor = "system"
