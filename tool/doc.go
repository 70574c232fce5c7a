// Package tool provides the model-facing tools of a UI-capable agent.
//
// The central piece is [SendUITool], the send_a2ui_json_to_client function
// the model calls to emit UI. Each turn it places the session's wrapped UI
// schema in the system instructions between fixed markers; when called it
// parses, promotes and validates the payload, and returns either
//
//	{"validated_a2ui_json": [...]}
//
// or
//
//	{"error": "Failed to call A2UI tool send_a2ui_json_to_client: ..."}
//
// Invocation failures are always reported as results, never as Go errors,
// so the model can recover in natural language.
//
// # Providers
//
// Whether UI is enabled and which schema applies are supplied through
// [Provider] values, either constant or computed per call:
//
//	toolset := tool.NewUIToolset(
//	    tool.Static(true),
//	    tool.ProviderFunc[json.RawMessage](func(ctx context.Context, rc tool.ReadonlyContext) (json.RawMessage, error) {
//	        return loadSchema(rc.State())
//	    }),
//	)
//
// # Registry
//
// [Registry] maps tool names to tools and executes function calls:
//
//	registry := tool.NewRegistry().Add(
//	    tool.Func("get_sales_data", "Get sales data", params, getSalesData),
//	)
//	resp, err := registry.Execute(ctx, tc, call)
package tool
