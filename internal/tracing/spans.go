package tracing

// Span names.
const (
	SpanRegistryFetch        = "registry.fetch"
	SpanNavigatorArtefacts   = "navigator.artefacts"
	SpanNavigatorConstraints = "navigator.constraints"
	SpanNavigatorMatch       = "navigator.match"
	SpanNavigatorRefresh     = "navigator.refresh"
)

// Span attribute keys.
const (
	AttrURL          = "registry.url"
	AttrResourceType = "registry.resource_type"
	AttrCacheHit     = "registry.cache_hit"
	AttrPurge        = "registry.purge"
	AttrStatusCode   = "http.status_code"

	AttrDataflowCount = "navigator.dataflow_count"
	AttrSelection     = "navigator.selection"
	AttrSessionID     = "session.id"

	AttrErrorMessage = "error.message"
)
