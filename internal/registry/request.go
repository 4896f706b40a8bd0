// Package registry fetches SDMX structure messages from the registry and
// resolves them through a URL keyed response cache.
package registry

import (
	"net/url"
	"strings"
)

// DefaultBaseURL is the structure endpoint of the Eurostat fusion registry.
const DefaultBaseURL = "https://webgate.acceptance.ec.europa.eu/fusionregistry/sdmx/v2/structure"

// DefaultAgency is used when a request leaves Agency empty.
const DefaultAgency = "all"

// Resource types queried by conceptnav.
const (
	ResourceDataflow       = "dataflow"
	ResourceCategoryScheme = "categoryscheme"
	ResourceCategorisation = "categorisation"
)

// Reference detail levels.
const (
	ReferencesAll       = "all"
	ReferencesAncestors = "ancestors"
	ReferencesParents   = "parents"
)

// Request identifies one structure query.
type Request struct {
	ResourceType string
	Agency       string
	ResourceID   string
	References   string
	Detail       string
}

// URL renders the request against base:
//
//	{base}/{type}/{agency}/{id}/latest?format=sdmx-json[&references=..][&detail=..]
//
// The result is deterministic and doubles as the response cache key.
func (r Request) URL(base string) string {
	agency := r.Agency
	if agency == "" {
		agency = DefaultAgency
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	for _, seg := range []string{r.ResourceType, agency, r.ResourceID, "latest"} {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(seg))
	}

	b.WriteString("?format=sdmx-json")
	if r.References != "" {
		b.WriteString("&references=")
		b.WriteString(url.QueryEscape(r.References))
	}
	if r.Detail != "" {
		b.WriteString("&detail=")
		b.WriteString(url.QueryEscape(r.Detail))
	}
	return b.String()
}

// DataflowRequest asks for a dataflow with the given reference depth.
func DataflowRequest(dfID, references string) Request {
	return Request{ResourceType: ResourceDataflow, ResourceID: dfID, References: references}
}
