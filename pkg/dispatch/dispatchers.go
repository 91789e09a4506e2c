package dispatch

// Estratégias de dispatch conhecidas pelo servidor de mocks.
const (
	Sequence      = "SEQUENCE"
	Script        = "SCRIPT"
	URIParams     = "URI_PARAMS"
	URIParts      = "URI_PARTS"
	URIElements   = "URI_ELEMENTS"
	QueryArgs     = "QUERY_ARGS"
	QueryMatch    = "QUERY_MATCH"
	QueryHeader   = "QUERY_HEADER"
	JSONBody      = "JSON_BODY"
	Fallback      = "FALLBACK"
	Proxy         = "PROXY"
	ProxyFallback = "PROXY_FALLBACK"
)

var known = []string{
	Sequence, Script, URIParams, URIParts, URIElements, QueryArgs,
	QueryMatch, QueryHeader, JSONBody, Fallback, Proxy, ProxyFallback,
}

// Dispatchers lista as estratégias conhecidas.
func Dispatchers() []string {
	return append([]string(nil), known...)
}

// IsKnown informa se o nome corresponde a uma estratégia conhecida.
// O console não rejeita nomes desconhecidos; isso é decisão do backend.
func IsKnown(name string) bool {
	for _, d := range known {
		if d == name {
			return true
		}
	}
	return false
}
