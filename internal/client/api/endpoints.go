package api

// endpointTable maps well-known entity kinds to their REST paths on the ERP
// backend. Entities without a mapping fall back to "/{entity}".
var endpointTable = map[string]string{
	"invoice":     "/pos/invoices",
	"payment":     "/pos/payments",
	"customer":    "/customers",
	"item":        "/items",
	"stock_entry": "/stock/entries",
}

// EndpointFor resolves the REST path for an entity kind.
func EndpointFor(entity string) string {
	if path, ok := endpointTable[entity]; ok {
		return path
	}
	return "/" + entity
}
