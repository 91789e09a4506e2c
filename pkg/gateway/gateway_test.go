package gateway

import (
	"github.com/raywall/dispatch-console/pkg/model"
)

func beerView() model.ServiceView {
	return model.ServiceView{
		Service: model.Service{
			ID:      "beer-api",
			Name:    "Beer Catalog API",
			Version: "0.9",
			Type:    model.ServiceTypeREST,
			Labels:  map[string]string{"domain": "catalog"},
			Operations: []model.Operation{
				{Name: "GET /beer", Method: "GET", DefaultDelay: 0, Dispatcher: "URI_PARAMS", DispatcherRules: "page && limit"},
				{Name: "getBeer", Method: "GET", DefaultDelay: 100, Dispatcher: "SCRIPT", DispatcherRules: "{}", ResourcePaths: []string{"/beer/Rodenbach"}},
			},
		},
		MessagesMap: map[string]int{"GET /beer": 2, "getBeer": 3},
	}
}

func newProps() model.OperationProperties {
	return model.OperationProperties{DefaultDelay: 250, Dispatcher: "JSON_BODY", DispatcherRules: `{"exp": "/country"}`}
}
