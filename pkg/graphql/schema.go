package graphql

import (
	"github.com/graphql-go/graphql"
)

var operationType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Operation",
	Fields: graphql.Fields{
		"name":            &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"method":          &graphql.Field{Type: graphql.String},
		"defaultDelay":    &graphql.Field{Type: graphql.Int},
		"dispatcher":      &graphql.Field{Type: graphql.String},
		"dispatcherRules": &graphql.Field{Type: graphql.String},
		"resourcePaths":   &graphql.Field{Type: graphql.NewList(graphql.String)},
	},
})

var serviceType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Service",
	Fields: graphql.Fields{
		"id":         &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name":       &graphql.Field{Type: graphql.String},
		"version":    &graphql.Field{Type: graphql.String},
		"type":       &graphql.Field{Type: graphql.String},
		"operations": &graphql.Field{Type: graphql.NewList(operationType)},
	},
})

var propertiesType = graphql.NewObject(graphql.ObjectConfig{
	Name: "OperationProperties",
	Fields: graphql.Fields{
		"defaultDelay":    &graphql.Field{Type: graphql.Int},
		"dispatcher":      &graphql.Field{Type: graphql.String},
		"dispatcherRules": &graphql.Field{Type: graphql.String},
	},
})

var notificationType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Notification",
	Fields: graphql.Fields{
		"id":      &graphql.Field{Type: graphql.ID},
		"type":    &graphql.Field{Type: graphql.String},
		"header":  &graphql.Field{Type: graphql.String},
		"message": &graphql.Field{Type: graphql.String},
	},
})

var saveResultType = graphql.NewObject(graphql.ObjectConfig{
	Name: "SaveResult",
	Fields: graphql.Fields{
		"ok":         &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"error":      &graphql.Field{Type: graphql.String},
		"properties": &graphql.Field{Type: propertiesType},
	},
})

var exampleType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ExampleRule",
	Fields: graphql.Fields{
		"operator": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"rule":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

// buildSchema monta o schema fixo do console.
func buildSchema(r *resolver) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"service": &graphql.Field{
				Type: serviceType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.service,
			},
			"operation": &graphql.Field{
				Type: operationType,
				Args: graphql.FieldConfigArgument{
					"serviceId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"name":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.operation,
			},
			"examples": &graphql.Field{
				Type:    graphql.NewList(exampleType),
				Resolve: r.examples,
			},
			"dispatchers": &graphql.Field{
				Type:    graphql.NewList(graphql.String),
				Resolve: r.dispatchers,
			},
			"notifications": &graphql.Field{
				Type:    graphql.NewList(notificationType),
				Resolve: r.notifications,
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"updateOperationProperties": &graphql.Field{
				Type: graphql.NewNonNull(saveResultType),
				Args: graphql.FieldConfigArgument{
					"serviceId":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"name":            &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"defaultDelay":    &graphql.ArgumentConfig{Type: graphql.Int},
					"dispatcher":      &graphql.ArgumentConfig{Type: graphql.String},
					"dispatcherRules": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.updateOperationProperties,
			},
			"dismissNotification": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.dismissNotification,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}
